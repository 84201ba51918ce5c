package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// === Users ===

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

func (h *Handler) blockUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.BlockUser(r.Context(), userID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) unblockUser(w http.ResponseWriter, r *http.Request) {
	err := h.svc.UnblockUser(r.Context(), userID(r.Context()), chi.URLParam(r, "username"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// === Posts & Feed ===

type contentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) feed(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ComposeFeed(r.Context(), userID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.svc.CreatePost(r.Context(), userID(r.Context()), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, post)
}

func (h *Handler) editPost(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.svc.EditPost(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeletePost(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// === Comments ===

func (h *Handler) addComment(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.svc.AddComment(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

func (h *Handler) editComment(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.svc.EditComment(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, comment)
}

func (h *Handler) deleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteComment(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// === Likes ===

func (h *Handler) like(w http.ResponseWriter, r *http.Request) {
	like, created, err := h.svc.ToggleLike(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondJSON(w, status, like)
}

func (h *Handler) unlike(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveLike(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) likeCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.CountLikes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// === Notifications ===

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.svc.Notifications(r.Context(), userID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

func (h *Handler) readNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkNotificationRead(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

// === Messages ===

type messageRequest struct {
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.svc.SendMessage(r.Context(), userID(r.Context()), req.Receiver, req.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

func (h *Handler) listMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.Messages(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}
