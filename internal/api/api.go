// Package api — тонкий JSON-слой над сервисом: маршруты, декодирование
// тел, перевод типизированных отказов в статус-коды и точка подключения
// наблюдателей по websocket.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/UkralStul/social-feed-service/internal/apperr"
	"github.com/UkralStul/social-feed-service/internal/auth"
	"github.com/UkralStul/social-feed-service/internal/broadcast"
	"github.com/UkralStul/social-feed-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Handler держит зависимости HTTP-слоя.
type Handler struct {
	svc      *service.Service
	hub      *broadcast.Hub
	tokens   *auth.Manager
	upgrader websocket.Upgrader
}

func New(svc *service.Service, hub *broadcast.Hub, tokens *auth.Manager) *Handler {
	return &Handler{
		svc:    svc,
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Routes монтирует все маршруты API.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/register", h.register)
	r.Post("/api/login", h.login)

	r.Get("/ws", h.observe)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/users", h.listUsers)
		r.Post("/api/users/{username}/block", h.blockUser)
		r.Post("/api/users/{username}/unblock", h.unblockUser)

		r.Get("/api/feed", h.feed)
		r.Post("/api/posts", h.createPost)
		r.Put("/api/posts/{id}", h.editPost)
		r.Delete("/api/posts/{id}", h.deletePost)

		r.Post("/api/posts/{id}/comments", h.addComment)
		r.Put("/api/comments/{id}", h.editComment)
		r.Delete("/api/comments/{id}", h.deleteComment)

		r.Put("/api/posts/{id}/like", h.like)
		r.Delete("/api/posts/{id}/like", h.unlike)
		r.Get("/api/posts/{id}/likes/count", h.likeCount)

		r.Get("/api/notifications", h.listNotifications)
		r.Post("/api/notifications/{id}/read", h.readNotification)

		r.Post("/api/messages", h.sendMessage)
		r.Get("/api/messages", h.listMessages)
	})
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("api: failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func respondError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindAlreadyExists:
		status = http.StatusConflict
	case apperr.KindPermissionDenied, apperr.KindBlocked:
		status = http.StatusForbidden
	case apperr.KindPolicyViolation:
		status = http.StatusUnprocessableEntity
	}

	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("api: internal error: %v", err)
		detail = "internal server error"
	}
	respondJSON(w, status, errorResponse{Error: detail, Kind: kind.String()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Kind: "bad_request"})
		return false
	}
	return true
}
