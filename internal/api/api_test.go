package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UkralStul/social-feed-service/internal/auth"
	"github.com/UkralStul/social-feed-service/internal/broadcast"
	"github.com/UkralStul/social-feed-service/internal/domain"
	"github.com/UkralStul/social-feed-service/internal/service"
	"github.com/UkralStul/social-feed-service/internal/storage/inmemory"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := inmemory.New()
	hub := broadcast.NewHub()
	t.Cleanup(hub.Close)

	svc := service.New(store, hub, service.WithFeedSeed(7))
	tokens := auth.NewManager("test-secret", time.Hour)

	router := chi.NewRouter()
	New(svc, hub, tokens).Routes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"username": username,
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"username": username,
		"password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPI_RegisterLoginPostFeed(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	resp, post := doJSON(t, http.MethodPost, srv.URL+"/api/posts", token, map[string]string{
		"content": "hello world",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID, _ := post["id"].(string)
	require.NotEmpty(t, postID)

	// Второй пост в тот же день — отказ политики
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/posts", token, map[string]string{
		"content": "again",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "policy_violation", body["kind"])

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/feed", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	feedResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer feedResp.Body.Close()
	require.Equal(t, http.StatusOK, feedResp.StatusCode)

	var feed []map[string]interface{}
	require.NoError(t, json.NewDecoder(feedResp.Body).Decode(&feed))
	require.Len(t, feed, 1)
	assert.Equal(t, "hello world", feed[0]["content"])
	assert.Equal(t, "alice", feed[0]["author"])
}

func TestAPI_DuplicateRegister(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", map[string]string{
		"username": "alice",
		"password": "other",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "already_exists", body["kind"])
}

func TestAPI_RequiresToken(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", "", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/posts", "garbage-token", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_LikeAndUnlike(t *testing.T) {
	srv := newTestServer(t)
	alice := registerAndLogin(t, srv, "alice")
	bob := registerAndLogin(t, srv, "bob")

	resp, post := doJSON(t, http.MethodPost, srv.URL+"/api/posts", alice, map[string]string{
		"content": "like me",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	postID := post["id"].(string)

	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/posts/"+postID+"/like", bob, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Повторный лайк идемпотентен
	resp, _ = doJSON(t, http.MethodPut, srv.URL+"/api/posts/"+postID+"/like", bob, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, count := doJSON(t, http.MethodGet, srv.URL+"/api/posts/"+postID+"/likes/count", bob, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, count["count"])

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/posts/"+postID+"/like", bob, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := doJSON(t, http.MethodDelete, srv.URL+"/api/posts/"+postID+"/like", bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body["kind"])
}

func TestAPI_WebsocketObserverReceivesEvents(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/posts", token, map[string]string{
		"content": "broadcast me",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, domain.EventPostCreated, ev.Type)
	assert.NotEmpty(t, ev.EntityID)
}
