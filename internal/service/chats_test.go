package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"chats":[{"session_id":"s-1","title":"Lease review"}]}`))
	})
	mux.HandleFunc("GET /api/chat", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "s-1", q.Get("session_id"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "20", q.Get("per_page"))
		w.Write([]byte(`{"total_count":1,"items":[{"content":"hi","sender_type":"user"}]}`))
	})
	mux.HandleFunc("POST /api/chats", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s-2", body["session_id"])
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("PATCH /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s-1", r.URL.Query().Get("session_id"))
		assert.Equal(t, "Renamed", body["title"])
	})
	mux.HandleFunc("DELETE /api/chat", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "s-1", r.URL.Query().Get("session_id"))
		w.WriteHeader(http.StatusNoContent)
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")
	chats := NewChatService(api)
	ctx := context.Background()

	list, err := chats.List(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Lease review", list[0].Title)

	history, err := chats.History(ctx, "s-1", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, history.TotalCount)
	assert.Equal(t, "hi", history.Items[0].Content)

	require.NoError(t, chats.Create(ctx, "s-2"))
	require.NoError(t, chats.Rename(ctx, "s-1", "Renamed"))
	require.NoError(t, chats.Delete(ctx, "s-1"))
}

func TestChatService_ListOmitsZeroPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/chats", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"chats":[]}`))
	})
	api, creds := newTestAPI(t, mux)
	login(t, creds, "tok")

	list, err := NewChatService(api).List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
