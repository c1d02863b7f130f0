package ollama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var gotReq chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(chatResponse{
			Message: ChatMessage{Role: "assistant", Content: "42"},
			Done:    true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	out, err := c.Chat(context.Background(), "llama3.1",
		[]ChatMessage{{Role: "user", Content: "meaning of life?"}},
		Options{Temperature: 0.5, TopP: 0.9, NumPredict: 128},
	)
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	assert.Equal(t, "llama3.1", gotReq.Model)
	assert.False(t, gotReq.Stream)
	assert.Equal(t, 0.5, gotReq.Options.Temperature)
	assert.Equal(t, 128, gotReq.Options.NumPredict)
}

func TestChatServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Chat(context.Background(), "nope", nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models":[{"name":"llama3.1"},{"name":"mistral"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	names, err := c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1", "mistral"}, names)
}

func TestPull(t *testing.T) {
	var pulled string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/pull", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		pulled = req["name"]
		w.Write([]byte(`{"status":"pulling"}` + "\n" + `{"status":"success"}` + "\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, c.Pull(context.Background(), "gemma2"))
	assert.Equal(t, "gemma2", pulled)
}
