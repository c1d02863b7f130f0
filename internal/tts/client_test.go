package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	wav := []byte("RIFF fake wav")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tts", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "hello", q.Get("text"))
		assert.Equal(t, "p225", q.Get("speaker_id"))
		assert.Equal(t, "en", q.Get("language_id"))

		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav)
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "out", "reply.wav")

	c := NewClient(srv.URL)
	require.NoError(t, c.Synthesize(context.Background(), "hello", outPath, "en", "p225"))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, wav, got)
}

func TestSynthesizeOmitsEmptyParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("speaker_id"))
		assert.False(t, q.Has("language_id"))
		w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "reply.wav")
	c := NewClient(srv.URL)
	require.NoError(t, c.Synthesize(context.Background(), "hi", outPath, "", ""))
}

func TestSynthesizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown speaker", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Synthesize(context.Background(), "hi", filepath.Join(t.TempDir(), "x.wav"), "en", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSpeakers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/speakers", r.URL.Path)
		w.Write([]byte(`["p225","p226"]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	speakers, err := c.Speakers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p225", "p226"}, speakers)
}
