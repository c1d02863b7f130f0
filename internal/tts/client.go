package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Client talks to a Coqui TTS server. The server renders a wav body
// for GET /api/tts and lists speakers under /api/speakers.
type Client struct {
	host string
	http *http.Client
}

func NewClient(host string) *Client {
	return &Client{
		host: host,
		http: http.DefaultClient,
	}
}

// TEXT → SPEECH
func (c *Client) Synthesize(ctx context.Context, text, outPath, language, speaker string) error {
	q := url.Values{}
	q.Set("text", text)
	if speaker != "" {
		q.Set("speaker_id", speaker)
	}
	if language != "" {
		q.Set("language_id", language)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.host+"/api/tts?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "audio/wav")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tts status %d: %s", resp.StatusCode, string(b))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// Speakers returns the speaker IDs the loaded model supports.
func (c *Client) Speakers(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.host+"/api/speakers", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts speakers: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts speakers status %d: %s", resp.StatusCode, string(b))
	}

	var out []string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tts speakers decode: %w", err)
	}
	return out, nil
}
