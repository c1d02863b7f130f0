package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Client talks to a Whisper ASR webservice: multipart audio in,
// JSON {text, language} out.
type Client struct {
	host  string
	model string
	http  *http.Client
}

func NewClient(host, model string) *Client {
	return &Client{
		host:  host,
		model: model,
		http:  http.DefaultClient,
	}
}

type asrResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcribe uploads the audio file and returns the transcribed text
// plus the language the model detected.
func (c *Client) Transcribe(ctx context.Context, filePath string) (string, string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("audio_file", filepath.Base(filePath))
	if err != nil {
		return "", "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", "", fmt.Errorf("read audio: %w", err)
	}
	if c.model != "" {
		if err := mw.WriteField("model", c.model); err != nil {
			return "", "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.host+"/asr?output=json", &body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("whisper asr: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", "", fmt.Errorf("whisper asr status %d: %s", resp.StatusCode, string(b))
	}

	var out asrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("whisper asr decode: %w", err)
	}
	return out.Text, out.Language, nil
}
