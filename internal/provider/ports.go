package provider

import (
	"context"

	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
)

// Options are per-request generation knobs taken from user settings.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Provider is the capability contract every backend implements:
// text generation, voice transcription, speech synthesis.
type Provider interface {
	// GenerateResponse runs a chat completion over the given history.
	GenerateResponse(ctx context.Context, model string, messages []user.Message, opts Options) (string, error)

	// TranscribeVoice converts the audio file at path to text and
	// returns the detected language code.
	TranscribeVoice(ctx context.Context, path string) (text, language string, err error)

	// TextToSpeech renders text to an audio file at outPath.
	TextToSpeech(ctx context.Context, text, outPath, language, speaker string) error

	// Speakers lists selectable synthesis voices.
	Speakers() []string

	// Models lists selectable generation models.
	Models() []string

	// Name identifies the backend for logs and health checks.
	Name() string
}
