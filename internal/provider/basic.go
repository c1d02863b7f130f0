package provider

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/KPEKEP/universal-llm-chatbot/internal/ollama"
	"github.com/KPEKEP/universal-llm-chatbot/internal/tts"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	"github.com/KPEKEP/universal-llm-chatbot/internal/whisper"
)

// BasicProvider is the default backend: Ollama for text, a Whisper ASR
// webservice for transcription, a Coqui TTS server for synthesis.
type BasicProvider struct {
	cfg config.ProviderConfig

	llm *ollama.Client
	stt *whisper.Client
	tts *tts.Client

	speakers []string
}

func NewBasicProvider(ctx context.Context, cfg config.ProviderConfig) (*BasicProvider, error) {
	p := &BasicProvider{
		cfg: cfg,
		llm: ollama.NewClient(cfg.Ollama.Host, time.Duration(cfg.Ollama.TimeoutSeconds)*time.Second),
		stt: whisper.NewClient(cfg.Voice.Host, cfg.Voice.WhisperModel),
		tts: tts.NewClient(cfg.TTS.Host),
	}

	if cfg.Ollama.PullOnStart {
		for _, model := range cfg.Models.Available {
			log.Printf("[provider] pulling ollama model %s", model)
			if err := p.llm.Pull(ctx, model); err != nil {
				return nil, err
			}
			log.Printf("[provider] pulled %s", model)
		}
	}

	if present, err := p.llm.Tags(ctx); err != nil {
		log.Printf("[provider] ollama tags unavailable: %v", err)
	} else if missing := missingModels(cfg.Models.Available, present); len(missing) > 0 {
		log.Printf("[provider] models not present on ollama server: %v", missing)
	}

	speakers, err := p.tts.Speakers(ctx)
	if err != nil {
		// сервер мог подняться без мультиспикерной модели
		log.Printf("[provider] tts speakers unavailable: %v", err)
		speakers = cfg.TTS.Speakers
	}
	p.speakers = speakers

	return p, nil
}

// missingModels lists configured models the server does not report.
// Tags returns names like "llama3.1:latest", so a configured name
// also matches as a tag prefix.
func missingModels(configured, present []string) []string {
	var missing []string
	for _, want := range configured {
		found := false
		for _, have := range present {
			if have == want || strings.HasPrefix(have, want+":") {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, want)
		}
	}
	return missing
}

func (p *BasicProvider) GenerateResponse(ctx context.Context, model string, messages []user.Message, opts Options) (string, error) {
	msgs := make([]ollama.ChatMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, ollama.ChatMessage{Role: m.Role, Content: m.Content})
	}

	return p.llm.Chat(ctx, model, msgs, ollama.Options{
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		NumPredict:  opts.MaxTokens,
	})
}

func (p *BasicProvider) TranscribeVoice(ctx context.Context, path string) (string, string, error) {
	return p.stt.Transcribe(ctx, path)
}

func (p *BasicProvider) TextToSpeech(ctx context.Context, text, outPath, language, speaker string) error {
	if speaker == "" {
		speaker = p.cfg.TTS.Speaker
	}
	return p.tts.Synthesize(ctx, text, outPath, language, speaker)
}

func (p *BasicProvider) Speakers() []string {
	return p.speakers
}

func (p *BasicProvider) Models() []string {
	return p.cfg.Models.Available
}

func (p *BasicProvider) Name() string {
	return "basic"
}
