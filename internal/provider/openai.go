package provider

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
	"github.com/KPEKEP/universal-llm-chatbot/internal/user"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider serves any OpenAI-compatible API, including local
// servers exposing the compatibility surface, via a configurable base
// URL. Transcription goes through the audio endpoint (whisper-1),
// synthesis through the speech endpoint.
type OpenAIProvider struct {
	cfg    config.ProviderConfig
	client *openai.Client
}

func NewOpenAIProvider(cfg config.ProviderConfig) (*OpenAIProvider, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}

	return &OpenAIProvider{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, model string, messages []user.Message, opts Options) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) TranscribeVoice(ctx context.Context, path string) (string, string, error) {
	resp, err := p.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return "", "", err
	}
	return resp.Text, resp.Language, nil
}

func (p *OpenAIProvider) TextToSpeech(ctx context.Context, text, outPath, language, speaker string) error {
	model := p.cfg.OpenAI.TTSModel
	if model == "" {
		model = string(openai.TTSModel1)
	}
	voice := speaker
	if voice == "" {
		voice = p.cfg.OpenAI.TTSVoice
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.SpeechModel(model),
		Input: text,
		Voice: openai.SpeechVoice(voice),
	})
	if err != nil {
		return err
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp)
	return err
}

// Speakers lists the fixed voice set of the speech endpoint.
func (p *OpenAIProvider) Speakers() []string {
	if len(p.cfg.TTS.Speakers) > 0 {
		return p.cfg.TTS.Speakers
	}
	return []string{
		string(openai.VoiceAlloy),
		string(openai.VoiceEcho),
		string(openai.VoiceFable),
		string(openai.VoiceOnyx),
		string(openai.VoiceNova),
		string(openai.VoiceShimmer),
	}
}

func (p *OpenAIProvider) Models() []string {
	return p.cfg.Models.Available
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}
