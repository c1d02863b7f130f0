package provider

import (
	"context"
	"fmt"

	"github.com/KPEKEP/universal-llm-chatbot/internal/config"
)

// New builds the provider selected in the config. Backends register
// here by name; unknown names are a startup error, not a fallback.
func New(ctx context.Context, cfg *config.Config) (Provider, error) {
	pc := cfg.Active()

	switch cfg.Provider {
	case "basic":
		return NewBasicProvider(ctx, pc)
	case "openai":
		return NewOpenAIProvider(pc)
	default:
		return nil, fmt.Errorf("unknown provider: %q", cfg.Provider)
	}
}
