package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full bot configuration loaded from config.yml.
// Secrets (telegram token, database DSN, S3 keys) come from the
// environment only and are never read from the file.
type Config struct {
	Language           string `yaml:"language"`
	Provider           string `yaml:"provider"`
	RemindSystemPrompt bool   `yaml:"remind_system_prompt"`
	MaxMessageHistory  int    `yaml:"max_message_history_num"`

	Telegram  TelegramConfig            `yaml:"telegram"`
	RateLimit RateLimitConfig           `yaml:"rate_limit"`
	UserDB    UserDBConfig              `yaml:"user_data_db"`
	Providers map[string]ProviderConfig `yaml:"providers"`
	HTTP      HTTPConfig                `yaml:"http"`
	Archive   ArchiveConfig             `yaml:"archive"`
}

type TelegramConfig struct {
	Token      string  `yaml:"-"`
	AdminUsers []int64 `yaml:"admin_users"`
	AccessMode string  `yaml:"access_mode"` // open | whitelist | blacklist
}

type RateLimitConfig struct {
	UserMaxRequests        int `yaml:"user_max_requests"`
	UserTimeFrameSeconds   int `yaml:"user_time_frame_seconds"`
	GlobalMaxRequests      int `yaml:"global_max_requests"`
	GlobalTimeFrameSeconds int `yaml:"global_time_frame_seconds"`
}

func (c RateLimitConfig) UserWindow() time.Duration {
	return time.Duration(c.UserTimeFrameSeconds) * time.Second
}

func (c RateLimitConfig) GlobalWindow() time.Duration {
	return time.Duration(c.GlobalTimeFrameSeconds) * time.Second
}

type UserDBConfig struct {
	Driver        string `yaml:"driver"` // sqlite | postgres
	Name          string `yaml:"name"`   // file path for sqlite, DSN via env for postgres
	MaxCacheSize  int    `yaml:"max_cache_size"`
	MaxTTLSeconds int    `yaml:"max_ttl"`
}

func (c UserDBConfig) CacheTTL() time.Duration {
	return time.Duration(c.MaxTTLSeconds) * time.Second
}

type ProviderConfig struct {
	Models ModelsConfig `yaml:"models"`
	Ollama OllamaConfig `yaml:"ollama"`
	Voice  VoiceConfig  `yaml:"voice"`
	TTS    TTSConfig    `yaml:"tts"`
	OpenAI OpenAIConfig `yaml:"openai"`
}

type ModelsConfig struct {
	Default      string   `yaml:"default"`
	Available    []string `yaml:"available"`
	SystemPrompt string   `yaml:"system_prompt"`
	Temperature  float64  `yaml:"temperature"`
	TopP         float64  `yaml:"top_p"`
	MaxTokens    int      `yaml:"max_tokens"`
}

type OllamaConfig struct {
	Host           string `yaml:"host"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PullOnStart    bool   `yaml:"pull_on_start"`
}

type VoiceConfig struct {
	Host         string `yaml:"host"`
	WhisperModel string `yaml:"whisper_model"`
}

type TTSConfig struct {
	Host           string   `yaml:"host"`
	Speaker        string   `yaml:"speaker"`
	Speakers       []string `yaml:"speakers"`
	Languages      []string `yaml:"languages"`
	SplitSentences bool     `yaml:"split_sentences"`
}

type OpenAIConfig struct {
	BaseURL  string `yaml:"base_url"`
	TTSModel string `yaml:"tts_model"`
	TTSVoice string `yaml:"tts_voice"`
}

type HTTPConfig struct {
	Port              string `yaml:"port"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
}

// Load reads the YAML file at path and applies env overrides.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Language == "" {
		c.Language = "en"
	}
	if c.Provider == "" {
		c.Provider = "basic"
	}
	if c.MaxMessageHistory <= 0 {
		c.MaxMessageHistory = 50
	}
	if c.Telegram.AccessMode == "" {
		c.Telegram.AccessMode = "open"
	}
	if c.RateLimit.UserMaxRequests <= 0 {
		c.RateLimit.UserMaxRequests = 5
	}
	if c.RateLimit.UserTimeFrameSeconds <= 0 {
		c.RateLimit.UserTimeFrameSeconds = 60
	}
	if c.RateLimit.GlobalMaxRequests <= 0 {
		c.RateLimit.GlobalMaxRequests = 100
	}
	if c.RateLimit.GlobalTimeFrameSeconds <= 0 {
		c.RateLimit.GlobalTimeFrameSeconds = 60
	}
	if c.UserDB.Driver == "" {
		c.UserDB.Driver = "sqlite"
	}
	if c.UserDB.Name == "" {
		c.UserDB.Name = "data/user_data.db"
	}
	if c.UserDB.MaxCacheSize <= 0 {
		c.UserDB.MaxCacheSize = 1000
	}
	if c.UserDB.MaxTTLSeconds <= 0 {
		c.UserDB.MaxTTLSeconds = 600
	}
	if c.HTTP.Port == "" {
		c.HTTP.Port = "8080"
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		c.HTTP.RequestsPerMinute = 60
	}

	for name, p := range c.Providers {
		if p.Ollama.Host == "" {
			p.Ollama.Host = "http://localhost:11434"
		}
		if p.Ollama.TimeoutSeconds <= 0 {
			p.Ollama.TimeoutSeconds = 120
		}
		if p.Models.Temperature == 0 {
			p.Models.Temperature = 0.7
		}
		if p.Models.TopP == 0 {
			p.Models.TopP = 0.9
		}
		if p.Models.MaxTokens <= 0 {
			p.Models.MaxTokens = 1024
		}
		c.Providers[name] = p
	}
}

func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	switch c.Telegram.AccessMode {
	case "open", "whitelist", "blacklist":
	default:
		return fmt.Errorf("unknown access_mode: %q", c.Telegram.AccessMode)
	}
	switch c.UserDB.Driver {
	case "sqlite":
	case "postgres":
		if os.Getenv("DATABASE_URL") == "" {
			return fmt.Errorf("DATABASE_URL is not set for postgres driver")
		}
	default:
		return fmt.Errorf("unknown user_data_db driver: %q", c.UserDB.Driver)
	}
	if _, ok := c.Providers[c.Provider]; !ok {
		return fmt.Errorf("provider %q has no configuration block", c.Provider)
	}
	p := c.Providers[c.Provider]
	if p.Models.Default == "" {
		return fmt.Errorf("provider %q: models.default is empty", c.Provider)
	}
	return nil
}

// Active returns the configuration block of the selected provider.
func (c *Config) Active() ProviderConfig {
	return c.Providers[c.Provider]
}
