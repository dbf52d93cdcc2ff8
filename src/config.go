package src

import (
	"fmt"
	"strings"

	"eino_chat_bridge/src/model"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Provider profile names
const (
	ProviderOpenAI   = "openai"
	ProviderGemini   = "gemini"
	ProviderOllama   = "ollama"
	ProviderDeepSeek = "deepseek"
	ProviderArk      = "ark"
)

// profileDefaults holds the base URL and model each profile falls back to
var profileDefaults = map[string]model.ProfileConfig{
	ProviderOpenAI:   {BaseURL: "https://api.openai.com/v1", Model: "gpt-3.5-turbo"},
	ProviderGemini:   {BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/", Model: "gemini-pro"},
	ProviderOllama:   {BaseURL: "http://localhost:11434", Model: "llama3.2:latest"},
	ProviderDeepSeek: {BaseURL: "https://api.deepseek.com", Model: "deepseek-chat"},
	ProviderArk:      {BaseURL: "https://ark.cn-beijing.volces.com/api/v3", Model: "doubao-pro-32k"},
}

type Config struct {
	LogConfig       model.LogConfig
	SessionConfig   model.SessionConfig
	ProviderConfig  model.ProviderConfig
	TransportConfig model.TransportConfig
	TelegramConfig  model.TelegramConfig
	DiscordConfig   model.DiscordConfig
	PromptConfig    model.PromptConfig
	CatalogConfig   model.CatalogConfig
	LedgerConfig    model.LedgerConfig
}

// LoadConfig reads every config section from the environment, fills profile
// defaults and validates the result
func LoadConfig() (*Config, error) {
	var config Config

	sections := []struct {
		prefix string
		target any
	}{
		{"LOG", &config.LogConfig},
		{"SESSION", &config.SessionConfig},
		{"", &config.ProviderConfig},
		{"CHAT", &config.TransportConfig},
		{"TELEGRAM", &config.TelegramConfig},
		{"DISCORD", &config.DiscordConfig},
		{"PROMPT", &config.PromptConfig},
		{"CATALOG", &config.CatalogConfig},
		{"LEDGER", &config.LedgerConfig},
	}
	for _, section := range sections {
		if err := envconfig.Process(section.prefix, section.target); err != nil {
			return nil, fmt.Errorf("error processing environment configuration: %w", err)
		}
	}

	config.ProviderConfig.Name = strings.ToLower(strings.TrimSpace(config.ProviderConfig.Name))
	ApplyProfileDefaults(&config.ProviderConfig)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks field constraints across all sections
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ApplyProfileDefaults fills empty base URLs and models of every profile
func ApplyProfileDefaults(cfg *model.ProviderConfig) {
	for name, profile := range map[string]*model.ProfileConfig{
		ProviderOpenAI:   &cfg.OpenAI,
		ProviderGemini:   &cfg.Gemini,
		ProviderOllama:   &cfg.Ollama,
		ProviderDeepSeek: &cfg.DeepSeek,
		ProviderArk:      &cfg.Ark,
	} {
		defaults := profileDefaults[name]
		if profile.BaseURL == "" {
			profile.BaseURL = defaults.BaseURL
		}
		if profile.Model == "" {
			profile.Model = defaults.Model
		}
	}
}

// KnownProvider reports whether name is one of the supported profiles
func KnownProvider(name string) bool {
	_, ok := profileDefaults[name]
	return ok
}

// ActiveProfile returns the profile selected by cfg.Name
func ActiveProfile(cfg model.ProviderConfig) (model.ProfileConfig, error) {
	switch cfg.Name {
	case ProviderOpenAI:
		return cfg.OpenAI, nil
	case ProviderGemini:
		return cfg.Gemini, nil
	case ProviderOllama:
		return cfg.Ollama, nil
	case ProviderDeepSeek:
		return cfg.DeepSeek, nil
	case ProviderArk:
		return cfg.Ark, nil
	default:
		return model.ProfileConfig{}, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
