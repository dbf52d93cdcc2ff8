// Package provider wraps the one generative backend chosen at startup
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"eino_chat_bridge/pkg"
	"eino_chat_bridge/src"
	"eino_chat_bridge/src/conversation"
	"eino_chat_bridge/src/logger"
	srcmodel "eino_chat_bridge/src/model"
)

var (
	// ErrNotConfigured means the active profile has no credential
	ErrNotConfigured = errors.New("provider not configured")
	// ErrBackend covers every failed completion: transport, status or payload
	ErrBackend = errors.New("provider backend failure")
	// ErrUnknownProvider is returned for a profile name outside the fixed set
	ErrUnknownProvider = errors.New("unknown provider")
)

var displayNames = map[string]string{
	src.ProviderOpenAI:   "OpenAI",
	src.ProviderGemini:   "Gemini",
	src.ProviderOllama:   "Ollama",
	src.ProviderDeepSeek: "DeepSeek",
	src.ProviderArk:      "Ark",
}

// Profile is the immutable description of the active backend
type Profile struct {
	Name        string
	DisplayName string
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
}

// NeedsKey reports whether the profile requires an API key. A local Ollama
// server accepts unauthenticated requests.
func (p Profile) NeedsKey() bool {
	return p.Name != src.ProviderOllama
}

// ConfigNotice is the reply sent while the profile lacks a credential
func (p Profile) ConfigNotice() string {
	return fmt.Sprintf("%s API Key not set. Please check server config.", p.DisplayName)
}

// NewProfile resolves a named profile from its config section
func NewProfile(name string, cfg srcmodel.ProfileConfig) (Profile, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	display, ok := displayNames[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return Profile{
		Name:        name,
		DisplayName: display,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      strings.TrimSpace(cfg.APIKey),
		Timeout:     cfg.Timeout,
	}, nil
}

// Gateway sends conversation histories to the active backend
type Gateway struct {
	profile  Profile
	model    model.BaseChatModel
	strategy conversation.ContextStrategy
}

// New builds the eino chat model for the profile. An unconfigured profile
// yields a gateway whose Complete always fails with ErrNotConfigured.
func New(ctx context.Context, profile Profile, strategy conversation.ContextStrategy) (*Gateway, error) {
	g := &Gateway{profile: profile, strategy: strategy}
	if !g.Configured() {
		logger.Warn().
			Str("provider", profile.Name).
			Msg("No API key configured, replies will carry the configuration notice")
		return g, nil
	}

	chatModel, err := newChatModel(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("error creating %s chat model: %w", profile.Name, err)
	}
	g.model = chatModel

	logger.Info().
		Str("provider", profile.Name).
		Str("base_url", profile.BaseURL).
		Str("model", profile.Model).
		Msg("Provider gateway ready")
	return g, nil
}

// NewWithModel wraps an existing chat model
func NewWithModel(profile Profile, chatModel model.BaseChatModel, strategy conversation.ContextStrategy) *Gateway {
	return &Gateway{profile: profile, model: chatModel, strategy: strategy}
}

func newChatModel(ctx context.Context, p Profile) (model.BaseChatModel, error) {
	temperature := float32(0)

	switch p.Name {
	case src.ProviderOpenAI, src.ProviderGemini:
		// Gemini is served through its OpenAI-compatible endpoint
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			Timeout:     p.Timeout,
			Temperature: &temperature,
		})
	case src.ProviderOllama:
		return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Timeout: p.Timeout,
		})
	case src.ProviderDeepSeek:
		return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  p.APIKey,
			BaseURL: p.BaseURL,
			Model:   p.Model,
			Timeout: p.Timeout,
		})
	case src.ProviderArk:
		return ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:      p.APIKey,
			BaseURL:     p.BaseURL,
			Model:       p.Model,
			Temperature: &temperature,
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p.Name)
	}
}

// Profile returns the active profile
func (g *Gateway) Profile() Profile {
	return g.profile
}

// Configured reports whether Complete may reach the backend
func (g *Gateway) Configured() bool {
	return !g.profile.NeedsKey() || g.profile.APIKey != ""
}

// Complete sends the history to the backend and returns the generated text
func (g *Gateway) Complete(ctx context.Context, history []pkg.ConversationMessage) (string, error) {
	if !g.Configured() || g.model == nil {
		return "", fmt.Errorf("%s: %w", g.profile.Name, ErrNotConfigured)
	}

	messages := ToSchemaMessages(history)
	if g.strategy != nil {
		messages = g.strategy.BuildContext(messages)
	}

	start := time.Now()
	resp, err := g.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrBackend, g.profile.Name, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrBackend, g.profile.Name)
	}

	logger.Debug().
		Str("provider", g.profile.Name).
		Int("messages", len(messages)).
		Dur("elapsed", time.Since(start)).
		Msg("Completion received")
	return resp.Content, nil
}

// ToSchemaMessages converts stored turns to eino messages
func ToSchemaMessages(history []pkg.ConversationMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case pkg.RoleSystem:
			out = append(out, schema.SystemMessage(turn.Content))
		case pkg.RoleAssistant:
			out = append(out, schema.AssistantMessage(turn.Content, nil))
		default:
			out = append(out, schema.UserMessage(turn.Content))
		}
	}
	return out
}
