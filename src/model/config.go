package model

import "time"

// ----------------------------------------------------
// ================ Logging ================
// LogConfig is read from LOG_*
type LogConfig struct {
	Level      string `envconfig:"LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format     string `envconfig:"FORMAT" default:"json" validate:"oneof=json console"`
	Output     string `envconfig:"OUTPUT" default:"stdout" validate:"oneof=stdout stderr file both"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"rfc3339"`
	Dir        string `envconfig:"DIR" default:"logs"`
}

// ----------------------------------------------------
// ================ Sessions ================
// SessionConfig is read from SESSION_*
type SessionConfig struct {
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"60s" validate:"gt=0,ltfield=IdleThreshold"`
	IdleThreshold time.Duration `envconfig:"IDLE_THRESHOLD" default:"600s" validate:"gt=0"`
	// MaxTurns bounds the non-system turns sent to the provider; 0 sends all
	MaxTurns int `envconfig:"MAX_TURNS" default:"0" validate:"gte=0"`
}

// ----------------------------------------------------
// ================ Provider ================
// ProfileConfig is one backend profile. Unset fields take the profile's
// defaults when the provider config is normalized.
type ProfileConfig struct {
	APIKey  string        `envconfig:"API_KEY"`
	BaseURL string        `envconfig:"BASE_URL"`
	Model   string        `envconfig:"MODEL"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

// ProviderConfig selects exactly one backend profile
type ProviderConfig struct {
	Name     string        `envconfig:"LLM_PROVIDER" default:"openai" validate:"oneof=openai gemini ollama deepseek ark"`
	OpenAI   ProfileConfig `envconfig:"OPENAI"`
	Gemini   ProfileConfig `envconfig:"GEMINI"`
	Ollama   ProfileConfig `envconfig:"OLLAMA"`
	DeepSeek ProfileConfig `envconfig:"DEEPSEEK"`
	Ark      ProfileConfig `envconfig:"ARK"`
}

// ----------------------------------------------------
// ================ Transports ================
// TransportConfig is read from CHAT_*
type TransportConfig struct {
	Kind string `envconfig:"TRANSPORT" default:"console" validate:"oneof=telegram discord console"`
}

// TelegramConfig is read from TELEGRAM_*
type TelegramConfig struct {
	Token       string `envconfig:"BOT_TOKEN"`
	PollTimeout int    `envconfig:"POLL_TIMEOUT" default:"30" validate:"gte=0"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
}

// DiscordConfig is read from DISCORD_*
type DiscordConfig struct {
	Token string `envconfig:"BOT_TOKEN"`
}

// ----------------------------------------------------
// ================ Content ================
// PromptConfig is read from PROMPT_*
type PromptConfig struct {
	Path            string `envconfig:"PATH" default:"prompts/system_prompt.yaml" validate:"required"`
	NamePlaceholder string `envconfig:"NAME_PLACEHOLDER" default:"[Customer Name]" validate:"required"`
}

// CatalogConfig is read from CATALOG_*
type CatalogConfig struct {
	DefaultName   string  `envconfig:"DEFAULT_NAME" default:"there"`
	CODCharge     float64 `envconfig:"COD_CHARGE" default:"30" validate:"gte=0"`
	PaymentHandle string  `envconfig:"PAYMENT_HANDLE" default:"+91 9656190290"`
}

// ----------------------------------------------------
// ================ Order ledger ================
// LedgerConfig is read from LEDGER_*. RedisURL falls back to REDIS_URL.
type LedgerConfig struct {
	Backend  string        `envconfig:"BACKEND" default:"none" validate:"oneof=none file redis"`
	Dir      string        `envconfig:"DIR" default:"data/orders"`
	RedisURL string        `envconfig:"REDIS_URL" validate:"required_if=Backend redis"`
	TTL      time.Duration `envconfig:"TTL" default:"720h" validate:"gte=0"`
}
