// Package config reads process configuration from the environment, after
// loading an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Email struct {
	Host     string
	Port     int
	Secure   bool
	User     string
	Password string
	From     string
	// Owner receives contact notifications. Defaults to User.
	Owner   string
	Timeout time.Duration
	// Sandbox routes mail to the in-memory outbox instead of SMTP.
	Sandbox           bool
	SimulateOnFailure bool
}

type LLM struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

type Config struct {
	Env         string
	Port        int
	BaseURL     string
	ParamPrefix string

	ProfilePath  string
	ProfileTable string
	ProfileID    string

	Email Email
	LLM   LLM

	TypingDelay      time.Duration
	MaxMessageLength int
	AllowedOrigins   []string

	LogLevel slog.Level
	LogFile  string
}

func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads .env (if present) and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	env := strings.ToLower(envOr("APP_ENV", EnvDevelopment))
	port := envInt("PORT", 3000)

	cfg := Config{
		Env:          env,
		Port:         port,
		BaseURL:      strings.TrimRight(firstNonEmpty(os.Getenv("BASE_URL"), os.Getenv("NEXT_PUBLIC_BASE_URL"), fmt.Sprintf("http://localhost:%d", port)), "/"),
		ParamPrefix:  strings.TrimRight(os.Getenv("PARAM_PREFIX"), "/"),
		ProfilePath:  os.Getenv("PROFILE_PATH"),
		ProfileTable: os.Getenv("PROFILE_TABLE"),
		ProfileID:    envOr("PROFILE_ID", "main"),
		Email: Email{
			Host:              envOr("EMAIL_HOST", "smtp.gmail.com"),
			Port:              envInt("EMAIL_PORT", 587),
			Secure:            envBool("EMAIL_SECURE", false),
			User:              os.Getenv("EMAIL_USER"),
			Password:          os.Getenv("EMAIL_PASS"),
			From:              os.Getenv("EMAIL_FROM"),
			Owner:             firstNonEmpty(os.Getenv("CONTACT_OWNER_EMAIL"), os.Getenv("EMAIL_USER")),
			Timeout:           envDuration("EMAIL_TIMEOUT", 10*time.Second),
			Sandbox:           envBool("EMAIL_SANDBOX", env != EnvProduction),
			SimulateOnFailure: envBool("EMAIL_SIMULATE_ON_FAILURE", false),
		},
		LLM: LLM{
			Provider:      strings.ToLower(envOr("LLM_PROVIDER", ProviderGemini)),
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.0-flash"),
			GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),
			OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),
			OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
			Timeout:       envDuration("LLM_TIMEOUT", 10*time.Second),
		},
		TypingDelay:      envDuration("CHAT_TYPING_DELAY", 500*time.Millisecond),
		MaxMessageLength: envInt("MAX_MESSAGE_LENGTH", 1000),
		AllowedOrigins:   envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:         envLevel("LOG_LEVEL", slog.LevelInfo),
		LogFile:          os.Getenv("LOG_FILE"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Env {
	case EnvProduction, EnvDevelopment:
	default:
		return fmt.Errorf("config: APP_ENV must be %q or %q, got %q", EnvProduction, EnvDevelopment, c.Env)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	}
	if !c.Email.Sandbox {
		if c.Email.Owner == "" {
			return errors.New("config: EMAIL_USER or CONTACT_OWNER_EMAIL is required when EMAIL_SANDBOX is off")
		}
		if c.Email.Port <= 0 || c.Email.Port > 65535 {
			return fmt.Errorf("config: EMAIL_PORT out of range: %d", c.Email.Port)
		}
	}
	if c.IsProduction() && isLoopbackURL(c.BaseURL) {
		return fmt.Errorf("config: BASE_URL must be the public site URL in production, got %q", c.BaseURL)
	}
	return nil
}

// isLoopbackURL reports whether raw points at this machine, which is what
// BaseURL falls back to when neither BASE_URL nor NEXT_PUBLIC_BASE_URL is set.
func isLoopbackURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("ignoring malformed integer environment variable", "key", key, "value", v)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring malformed boolean environment variable", "key", key, "value", v)
		return def
	}
	return b
}

// envDuration accepts Go durations ("750ms") and bare milliseconds ("750").
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("ignoring malformed duration environment variable", "key", key, "value", v)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envLevel(key string, def slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		slog.Warn("ignoring malformed log level", "key", key, "value", v)
		return def
	}
	return lvl
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
