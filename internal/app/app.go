// Package app builds the service graph shared by the Lambda and CLI entrypoints.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"portfolio-site/handler"
	"portfolio-site/internal/config"
	"portfolio-site/internal/domain"
	"portfolio-site/internal/integrations/gemini"
	"portfolio-site/internal/integrations/openai"
	"portfolio-site/internal/integrations/paramstore"
	"portfolio-site/internal/mail"
	"portfolio-site/internal/profile"
	"portfolio-site/internal/repository"
	"portfolio-site/internal/usecase"
	"portfolio-site/internal/widget"
)

// SSM parameter keys under PARAM_PREFIX.
const (
	paramGeminiKey = "gemini-api-key"
	paramOpenAIKey = "open-ai-token"
	paramEmailPass = "email-pass"

	outboxCapacity = 100
)

type App struct {
	Config        config.Config
	Profile       domain.ProfileFacts
	ProfileSource profile.Source
	Contact       *usecase.ContactService
	Relay         *usecase.RelayService
	Handler       *handler.Handler
	// Outbox is set when mail goes to the sandbox.
	Outbox *mail.Outbox
	// Store is set when PROFILE_TABLE is configured.
	Store *repository.Client
}

// New wires every dependency from cfg. AWS clients are only created when
// PARAM_PREFIX or PROFILE_TABLE asks for them.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg}

	var params paramstore.Getter
	if cfg.ParamPrefix != "" || cfg.ProfileTable != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		if cfg.ParamPrefix != "" {
			ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("app: create SSM client: %w", err)
			}
			params = ssmClient
		}
		if cfg.ProfileTable != "" {
			store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ProfileTable)
			if err != nil {
				return nil, fmt.Errorf("app: create profile store: %w", err)
			}
			a.Store = store
		}
	}

	loader := profile.Loader{ProfileID: cfg.ProfileID, Path: cfg.ProfilePath}
	if a.Store != nil {
		loader.Store = a.Store
	}
	facts, source, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load profile: %w", err)
	}
	a.Profile, a.ProfileSource = facts, source
	slog.InfoContext(ctx, "profile loaded", "source", source, "name", facts.Name)

	gen, err := newGenerator(cfg, params)
	if err != nil {
		return nil, err
	}
	a.Relay, err = usecase.NewRelayService(facts, gen, usecase.RelayConfig{
		Timeout:       cfg.LLM.Timeout,
		MaxMessageLen: cfg.MaxMessageLength,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}

	transport, err := a.newTransport(cfg, params)
	if err != nil {
		return nil, err
	}
	templates, err := mail.ParseTemplates()
	if err != nil {
		return nil, fmt.Errorf("app: parse mail templates: %w", err)
	}
	owner := cfg.Email.Owner
	if owner == "" {
		owner = facts.Contact.Email
	}
	from := cfg.Email.From
	if from == "" {
		from = cfg.Email.User
	}
	a.Contact, err = usecase.NewContactService(transport, templates, facts, usecase.ContactConfig{
		OwnerAddress:      owner,
		FromAddress:       from,
		BaseURL:           cfg.BaseURL,
		SendTimeout:       cfg.Email.Timeout,
		Production:        cfg.IsProduction(),
		SimulateOnFailure: cfg.Email.SimulateOnFailure,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create contact service: %w", err)
	}

	deps := handler.Deps{Contact: a.Contact, Chat: a.Relay, Profile: facts}
	if a.Outbox != nil {
		deps.Outbox = a.Outbox
	}
	a.Handler, err = handler.NewHandler(deps)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}
	return a, nil
}

// NewProfileStore connects to the DynamoDB profile table without building the
// rest of the application.
func NewProfileStore(ctx context.Context, table string) (*repository.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}
	store, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), table)
	if err != nil {
		return nil, fmt.Errorf("app: create profile store: %w", err)
	}
	return store, nil
}

// NewWidgetSession creates a closed chat widget session backed by r, greeting
// on behalf of the profile owner with the profile's suggestions.
func (a *App) NewWidgetSession(r widget.Responder) (*widget.Session, error) {
	return widget.NewSession(r, widget.Options{
		Welcome:     widget.Welcome(a.Profile.Name),
		TypingDelay: a.Config.TypingDelay,
		Suggestions: a.Profile.Suggestions,
	})
}

func (a *App) newTransport(cfg config.Config, params paramstore.Getter) (mail.Transport, error) {
	if cfg.Email.Sandbox {
		outbox, err := mail.NewOutbox(cfg.BaseURL, outboxCapacity)
		if err != nil {
			return nil, fmt.Errorf("app: create outbox: %w", err)
		}
		a.Outbox = outbox
		slog.Info("mail sandbox enabled", "preview_base", cfg.BaseURL+"/api/outbox/")
		return outbox, nil
	}

	password := paramstore.NewSecret(cfg.Email.Password, params, paramstore.Name(cfg.ParamPrefix, paramEmailPass))
	t, err := mail.NewSMTPTransport(mail.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Secure:   cfg.Email.Secure,
		Username: cfg.Email.User,
		Timeout:  cfg.Email.Timeout,
	}, password)
	if err != nil {
		return nil, fmt.Errorf("app: create smtp transport: %w", err)
	}
	return t, nil
}

// newGenerator returns nil when no API key can ever be resolved; the relay
// then answers every model question with a fallback.
func newGenerator(cfg config.Config, params paramstore.Getter) (usecase.Generator, error) {
	httpClient := &http.Client{Timeout: cfg.LLM.Timeout}

	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		if cfg.LLM.OpenAIAPIKey == "" && params == nil {
			slog.Warn("no OpenAI API key configured, chat will use fallback replies")
			return nil, nil
		}
		key := paramstore.NewSecret(cfg.LLM.OpenAIAPIKey, params, paramstore.Name(cfg.ParamPrefix, paramOpenAIKey))
		c, err := openai.NewClient(key, cfg.LLM.OpenAIModel,
			openai.WithBaseURL(cfg.LLM.OpenAIBaseURL),
			openai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("app: create OpenAI client: %w", err)
		}
		return c, nil
	default:
		if cfg.LLM.GeminiAPIKey == "" && params == nil {
			slog.Warn("no Gemini API key configured, chat will use fallback replies")
			return nil, nil
		}
		key := paramstore.NewSecret(cfg.LLM.GeminiAPIKey, params, paramstore.Name(cfg.ParamPrefix, paramGeminiKey))
		c, err := gemini.NewClient(key,
			gemini.WithModel(cfg.LLM.GeminiModel),
			gemini.WithBaseURL(cfg.LLM.GeminiBaseURL),
			gemini.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("app: create Gemini client: %w", err)
		}
		return c, nil
	}
}
