package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/hiring-tracker/internal/config"
	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/llm"
	"github.com/jonathan/hiring-tracker/internal/notify"
	"github.com/jonathan/hiring-tracker/internal/server/ratelimit"
)

// loadConfig reads --config and the environment and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return database, nil
}

// newSender returns an SMTP sender, or a sender that only logs when no relay is configured.
func newSender(cfg config.SMTPConfig) (notify.Sender, error) {
	if cfg.Host == "" {
		log.Printf("[notify] no SMTP host configured, emails will be logged")
		return notify.LogSender{}, nil
	}
	return notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		StartTLS: cfg.StartTLS,
	})
}

// llmConfig maps the file/env settings onto a provider config. The configured
// model, if any, is used for standard-tier scoring.
func llmConfig(cfg config.LLMConfig) (*llm.Config, error) {
	provider, err := llm.ParseProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}
	out := llm.DefaultConfigFor(provider)
	if cfg.Model != "" {
		out = out.WithModel(llm.TierStandard, cfg.Model)
	}
	out.BaseURL = cfg.BaseURL
	return out, nil
}

// newMatcher builds the match scorer. It returns nil, nil when no API key is set.
func newMatcher(ctx context.Context, cfg config.LLMConfig) (*llm.Matcher, llm.Client, error) {
	if cfg.APIKey == "" {
		log.Printf("[llm] no API key configured, match scoring disabled")
		return nil, nil, nil
	}
	lc, err := llmConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(ctx, lc, cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	log.Printf("[llm] match scoring with %s (%s)", lc.Provider, lc.GetModel(llm.TierStandard))
	return llm.NewMatcher(client), client, nil
}

func rateLimitConfig(c config.RateLimitConfig) *ratelimit.Config {
	if !c.Enabled {
		log.Printf("[rate-limit] disabled by config")
		return ratelimit.Disabled()
	}
	return ratelimit.NewConfig(c.Limit, c.Window).Trust(c.Allow...).Block(c.Deny...)
}
