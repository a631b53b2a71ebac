package commands

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mutedvoice/mutedvoice/internal/config"
	"github.com/mutedvoice/mutedvoice/internal/logging"
	"github.com/mutedvoice/mutedvoice/internal/webex"
)

// deps bundles what every networked command needs.
type deps struct {
	cfg    *config.Config
	logger zerolog.Logger
	client *webex.Client
}

// loadDeps loads and validates config, then builds the logger and the
// shared Webex client.
func loadDeps() (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Logging)
	clientLogger := logger.With().Str("component", "webex").Logger()

	client, err := webex.NewClient(webex.Config{
		BaseURL:            cfg.Webex.BaseURL,
		Token:              cfg.Webex.Token,
		ProxyURL:           cfg.Webex.Proxy.URL(),
		ConnectTimeout:     cfg.Webex.ConnectTimeout,
		RequestTimeout:     cfg.Webex.RequestTimeout,
		MembershipPageSize: cfg.Relay.MembershipPageSize,
		MembershipMaxPages: cfg.Relay.MembershipMaxPages,
	}, &clientLogger)
	if err != nil {
		return nil, err
	}

	return &deps{cfg: cfg, logger: logger, client: client}, nil
}
