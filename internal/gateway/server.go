// Package gateway provides the MutedVoice HTTP server.
// It receives Webex webhook deliveries and hands them to the relay.
package gateway

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/mutedvoice/mutedvoice/internal/config"
	"github.com/mutedvoice/mutedvoice/internal/relay"
)

// DefaultWebhookPath is where Webex delivers webhook events.
const DefaultWebhookPath = "/webex-webhook"

// Config holds the gateway configuration.
type Config struct {
	Host        string
	Port        int
	WebhookPath string
	RateLimit   config.RateLimitConfig
}

// Server represents the MutedVoice gateway server.
type Server struct {
	config *Config
	echo   *echo.Echo
	logger zerolog.Logger
	relay  *relay.Handler

	mu        sync.RWMutex
	running   bool
	startTime time.Time
}

// New creates a new gateway server. The relay handler must already carry
// the resolved bot identity: routes are reachable as soon as New returns.
func New(cfg *Config, handler *relay.Handler, logger zerolog.Logger) *Server {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = DefaultWebhookPath
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewCustomValidator()

	s := &Server{
		config: cfg,
		echo:   e,
		logger: logger.With().Str("component", "gateway").Logger(),
		relay:  handler,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP lets the server be driven directly, e.g. by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("gateway already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	serveErr := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", addr).Str("webhook", s.config.WebhookPath).Msg("Gateway server starting")
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	// Fallback: if terminal is in raw/no-ISIG mode, Ctrl+C may appear as byte 0x03.
	manualQuit := make(chan struct{}, 1)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		go func() {
			reader := bufio.NewReader(os.Stdin)
			for {
				b, err := reader.ReadByte()
				if err != nil {
					return
				}
				if b == 3 {
					manualQuit <- struct{}{}
					return
				}
			}
		}()
	}

	select {
	case err := <-serveErr:
		s.setStopped()
		return fmt.Errorf("gateway server failed: %w", err)
	case <-quit:
	case <-manualQuit:
	}

	s.logger.Info().Msg("Shutting down gateway server...")
	defer s.setStopped()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info().
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	s.echo.Use(middleware.Recover())

	s.echo.Use(s.RateLimitMiddleware())
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/", s.handleRoot)
	s.echo.POST(s.config.WebhookPath, s.handleWebhook)
}

// IsRunning returns whether the gateway is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Uptime returns how long the gateway has been running.
func (s *Server) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}
