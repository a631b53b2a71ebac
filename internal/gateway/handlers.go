package gateway

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mutedvoice/mutedvoice/internal/relay"
	"github.com/mutedvoice/mutedvoice/internal/version"
)

// maxWebhookBody caps how much of a delivery is read.
const maxWebhookBody = 1 << 20

// StatusResponse represents the gateway status.
type StatusResponse struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	IdentityResolved bool   `json:"identityResolved"`
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleRoot handles GET /
func (s *Server) handleRoot(c echo.Context) error {
	status := "stopped"
	if s.IsRunning() {
		status = "running"
	}
	return c.JSON(http.StatusOK, StatusResponse{
		Name:             "MutedVoice",
		Version:          version.Version,
		Status:           status,
		Uptime:           s.Uptime().String(),
		IdentityResolved: s.relay.BotID() != "",
	})
}

// handleWebhook handles POST /webex-webhook
func (s *Server) handleWebhook(c echo.Context) error {
	log := s.logger.With().
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Logger()

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return webhookError(c, &log, err)
	}
	log.Debug().Bytes("payload", body).Msg("Received webhook")

	ev, err := relay.ParseEvent(body)
	if err != nil {
		return webhookError(c, &log, err)
	}
	if err := c.Validate(ev); err != nil {
		return webhookError(c, &log, err)
	}

	// Outbound calls run to completion even if Webex drops the connection.
	ctx := log.WithContext(context.WithoutCancel(c.Request().Context()))
	outcome := s.relay.Handle(ctx, ev)

	log.Debug().
		Str("resource", ev.Resource).
		Str("event", ev.Event).
		Stringer("outcome", outcome).
		Msg("Webhook handled")

	return c.String(http.StatusOK, outcome.Reply())
}

func webhookError(c echo.Context, log *zerolog.Logger, err error) error {
	log.Error().Err(err).Msg("Webhook error")
	return c.String(http.StatusInternalServerError, "Webhook error: "+err.Error())
}
