package gateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware returns a middleware that limits requests per IP.
// It is a no-op unless enabled in config.
func (s *Server) RateLimitMiddleware() echo.MiddlewareFunc {
	cfg := s.config.RateLimit
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 20
	}

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(rps),
				Burst: burst,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.String(http.StatusForbidden, "Unable to identify client")
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			s.logger.Warn().Str("client", identifier).Msg("Rate limit exceeded")
			return context.String(http.StatusTooManyRequests, "Rate limit exceeded")
		},
	})
}
