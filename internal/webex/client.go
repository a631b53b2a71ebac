// Package webex is a minimal client for the Webex REST endpoints the relay needs.
package webex

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/mutedvoice/mutedvoice/internal/version"
)

const (
	DefaultBaseURL        = "https://webexapis.com"
	DefaultConnectTimeout = 10 * time.Second
	defaultPageSize       = 100
	defaultMaxPages       = 10
)

// Config holds client settings.
type Config struct {
	BaseURL string
	Token   string
	// ProxyURL routes all calls through an HTTP proxy when non-empty.
	ProxyURL       string
	ConnectTimeout time.Duration
	// RequestTimeout bounds a whole call; zero means no limit.
	RequestTimeout     time.Duration
	MembershipPageSize int
	MembershipMaxPages int
}

// Client is a Webex REST client. It is safe for concurrent use and shares
// one connection pool across all calls.
type Client struct {
	http     *resty.Client
	base     *url.URL
	logger   *zerolog.Logger
	pageSize int
	maxPages int
}

// NewClient creates a new Webex client.
func NewClient(cfg Config, logger *zerolog.Logger) (*Client, error) {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}).DialContext

	if cfg.ProxyURL != "" {
		proxy, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", cfg.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
		logger.Info().Str("proxy", proxy.Host).Msg("Outbound proxy configured")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	rc := resty.NewWithClient(&http.Client{
		Transport: transport,
		Timeout:   cfg.RequestTimeout,
	}).
		SetBaseURL(base.String()).
		SetAuthToken(cfg.Token).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "mutedvoice/"+version.Version).
		SetRetryCount(0).
		SetLogger(&restyLogger{logger: logger})

	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Dur("latency", resp.Time()).
			Msg("webex call")
		return nil
	})

	pageSize := cfg.MembershipPageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxPages := cfg.MembershipMaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	return &Client{
		http:     rc,
		base:     base,
		logger:   logger,
		pageSize: pageSize,
		maxPages: maxPages,
	}, nil
}

// Me returns the person the token belongs to (GET /v1/people/me).
func (c *Client) Me(ctx context.Context) (*Person, error) {
	var person Person
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&person).
		SetError(&errorBody{}).
		Get("/v1/people/me")
	if err := checkResponse("people/me", resp, err); err != nil {
		return nil, err
	}
	return &person, nil
}

// ListMemberships returns the memberships of roomID, following Link
// rel="next" pages up to the configured page limit.
func (c *Client) ListMemberships(ctx context.Context, roomID string) ([]Membership, error) {
	var all []Membership

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("roomId", roomID).
		SetQueryParam("max", strconv.Itoa(c.pageSize))
	next := "/v1/memberships"

	for page := 1; next != ""; page++ {
		if page > c.maxPages {
			c.logger.Warn().
				Str("room", roomID).
				Int("pages", c.maxPages).
				Msg("Membership listing truncated at page limit")
			break
		}

		var result membershipPage
		resp, err := req.SetResult(&result).SetError(&errorBody{}).Get(next)
		if err := checkResponse("memberships", resp, err); err != nil {
			return nil, err
		}
		all = append(all, result.Items...)

		next = nextLink(resp.Header().Values("Link"))
		if err := c.checkSameOrigin(next); err != nil {
			return nil, err
		}
		// Next links carry their own query string.
		req = c.http.R().SetContext(ctx)
	}

	return all, nil
}

// GetMessage fetches a single message (GET /v1/messages/{id}).
func (c *Client) GetMessage(ctx context.Context, messageID string) (*Message, error) {
	var msg Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", messageID).
		SetResult(&msg).
		SetError(&errorBody{}).
		Get("/v1/messages/{id}")
	if err := checkResponse("messages/get", resp, err); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateMessage posts a text message to a room (POST /v1/messages).
func (c *Client) CreateMessage(ctx context.Context, req CreateMessageRequest) (*Message, error) {
	var msg Message
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&msg).
		SetError(&errorBody{}).
		Post("/v1/messages")
	if err := checkResponse("messages/create", resp, err); err != nil {
		return nil, err
	}
	return &msg, nil
}

// checkResponse turns transport failures and anything but 200 into errors.
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("webex %s: %w", op, err)
	}
	if resp.StatusCode() == http.StatusOK {
		return nil
	}
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Message
		apiErr.TrackingID = body.TrackingID
	}
	return apiErr
}

// checkSameOrigin rejects absolute links that point away from the base
// URL, so the bearer token is only ever sent to the configured host.
func (c *Client) checkSameOrigin(link string) error {
	if link == "" {
		return nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("webex memberships: bad next link %q: %w", link, err)
	}
	if !u.IsAbs() {
		return nil
	}
	if !strings.EqualFold(u.Scheme, c.base.Scheme) || !strings.EqualFold(u.Host, c.base.Host) {
		return fmt.Errorf("%w: %s", ErrForeignNextLink, u.Host)
	}
	return nil
}

// nextLink extracts the rel="next" target from RFC 5988 Link headers.
func nextLink(headers []string) string {
	for _, header := range headers {
		for _, part := range strings.Split(header, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}
			target := strings.TrimSpace(segments[0])
			if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
				continue
			}
			for _, param := range segments[1:] {
				param = strings.TrimSpace(param)
				if param == `rel="next"` || param == "rel=next" {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}

// restyLogger routes resty's internal warnings through zerolog.
type restyLogger struct {
	logger *zerolog.Logger
}

func (l *restyLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

func (l *restyLogger) Warnf(format string, args ...interface{}) {
	l.logger.Warn().Msgf(format, args...)
}

func (l *restyLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}
