package webex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	if cfg.Token == "" {
		cfg.Token = "test-token"
	}
	logger := zerolog.Nop()
	client, err := NewClient(cfg, &logger)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestMe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/people/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		writeJSON(w, `{"id":"bot-id","displayName":"MutedVoice","type":"bot"}`)
	})

	client := newTestClient(t, mux, Config{})
	me, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bot-id", me.ID)
	assert.Equal(t, "bot", me.Type)
}

func TestMeUnauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/people/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"The request requires a valid access token set in the Authorization request header.","trackingId":"ROUTER_1"}`))
	})

	client := newTestClient(t, mux, Config{})
	_, err := client.Me(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "ROUTER_1", apiErr.TrackingID)
	assert.Contains(t, err.Error(), "people/me")
}

func TestListMembershipsSinglePage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g1", r.URL.Query().Get("roomId"))
		assert.Equal(t, "50", r.URL.Query().Get("max"))
		writeJSON(w, `{"items":[{"id":"m1","roomId":"g1","personId":"u1"},{"id":"m2","roomId":"g1","personId":"u2"}]}`)
	})

	client := newTestClient(t, mux, Config{MembershipPageSize: 50})
	members, err := client.ListMemberships(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "u2", members[1].PersonID)
}

func TestListMembershipsFollowsNextLink(t *testing.T) {
	var srvURL string
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("cursor") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/v1/memberships?roomId=g1&max=1&cursor=abc>; rel="next"`, srvURL))
			writeJSON(w, `{"items":[{"personId":"u1"}]}`)
			return
		}
		assert.Equal(t, "g1", r.URL.Query().Get("roomId"))
		writeJSON(w, `{"items":[{"personId":"u2"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	logger := zerolog.Nop()
	client, err := NewClient(Config{BaseURL: srv.URL, Token: "t", MembershipPageSize: 1}, &logger)
	require.NoError(t, err)

	members, err := client.ListMemberships(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, members, 2)
	assert.Equal(t, "u2", members[1].PersonID)
}

func TestListMembershipsStopsAtPageLimit(t *testing.T) {
	var srvURL string
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Link", fmt.Sprintf(`<%s/v1/memberships?cursor=%d>; rel="next"`, srvURL, calls))
		writeJSON(w, `{"items":[{"personId":"u"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	srvURL = srv.URL

	logger := zerolog.Nop()
	client, err := NewClient(Config{BaseURL: srv.URL, Token: "t", MembershipMaxPages: 1}, &logger)
	require.NoError(t, err)

	members, err := client.ListMemberships(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, members, 1)
}

func TestListMembershipsRejectsForeignNextLink(t *testing.T) {
	foreignCalls := 0
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignCalls++
		writeJSON(w, `{"items":[]}`)
	}))
	t.Cleanup(foreign.Close)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/v1/memberships?cursor=abc>; rel="next"`, foreign.URL))
		writeJSON(w, `{"items":[{"personId":"u1"}]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	logger := zerolog.Nop()
	client, err := NewClient(Config{BaseURL: srv.URL, Token: "t"}, &logger)
	require.NoError(t, err)

	members, err := client.ListMemberships(context.Background(), "g1")
	assert.ErrorIs(t, err, ErrForeignNextLink)
	assert.Nil(t, members)
	assert.Zero(t, foreignCalls)
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewClient(Config{BaseURL: "not a url", Token: "t"}, &logger)
	assert.Error(t, err)
}

func TestListMembershipsMalformedBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/memberships", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"items":`)
	})

	client := newTestClient(t, mux, Config{})
	_, err := client.ListMemberships(context.Background(), "g1")
	assert.Error(t, err)
}

func TestGetMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, `{"id":"m1","roomId":"r1","roomType":"direct","text":"hello"}`)
	})

	client := newTestClient(t, mux, Config{})
	msg, err := client.GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, RoomTypeDirect, msg.RoomType)
	assert.Equal(t, "hello", msg.Text)
}

func TestGetMessageNotFound(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler(), Config{})
	_, err := client.GetMessage(context.Background(), "missing")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestCreateMessage(t *testing.T) {
	var got CreateMessageRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/messages", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, `{"id":"m9","roomId":"g1","roomType":"group","text":"Anonymous: hello"}`)
	})

	client := newTestClient(t, mux, Config{})
	msg, err := client.CreateMessage(context.Background(), CreateMessageRequest{RoomID: "g1", Text: "Anonymous: hello"})
	require.NoError(t, err)
	assert.Equal(t, "m9", msg.ID)
	assert.Equal(t, CreateMessageRequest{RoomID: "g1", Text: "Anonymous: hello"}, got)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	logger := zerolog.Nop()
	client, err := NewClient(Config{BaseURL: srv.URL, Token: "t"}, &logger)
	require.NoError(t, err)

	_, err = client.GetMessage(context.Background(), "m1")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "webex messages/get")
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewClient(Config{ProxyURL: "http://[::1"}, &logger)
	assert.Error(t, err)
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{"none", nil, ""},
		{"next only", []string{`<https://x/v1/memberships?cursor=a>; rel="next"`}, "https://x/v1/memberships?cursor=a"},
		{"prev and next", []string{`<https://x/p>; rel="prev", <https://x/n>; rel="next"`}, "https://x/n"},
		{"unquoted", []string{`<https://x/n>; rel=next`}, "https://x/n"},
		{"first only", []string{`<https://x/f>; rel="first"`}, ""},
		{"garbage", []string{`nonsense`}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextLink(tt.headers))
		})
	}
}
