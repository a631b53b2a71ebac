package test

import (
	"net/http"

	"github.com/mutedvoice/mutedvoice/internal/webex"
)

// FakeWebex is a MockServer preloaded with the Webex endpoints the relay
// calls.
type FakeWebex struct {
	*MockServer
}

// NewFakeWebex serves people/me as bot, the memberships of the target
// room, and the given messages by id. Unknown message ids answer 404.
func NewFakeWebex(bot webex.Person, members []webex.Membership, messages map[string]webex.Message) *FakeWebex {
	fw := &FakeWebex{MockServer: NewMockServer()}

	fw.HandleJSON(http.MethodGet, "/v1/people/me", http.StatusOK, bot)
	fw.HandleJSON(http.MethodGet, "/v1/memberships", http.StatusOK, map[string]interface{}{"items": members})
	fw.HandleJSON(http.MethodPost, "/v1/messages", http.StatusOK, webex.Message{ID: "posted"})

	for id, msg := range messages {
		fw.HandleJSON(http.MethodGet, "/v1/messages/"+id, http.StatusOK, msg)
	}

	return fw
}

// Posted returns the bodies of every message the relay created.
func (fw *FakeWebex) Posted() []string {
	var out []string
	for _, r := range fw.RequestsTo(http.MethodPost, "/v1/messages") {
		out = append(out, string(r.Body))
	}
	return out
}
