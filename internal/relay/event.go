package relay

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	ResourceMessages = "messages"
	EventCreated     = "created"
)

// ErrMalformedEvent is returned for webhook bodies that cannot be handled.
var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is the part of a Webex webhook delivery the relay looks at.
// The data.* fields are only required for messages/created deliveries.
type Event struct {
	Resource  string `json:"resource"`
	Event     string `json:"event"`
	MessageID string `json:"messageId" validate:"required_if=Resource messages Event created"`
	RoomID    string `json:"roomId" validate:"required_if=Resource messages Event created"`
	PersonID  string `json:"personId" validate:"required_if=Resource messages Event created"`
}

// ParseEvent extracts an Event from a raw webhook body.
func ParseEvent(body []byte) (*Event, error) {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid JSON", ErrMalformedEvent)
	}

	fields := gjson.GetManyBytes(body, "resource", "event", "data.id", "data.roomId", "data.personId")
	return &Event{
		Resource:  fields[0].String(),
		Event:     fields[1].String(),
		MessageID: fields[2].String(),
		RoomID:    fields[3].String(),
		PersonID:  fields[4].String(),
	}, nil
}

// IsMessageCreated reports whether this is the one event type the relay acts on.
func (e *Event) IsMessageCreated() bool {
	return e.Resource == ResourceMessages && e.Event == EventCreated
}
