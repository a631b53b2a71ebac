package webex

import (
	"errors"
	"fmt"
)

// RoomType is the kind of space a message was posted in.
type RoomType string

const (
	RoomTypeDirect RoomType = "direct"
	RoomTypeGroup  RoomType = "group"
)

// Person is the subset of /v1/people fields the bot uses.
type Person struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName,omitempty"`
	Emails      []string `json:"emails,omitempty"`
	Type        string   `json:"type,omitempty"` // "person" or "bot"
}

// Membership links a person to a room.
type Membership struct {
	ID                string `json:"id"`
	RoomID            string `json:"roomId"`
	PersonID          string `json:"personId"`
	PersonEmail       string `json:"personEmail,omitempty"`
	PersonDisplayName string `json:"personDisplayName,omitempty"`
	IsModerator       bool   `json:"isModerator,omitempty"`
}

type membershipPage struct {
	Items []Membership `json:"items"`
}

// Message is a Webex message as returned by GET /v1/messages/{id}.
type Message struct {
	ID          string   `json:"id"`
	RoomID      string   `json:"roomId"`
	RoomType    RoomType `json:"roomType"`
	Text        string   `json:"text"`
	PersonID    string   `json:"personId,omitempty"`
	PersonEmail string   `json:"personEmail,omitempty"`
	Created     string   `json:"created,omitempty"`
}

// CreateMessageRequest is the body of POST /v1/messages.
type CreateMessageRequest struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// errorBody is the JSON error envelope Webex returns on 4xx/5xx.
type errorBody struct {
	Message    string `json:"message"`
	TrackingID string `json:"trackingId"`
}

// ErrForeignNextLink is returned when a pagination link points at a host
// other than the configured base URL.
var ErrForeignNextLink = errors.New("webex memberships: next link leaves base url")

// APIError is returned when Webex answers with a non-200 status.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	TrackingID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unexpected status"
	}
	if e.TrackingID != "" {
		return fmt.Sprintf("webex %s: %d %s (trackingId %s)", e.Op, e.StatusCode, msg, e.TrackingID)
	}
	return fmt.Sprintf("webex %s: %d %s", e.Op, e.StatusCode, msg)
}
