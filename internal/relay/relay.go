// Package relay decides whether an inbound Webex message is reposted
// anonymously into the target group space, and performs the repost.
//
// Each delivery runs through three gates in order, stopping at the first
// that fails:
//
//  1. the message was not written by the bot itself,
//  2. the sender is a member of the target group space,
//  3. the original message was sent in a direct (1:1) space.
//
// A message that passes all three but has no text is not reposted.
//
// Every remote call is attempted once. A failed call ends processing of the
// event without surfacing an error to the webhook caller.
package relay

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mutedvoice/mutedvoice/internal/webex"
)

// DefaultPrefix marks reposted text as anonymous.
const DefaultPrefix = "Anonymous: "

// IdentitySource resolves the account behind the bot token.
type IdentitySource interface {
	Me(ctx context.Context) (*webex.Person, error)
}

// API is the set of Webex calls made while handling an event.
type API interface {
	ListMemberships(ctx context.Context, roomID string) ([]webex.Membership, error)
	GetMessage(ctx context.Context, messageID string) (*webex.Message, error)
	CreateMessage(ctx context.Context, req webex.CreateMessageRequest) (*webex.Message, error)
}

// Outcome is where processing of a single event ended.
type Outcome int

const (
	OutcomeUnhandled Outcome = iota
	OutcomeIgnoredSelf
	OutcomeIgnoredOutsider
	OutcomeFetchFailed
	OutcomeNotDirect
	OutcomeEmpty
	OutcomeForwarded
	OutcomeForwardFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnhandled:
		return "unhandled"
	case OutcomeIgnoredSelf:
		return "ignored_self"
	case OutcomeIgnoredOutsider:
		return "ignored_outsider"
	case OutcomeFetchFailed:
		return "fetch_failed"
	case OutcomeNotDirect:
		return "not_direct"
	case OutcomeEmpty:
		return "empty"
	case OutcomeForwarded:
		return "forwarded"
	case OutcomeForwardFailed:
		return "forward_failed"
	default:
		return "unknown"
	}
}

// Reply is the plain-text body returned to the webhook caller.
func (o Outcome) Reply() string {
	switch o {
	case OutcomeIgnoredSelf:
		return "Ignored self message."
	case OutcomeIgnoredOutsider:
		return "Ignoring message sent by outsider."
	default:
		return "OK"
	}
}

// Options configures a Handler.
type Options struct {
	// BotID is the bot's own person id. Empty disables self-suppression.
	BotID        string
	TargetRoomID string
	Prefix       string
}

// Handler processes message-created events. Its fields are fixed at
// construction, so one Handler is shared by all concurrent deliveries.
type Handler struct {
	api          API
	botID        string
	targetRoomID string
	prefix       string
	logger       *zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(api API, opts Options, logger *zerolog.Logger) *Handler {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Handler{
		api:          api,
		botID:        opts.BotID,
		targetRoomID: opts.TargetRoomID,
		prefix:       prefix,
		logger:       logger,
	}
}

// BotID returns the resolved bot identity, or "" if resolution failed.
func (h *Handler) BotID() string {
	return h.botID
}

// TargetRoomID returns the group space reposts go to.
func (h *Handler) TargetRoomID() string {
	return h.targetRoomID
}

// ResolveBotID looks up the bot's own person id. It is called once at
// startup; failures are logged and yield "", which leaves self-message
// suppression off until the process restarts.
func ResolveBotID(ctx context.Context, src IdentitySource, logger *zerolog.Logger) string {
	me, err := src.Me(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to retrieve bot ID, self-message suppression disabled")
		return ""
	}
	logger.Info().Str("bot_id", me.ID).Str("name", me.DisplayName).Msg("Bot initialized")
	return me.ID
}

// Handle runs ev through the gates and forwards it if all of them pass.
func (h *Handler) Handle(ctx context.Context, ev *Event) Outcome {
	if !ev.IsMessageCreated() {
		return OutcomeUnhandled
	}

	log := h.contextLogger(ctx).With().
		Str("message_id", ev.MessageID).
		Str("room_id", ev.RoomID).
		Str("sender", ev.PersonID).
		Logger()

	if h.botID != "" && h.botID == ev.PersonID {
		log.Info().Msg("Ignoring message sent by self")
		return OutcomeIgnoredSelf
	}

	if !h.belongsToTargetGroup(ctx, &log, h.targetRoomID, ev.PersonID) {
		log.Info().Msg("Ignoring message sent by outsider")
		return OutcomeIgnoredOutsider
	}

	msg, err := h.api.GetMessage(ctx, ev.MessageID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch message")
		return OutcomeFetchFailed
	}

	if msg.RoomType != webex.RoomTypeDirect {
		log.Debug().Str("room_type", string(msg.RoomType)).Msg("Message not sent directly, skipping")
		return OutcomeNotDirect
	}

	// File-only messages carry no text; there is nothing to repost.
	if strings.TrimSpace(msg.Text) == "" {
		log.Info().Msg("Message has no text, skipping")
		return OutcomeEmpty
	}

	_, err = h.api.CreateMessage(ctx, webex.CreateMessageRequest{
		RoomID: h.targetRoomID,
		Text:   h.prefix + msg.Text,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to post anonymous message")
		return OutcomeForwardFailed
	}

	log.Info().Msg("Successfully posted anonymous message")
	return OutcomeForwarded
}

// belongsToTargetGroup reports whether accountID is a member of groupID.
// It fails closed: if membership cannot be determined the sender is
// treated as an outsider.
func (h *Handler) belongsToTargetGroup(ctx context.Context, log *zerolog.Logger, groupID, accountID string) bool {
	members, err := h.api.ListMemberships(ctx, groupID)
	if err != nil {
		log.Warn().Err(err).Str("group", groupID).Msg("Membership check failed, treating sender as outsider")
		return false
	}
	for _, m := range members {
		if m.PersonID == accountID {
			return true
		}
	}
	return false
}

// contextLogger prefers a request-scoped logger stored in ctx.
func (h *Handler) contextLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return h.logger
}
