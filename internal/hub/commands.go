package hub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type conversationRef struct {
	ConversationID uuid.UUID `json:"conversationId"`
}

type callSignalCmd struct {
	ConversationID uuid.UUID       `json:"conversationId"`
	TargetUserID   uuid.UUID       `json:"targetUserId"`
	Data           json.RawMessage `json:"data"`
}

type callStateCmd struct {
	ConversationID uuid.UUID `json:"conversationId"`
	Muted          *bool     `json:"muted,omitempty"`
	ScreenSharing  *bool     `json:"screenSharing,omitempty"`
}

// HandleCommand routes one inbound frame from the connection's read loop.
// Unauthorized or malformed commands fail silent; only storage-backed
// commands acknowledge failure back to the caller.
func (h *Hub) HandleCommand(c *Conn, cmd Envelope) {
	commandsHandled.WithLabelValues(cmd.Type).Inc()
	ctx := context.Background()

	switch cmd.Type {
	case CmdConversationRead:
		var ref conversationRef
		if err := json.Unmarshal(cmd.Payload, &ref); err != nil {
			return
		}
		if err := h.MarkRead(ctx, c, ref.ConversationID); err != nil {
			log.Error().Err(err).Str("user_id", c.user.String()).Msg("mark read failed")
			_ = c.Send(EventAck, dto.Ack{Op: CmdConversationRead, OK: false})
		}

	case CmdTypingStart:
		var ref conversationRef
		if err := json.Unmarshal(cmd.Payload, &ref); err != nil {
			return
		}
		h.TypingStart(c, ref.ConversationID)

	case CmdTypingStop:
		var ref conversationRef
		if err := json.Unmarshal(cmd.Payload, &ref); err != nil {
			return
		}
		h.TypingStop(c, ref.ConversationID)

	case CmdCallJoin:
		var ref conversationRef
		if err := json.Unmarshal(cmd.Payload, &ref); err != nil {
			return
		}
		h.CallJoin(c, ref.ConversationID)

	case CmdCallSignal:
		var sig callSignalCmd
		if err := json.Unmarshal(cmd.Payload, &sig); err != nil {
			return
		}
		h.CallSignal(c, sig.ConversationID, sig.TargetUserID, sig.Data)

	case CmdCallState:
		var st callStateCmd
		if err := json.Unmarshal(cmd.Payload, &st); err != nil {
			return
		}
		h.CallSetState(c, st.ConversationID, st.Muted, st.ScreenSharing)

	case CmdCallLeave:
		var ref conversationRef
		if err := json.Unmarshal(cmd.Payload, &ref); err != nil {
			return
		}
		h.CallLeave(c, ref.ConversationID)

	default:
		log.Debug().Str("type", cmd.Type).Msg("unknown socket command")
	}
}

// --------------------------------------------------------------------
// Typing coordinator operations
// --------------------------------------------------------------------

// TypingStart arms the (conversation, user) typing flag. Only the creating
// call broadcasts; repeated starts just push the expiry out. The typing
// user's own connections never receive the update.
func (h *Hub) TypingStart(c *Conn, conversationID uuid.UUID) {
	if !h.rooms.isAuthorized(c, conversationID) {
		return
	}
	if h.typing.start(conversationID, c.user) {
		h.deliverToConversationExcept(conversationID, c.user, EventTypingUpdate, dto.TypingUpdate{
			ConversationID: conversationID,
			UserID:         c.user,
			IsTyping:       true,
		})
	}
}

// TypingStop clears the flag; broadcasts only if it existed.
func (h *Hub) TypingStop(c *Conn, conversationID uuid.UUID) {
	if !h.rooms.isAuthorized(c, conversationID) {
		return
	}
	if h.typing.stop(conversationID, c.user) {
		h.deliverToConversationExcept(conversationID, c.user, EventTypingUpdate, dto.TypingUpdate{
			ConversationID: conversationID,
			UserID:         c.user,
			IsTyping:       false,
		})
	}
}

// --------------------------------------------------------------------
// Read/unread coordinator
// --------------------------------------------------------------------

// MarkRead moves the caller's read bookmark in storage, then pushes a fresh
// conversation-list snapshot to the caller's own connections only. Other
// members' unread counts are untouched by someone else reading.
func (h *Hub) MarkRead(ctx context.Context, c *Conn, conversationID uuid.UUID) error {
	if !h.rooms.isAuthorized(c, conversationID) {
		return nil
	}
	if err := h.storage.MarkRead(ctx, conversationID, c.user, time.Now().UTC()); err != nil {
		return err
	}
	return h.RefreshConversationList(ctx, c.user)
}

// --------------------------------------------------------------------
// Call signaling relay operations
// --------------------------------------------------------------------

// CallJoin puts the connection into the conversation's call. The joiner gets
// the current participant list as a direct reply; the rest of the call hears
// user-joined only when this is the user's first connection in it.
func (h *Hub) CallJoin(c *Conn, conversationID uuid.UUID) {
	if !h.rooms.isAuthorized(c, conversationID) {
		return
	}
	snapshot, firstJoin := h.calls.join(conversationID, c)

	_ = c.Send(EventCallParticipants, dto.CallParticipants{
		ConversationID: conversationID,
		Participants:   snapshot,
	})

	if firstJoin {
		h.deliverToConns(h.calls.participantConns(conversationID, c.user), EventCallUserJoined, dto.CallUserEvent{
			ConversationID: conversationID,
			UserID:         c.user,
		})
	}
}

// CallSignal relays an opaque negotiation payload to every connection of the
// target user inside the same call. The payload is never inspected.
func (h *Hub) CallSignal(c *Conn, conversationID, targetUserID uuid.UUID, data json.RawMessage) {
	targets := h.calls.signalConns(conversationID, c, targetUserID)
	if len(targets) == 0 {
		return
	}
	h.deliverToConns(targets, EventCallSignal, dto.CallSignal{
		ConversationID: conversationID,
		FromUserID:     c.user,
		Data:           data,
	})
}

// CallSetState updates the caller's media flags and tells the rest of the
// call.
func (h *Hub) CallSetState(c *Conn, conversationID uuid.UUID, muted, screenSharing *bool) {
	state, ok := h.calls.setState(conversationID, c, muted, screenSharing)
	if !ok {
		return
	}
	h.deliverToConns(h.calls.participantConns(conversationID, c.user), EventCallState, state)
}

// CallLeave removes this connection from the call; user-left goes out only
// when the user's last connection is gone.
func (h *Hub) CallLeave(c *Conn, conversationID uuid.UUID) {
	if h.calls.leave(conversationID, c) {
		h.deliverToConns(h.calls.participantConns(conversationID, c.user), EventCallUserLeft, dto.CallUserEvent{
			ConversationID: conversationID,
			UserID:         c.user,
		})
	}
}
