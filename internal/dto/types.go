package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessagePreview is the trailing message embedded in a conversation summary.
type MessagePreview struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConversationSummary is one row of the per-user conversation list snapshot
// pushed over the socket (conversation:list). Unread counts are always
// recomputed from storage, never cached in the hub.
type ConversationSummary struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	IsGroup     bool            `json:"isGroup"`
	UnreadCount int64           `json:"unreadCount"`
	LastMessage *MessagePreview `json:"lastMessage,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type PresenceUpdate struct {
	UserID   uuid.UUID  `json:"userId"`
	Status   string     `json:"status"` // "online" or "offline"
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

type TypingUpdate struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	IsTyping       bool      `json:"isTyping"`
}

// CallParticipant mirrors one roster entry as seen by clients.
type CallParticipant struct {
	UserID        uuid.UUID `json:"userId"`
	Muted         bool      `json:"muted"`
	ScreenSharing bool      `json:"screenSharing"`
}

type CallParticipants struct {
	ConversationID uuid.UUID         `json:"conversationId"`
	Participants   []CallParticipant `json:"participants"`
}

type CallUserEvent struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
}

type CallState struct {
	ConversationID uuid.UUID `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	Muted          bool      `json:"muted"`
	ScreenSharing  bool      `json:"screenSharing"`
}

// CallSignal carries an opaque negotiation blob between two call
// participants. The payload is relayed verbatim.
type CallSignal struct {
	ConversationID uuid.UUID       `json:"conversationId"`
	FromUserID     uuid.UUID       `json:"fromUserId"`
	Data           json.RawMessage `json:"data"`
}

type Ack struct {
	Op string `json:"op"`
	OK bool   `json:"ok"`
}
