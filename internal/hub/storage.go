package hub

import (
	"context"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"

	"github.com/google/uuid"
)

// Storage is the narrow contract the hub holds against the relational layer.
// Every call is a suspension point: fallible, cancellable, and never assumed
// fast. The hub caches membership per connection but never unread counts.
type Storage interface {
	// MembershipOf lists the conversation ids the user belongs to.
	MembershipOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// MembersOf lists the user ids belonging to a conversation.
	MembersOf(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error)

	// RecomputeUnread rebuilds the user's conversation list with fresh
	// unread counts.
	RecomputeUnread(ctx context.Context, userID uuid.UUID) ([]dto.ConversationSummary, error)

	// MarkRead moves the member's last-read bookmark.
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error

	// SetLastSeen persists the offline timestamp.
	SetLastSeen(ctx context.Context, userID uuid.UUID, at time.Time) error
}
