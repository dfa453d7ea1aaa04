package repository

import (
	"context"
	"time"

	"github.com/Yarikttyui/pinkmessik/internal/dto"
	"github.com/Yarikttyui/pinkmessik/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatStore is the relational side of the hub's two storage contracts:
// membership listing and unread recomputation, plus the last-seen and
// last-read writes the coordinators delegate.
type ChatStore struct {
	db *gorm.DB
}

func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) DB() *gorm.DB {
	return s.db
}

// MembershipOf lists the conversation ids the user belongs to.
func (s *ChatStore) MembershipOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.ConversationMember{}).
		Where("user_id = ?", userID).
		Pluck("conversation_id", &ids).Error
	return ids, err
}

// MembersOf lists the user ids that belong to the conversation.
func (s *ChatStore) MembersOf(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).
		Model(&models.ConversationMember{}).
		Where("conversation_id = ?", conversationID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// RecomputeUnread builds the user's full conversation list with fresh unread
// counts and last-message previews, newest conversation first.
func (s *ChatStore) RecomputeUnread(ctx context.Context, userID uuid.UUID) ([]dto.ConversationSummary, error) {
	type row struct {
		ID         uuid.UUID
		Title      string
		IsGroup    bool
		UpdatedAt  time.Time
		LastReadAt time.Time
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Select("conversations.id, conversations.title, conversations.is_group, conversations.updated_at, conversation_members.last_read_at").
		Joins("JOIN conversation_members ON conversation_members.conversation_id = conversations.id").
		Where("conversation_members.user_id = ?", userID).
		Order("conversations.updated_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]dto.ConversationSummary, 0, len(rows))
	for _, r := range rows {
		var unread int64
		err := s.db.WithContext(ctx).
			Model(&models.Message{}).
			Where("conversation_id = ? AND user_id <> ? AND created_at > ?", r.ID, userID, r.LastReadAt).
			Count(&unread).Error
		if err != nil {
			return nil, err
		}

		var last models.Message
		preview := (*dto.MessagePreview)(nil)
		err = s.db.WithContext(ctx).
			Where("conversation_id = ?", r.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			preview = &dto.MessagePreview{
				ID:        last.ID,
				UserID:    last.UserID,
				Content:   last.Content,
				CreatedAt: last.CreatedAt,
			}
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		}

		summaries = append(summaries, dto.ConversationSummary{
			ID:          r.ID,
			Title:       r.Title,
			IsGroup:     r.IsGroup,
			UnreadCount: unread,
			LastMessage: preview,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return summaries, nil
}

// MarkRead bumps the member's last_read_at bookmark.
func (s *ChatStore) MarkRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.ConversationMember{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Update("last_read_at", at).Error
}

// SetLastSeen records the offline timestamp on the user row.
func (s *ChatStore) SetLastSeen(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen", at).Error
}
