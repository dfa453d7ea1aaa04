package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// -------------------------------
// Account Models
// -------------------------------

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:text;uniqueIndex"`
	Name         string    `gorm:"type:text"`
	AvatarURL    string    `gorm:"type:text"`
	PasswordHash string    `gorm:"type:text"` // written by the auth service, never read here
	LastSeen     time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// -------------------------------
// Conversation Models
// -------------------------------

type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string    `gorm:"type:text"`
	IsGroup   bool      `gorm:"default:false"`
	CreatedBy uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

// ConversationMember is the membership fact the hub's room cache is derived
// from. LastReadAt drives unread recomputation.
type ConversationMember struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Role           string    `gorm:"type:varchar(20);default:'member'"` // E.g., owner, member
	LastReadAt     time.Time
	JoinedAt       time.Time `gorm:"autoCreateTime"`
}

type Message struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID      `gorm:"type:uuid;index:idx_messages_conv_created"`
	UserID         uuid.UUID      `gorm:"type:uuid;index"`
	Content        string         `gorm:"type:text"`
	Attachments    datatypes.JSON `gorm:"type:jsonb"`
	ParentID       *uuid.UUID     `gorm:"type:uuid"`
	IsEdited       bool           `gorm:"default:false"`
	EditedAt       *time.Time
	CreatedAt      time.Time      `gorm:"autoCreateTime;index:idx_messages_conv_created"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}
