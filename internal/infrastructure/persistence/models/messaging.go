package models

import (
	"time"

	"github.com/bizdir/backend/internal/domain/messaging"
	"github.com/google/uuid"
)

// ConversationModel is the persistence model for a conversation thread.
// A customer has at most one conversation per listing.
type ConversationModel struct {
	AggregateModel
	ListingID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_listing_customer,priority:1"`
	CustomerID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_listing_customer,priority:2;index"`
	OwnerID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	LastMessageAt      *time.Time `gorm:"index"`
	LastMessagePreview string     `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ConversationModel) TableName() string {
	return "conversations"
}

// ToDomain converts the persistence model to a domain Conversation.
func (m *ConversationModel) ToDomain() *messaging.Conversation {
	return &messaging.Conversation{
		BaseAggregateRoot:  m.ToAggregateRoot(),
		ListingID:          m.ListingID,
		CustomerID:         m.CustomerID,
		OwnerID:            m.OwnerID,
		LastMessageAt:      m.LastMessageAt,
		LastMessagePreview: m.LastMessagePreview,
	}
}

// ConversationModelFromDomain creates a new persistence model from a domain Conversation.
func ConversationModelFromDomain(c *messaging.Conversation) *ConversationModel {
	m := &ConversationModel{
		ListingID:          c.ListingID,
		CustomerID:         c.CustomerID,
		OwnerID:            c.OwnerID,
		LastMessageAt:      c.LastMessageAt,
		LastMessagePreview: c.LastMessagePreview,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// MessageModel is the persistence model for a single message.
type MessageModel struct {
	BaseModel
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation_created,priority:1"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Body           string    `gorm:"type:text;not null"`
	ReadAt         *time.Time
}

// TableName returns the table name for GORM
func (MessageModel) TableName() string {
	return "messages"
}

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() *messaging.Message {
	return &messaging.Message{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ReadAt:         m.ReadAt,
	}
}

// MessageModelFromDomain creates a new persistence model from a domain Message.
func MessageModelFromDomain(msg *messaging.Message) *MessageModel {
	m := &MessageModel{
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		ReadAt:         msg.ReadAt,
	}
	m.FromDomainBaseEntity(msg.BaseEntity)
	return m
}
