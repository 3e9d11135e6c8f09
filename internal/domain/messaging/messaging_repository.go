package messaging

import (
	"context"

	"github.com/google/uuid"
)

// ConversationSummary is a conversation with the caller's unread count
type ConversationSummary struct {
	Conversation *Conversation
	UnreadCount  int64
}

// Repository defines persistence for conversations and messages
type Repository interface {
	CreateConversation(ctx context.Context, c *Conversation) error
	UpdateConversation(ctx context.Context, c *Conversation) error
	FindConversation(ctx context.Context, id uuid.UUID) (*Conversation, error)
	FindConversationByParticipants(ctx context.Context, listingID, customerID uuid.UUID) (*Conversation, error)
	// ListConversations returns threads where userID participates, newest activity first
	ListConversations(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]ConversationSummary, int64, error)

	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, page, pageSize int) ([]*Message, int64, error)
	// MarkRead marks messages not sent by readerID as read and returns how many changed
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}
