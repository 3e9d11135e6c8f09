package messaging

import (
	"time"

	"github.com/bizdir/backend/internal/domain/messaging"
	"github.com/google/uuid"
)

// StartConversationInput opens or reuses a thread about a listing
type StartConversationInput struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	Body      string    `json:"body" binding:"required,max=4000"`
}

// SendMessageInput contains a new message body
type SendMessageInput struct {
	Body string `json:"body" binding:"required,max=4000"`
}

// PageInput pages through conversations or messages
type PageInput struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ConversationResponse is the API view of a conversation
type ConversationResponse struct {
	ID                 uuid.UUID  `json:"id"`
	ListingID          uuid.UUID  `json:"listing_id"`
	CustomerID         uuid.UUID  `json:"customer_id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	UnreadCount        int64      `json:"unread_count"`
	CreatedAt          time.Time  `json:"created_at"`
}

// MessageResponse is the API view of a message
type MessageResponse struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Body           string     `json:"body"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StartConversationResponse returns the thread and the message just sent
type StartConversationResponse struct {
	Conversation ConversationResponse `json:"conversation"`
	Message      MessageResponse      `json:"message"`
}

// UnreadResponse carries an unread counter
type UnreadResponse struct {
	Unread int64 `json:"unread"`
}

// MarkReadResponse reports how many messages were marked read
type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}

func toConversationResponse(c *messaging.Conversation, unread int64) ConversationResponse {
	return ConversationResponse{
		ID:                 c.ID,
		ListingID:          c.ListingID,
		CustomerID:         c.CustomerID,
		OwnerID:            c.OwnerID,
		LastMessageAt:      c.LastMessageAt,
		LastMessagePreview: c.LastMessagePreview,
		UnreadCount:        unread,
		CreatedAt:          c.CreatedAt,
	}
}

func toMessageResponse(m *messaging.Message) MessageResponse {
	return MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Body:           m.Body,
		ReadAt:         m.ReadAt,
		CreatedAt:      m.CreatedAt,
	}
}
