package messaging

import (
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeConversation = "Conversation"

const EventTypeMessageSent = "MessageSent"

// MessageSentEvent is published for every new message
type MessageSentEvent struct {
	shared.BaseDomainEvent
	MessageID   uuid.UUID `json:"message_id"`
	ListingID   uuid.UUID `json:"listing_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
}

// NewMessageSentEvent creates a MessageSentEvent
func NewMessageSentEvent(c *Conversation, m *Message) *MessageSentEvent {
	return &MessageSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMessageSent, AggregateTypeConversation, c.ID),
		MessageID:       m.ID,
		ListingID:       c.ListingID,
		SenderID:        m.SenderID,
		RecipientID:     c.Counterpart(m.SenderID),
	}
}
