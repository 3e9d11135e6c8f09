package messaging

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	maxBodyLength = 4000
	previewLength = 140
)

// Conversation is the thread between a customer and a listing owner about one listing
type Conversation struct {
	shared.BaseAggregateRoot
	ListingID          uuid.UUID
	CustomerID         uuid.UUID
	OwnerID            uuid.UUID
	LastMessageAt      *time.Time
	LastMessagePreview string
}

// Message is a single entry in a conversation
type Message struct {
	shared.BaseEntity
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Body           string
	ReadAt         *time.Time
}

// NewConversation opens a thread. The owner cannot open one with themselves.
func NewConversation(listingID, customerID, ownerID uuid.UUID) (*Conversation, error) {
	if customerID == ownerID {
		return nil, shared.NewDomainError("INVALID_INPUT", "You cannot message your own listing")
	}
	if listingID == uuid.Nil || customerID == uuid.Nil || ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Listing, customer and owner are required")
	}
	return &Conversation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ListingID:         listingID,
		CustomerID:        customerID,
		OwnerID:           ownerID,
	}, nil
}

// IsParticipant reports whether userID is one side of the conversation
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	return userID == c.CustomerID || userID == c.OwnerID
}

// Counterpart returns the other participant
func (c *Conversation) Counterpart(userID uuid.UUID) uuid.UUID {
	if userID == c.CustomerID {
		return c.OwnerID
	}
	return c.CustomerID
}

// Post validates and creates a message from sender, updating the thread summary
func (c *Conversation) Post(senderID uuid.UUID, body string) (*Message, error) {
	if !c.IsParticipant(senderID) {
		return nil, shared.ErrForbidden
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot be empty")
	}
	if utf8.RuneCountInString(body) > maxBodyLength {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 4000 characters")
	}

	msg := &Message{
		BaseEntity:     shared.NewBaseEntity(),
		ConversationID: c.ID,
		SenderID:       senderID,
		Body:           body,
	}
	at := msg.CreatedAt
	c.LastMessageAt = &at
	c.LastMessagePreview = preview(body)
	c.IncrementVersion()
	c.AddDomainEvent(NewMessageSentEvent(c, msg))
	return msg, nil
}

func preview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	r := []rune(body)
	if len(r) <= previewLength {
		return body
	}
	return string(r[:previewLength-1]) + "…"
}
