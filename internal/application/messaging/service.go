package messaging

import (
	"context"
	"errors"

	"github.com/bizdir/backend/internal/domain/messaging"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListingLookup resolves listing ownership and visibility
type ListingLookup interface {
	Owner(ctx context.Context, listingID uuid.UUID) (ownerID uuid.UUID, public bool, err error)
}

// Service implements customer to owner messaging
type Service struct {
	repo           messaging.Repository
	listings       ListingLookup
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewService creates a messaging service
func NewService(repo messaging.Repository, listings ListingLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, listings: listings, logger: logger}
}

// SetEventPublisher sets the event publisher for domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// StartConversation reuses the caller's thread about a listing, or opens
// one, and posts the first message into it
func (s *Service) StartConversation(ctx context.Context, customerID uuid.UUID, input StartConversationInput) (*StartConversationResponse, error) {
	conv, err := s.repo.FindConversationByParticipants(ctx, input.ListingID, customerID)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		conv, err = s.open(ctx, customerID, input.ListingID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	msg, err := s.post(ctx, conv, customerID, input.Body)
	if err != nil {
		return nil, err
	}
	return &StartConversationResponse{
		Conversation: toConversationResponse(conv, 0),
		Message:      toMessageResponse(msg),
	}, nil
}

func (s *Service) open(ctx context.Context, customerID, listingID uuid.UUID) (*messaging.Conversation, error) {
	ownerID, public, err := s.listings.Owner(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !public {
		return nil, shared.NewDomainError("INVALID_STATE", "This listing is not accepting messages")
	}
	conv, err := messaging.NewConversation(listingID, customerID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	s.logger.Info("Conversation opened",
		zap.String("conversation_id", conv.ID.String()),
		zap.String("listing_id", listingID.String()))
	return conv, nil
}

// Send posts a message into an existing conversation
func (s *Service) Send(ctx context.Context, senderID, conversationID uuid.UUID, input SendMessageInput) (*MessageResponse, error) {
	conv, err := s.participant(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}
	msg, err := s.post(ctx, conv, senderID, input.Body)
	if err != nil {
		return nil, err
	}
	resp := toMessageResponse(msg)
	return &resp, nil
}

func (s *Service) post(ctx context.Context, conv *messaging.Conversation, senderID uuid.UUID, body string) (*messaging.Message, error) {
	msg, err := conv.Post(senderID, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateConversation(ctx, conv); err != nil {
		return nil, err
	}
	if err := shared.PublishPending(ctx, s.eventPublisher, conv); err != nil {
		s.logger.Warn("Failed to publish message events", zap.String("conversation_id", conv.ID.String()), zap.Error(err))
	}
	return msg, nil
}

// ListConversations returns the caller's threads with unread counts, newest first
func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID, input PageInput) (shared.Paginated[ConversationResponse], error) {
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	items, total, err := s.repo.ListConversations(ctx, userID, paging.Page, paging.PageSize)
	if err != nil {
		return shared.Paginated[ConversationResponse]{}, err
	}
	out := make([]ConversationResponse, len(items))
	for i, item := range items {
		out[i] = toConversationResponse(item.Conversation, item.UnreadCount)
	}
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

// ListMessages returns a page of a conversation's messages
func (s *Service) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, input PageInput) (shared.Paginated[MessageResponse], error) {
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	paging := shared.Filter{Page: input.Page, PageSize: input.PageSize}.Normalize()
	items, total, err := s.repo.ListMessages(ctx, conversationID, paging.Page, paging.PageSize)
	if err != nil {
		return shared.Paginated[MessageResponse]{}, err
	}
	out := make([]MessageResponse, len(items))
	for i, m := range items {
		out[i] = toMessageResponse(m)
	}
	return shared.NewPaginated(out, total, paging.Page, paging.PageSize), nil
}

// MarkRead marks the other party's messages as read
func (s *Service) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (*MarkReadResponse, error) {
	if _, err := s.participant(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	n, err := s.repo.MarkRead(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	return &MarkReadResponse{Marked: n}, nil
}

// UnreadCount returns the caller's unread messages across all threads
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (*UnreadResponse, error) {
	n, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadResponse{Unread: n}, nil
}

func (s *Service) participant(ctx context.Context, userID, conversationID uuid.UUID) (*messaging.Conversation, error) {
	conv, err := s.repo.FindConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You are not part of this conversation")
	}
	return conv, nil
}
