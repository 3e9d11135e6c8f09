package persistence

import (
	"context"
	"time"

	"github.com/bizdir/backend/internal/domain/messaging"
	"github.com/bizdir/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessagingRepository implements messaging.Repository using GORM
type GormMessagingRepository struct {
	db *gorm.DB
}

// NewGormMessagingRepository creates a new GormMessagingRepository
func NewGormMessagingRepository(db *gorm.DB) *GormMessagingRepository {
	return &GormMessagingRepository{db: db}
}

// CreateConversation inserts a new conversation
func (r *GormMessagingRepository) CreateConversation(ctx context.Context, c *messaging.Conversation) error {
	return r.db.WithContext(ctx).Create(models.ConversationModelFromDomain(c)).Error
}

// UpdateConversation saves all conversation columns
func (r *GormMessagingRepository) UpdateConversation(ctx context.Context, c *messaging.Conversation) error {
	return r.db.WithContext(ctx).Save(models.ConversationModelFromDomain(c)).Error
}

// FindConversation finds a conversation by its ID
func (r *GormMessagingRepository) FindConversation(ctx context.Context, id uuid.UUID) (*messaging.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindConversationByParticipants finds the customer's thread about a listing
func (r *GormMessagingRepository) FindConversationByParticipants(ctx context.Context, listingID, customerID uuid.UUID) (*messaging.Conversation, error) {
	var model models.ConversationModel
	if err := r.db.WithContext(ctx).
		Where("listing_id = ? AND customer_id = ?", listingID, customerID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ListConversations returns the user's threads by latest activity with per-thread unread counts
func (r *GormMessagingRepository) ListConversations(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]messaging.ConversationSummary, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ConversationModel{}).
		Where("customer_id = ? OR owner_id = ?", userID, userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ConversationModel
	if err := query.Order("COALESCE(last_message_at, created_at) DESC, id").
		Scopes(paginate(page, pageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return []messaging.ConversationSummary{}, total, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	var counts []struct {
		ConversationID uuid.UUID
		Unread         int64
	}
	if err := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN ? AND sender_id <> ? AND read_at IS NULL", ids, userID).
		Group("conversation_id").
		Scan(&counts).Error; err != nil {
		return nil, 0, err
	}
	unread := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		unread[c.ConversationID] = c.Unread
	}

	out := make([]messaging.ConversationSummary, len(rows))
	for i := range rows {
		out[i] = messaging.ConversationSummary{
			Conversation: rows[i].ToDomain(),
			UnreadCount:  unread[rows[i].ID],
		}
	}
	return out, total, nil
}

// CreateMessage inserts a new message
func (r *GormMessagingRepository) CreateMessage(ctx context.Context, m *messaging.Message) error {
	return r.db.WithContext(ctx).Create(models.MessageModelFromDomain(m)).Error
}

// ListMessages pages through a conversation, newest first
func (r *GormMessagingRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, page, pageSize int) ([]*messaging.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("conversation_id = ?", conversationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MessageModel
	if err := query.Order("created_at DESC, id").
		Scopes(paginate(page, pageSize)).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	messages := make([]*messaging.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].ToDomain()
	}
	return messages, total, nil
}

// MarkRead stamps unread messages from the other participant
func (r *GormMessagingRepository) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		UpdateColumn("read_at", time.Now())
	return result.RowsAffected, result.Error
}

// UnreadCount counts unread messages addressed to the user across all threads
func (r *GormMessagingRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.MessageModel{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.customer_id = ? OR conversations.owner_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

var _ messaging.Repository = (*GormMessagingRepository)(nil)
