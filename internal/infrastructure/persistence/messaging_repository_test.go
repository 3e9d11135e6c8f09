package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/domain/messaging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormMessagingRepository(t *testing.T) {
	repo := NewGormMessagingRepository(newSQLiteDB(t))
	ctx := context.Background()
	customer, owner := uuid.New(), uuid.New()

	conv, err := messaging.NewConversation(uuid.New(), customer, owner)
	require.NoError(t, err)
	require.NoError(t, repo.CreateConversation(ctx, conv))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := func(sender uuid.UUID, body string, offset time.Duration) *messaging.Message {
		msg, err := conv.Post(sender, body)
		require.NoError(t, err)
		msg.CreatedAt = base.Add(offset)
		msg.UpdatedAt = msg.CreatedAt
		require.NoError(t, repo.CreateMessage(ctx, msg))
		return msg
	}
	post(customer, "Are you open on Sunday?", 0)
	post(customer, "Also, do you take cards?", time.Minute)
	last := post(owner, "Yes to both", 2*time.Minute)
	require.NoError(t, repo.UpdateConversation(ctx, conv))

	t.Run("find by participants", func(t *testing.T) {
		found, err := repo.FindConversationByParticipants(ctx, conv.ListingID, customer)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, found.ID)
		assert.Equal(t, "Yes to both", found.LastMessagePreview)
	})

	t.Run("messages newest first", func(t *testing.T) {
		msgs, total, err := repo.ListMessages(ctx, conv.ID, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, msgs, 2)
		assert.Equal(t, last.ID, msgs[0].ID)
	})

	t.Run("unread counts per side", func(t *testing.T) {
		ownerUnread, err := repo.UnreadCount(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(2), ownerUnread)

		summaries, total, err := repo.ListConversations(ctx, customer, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, summaries, 1)
		assert.Equal(t, int64(1), summaries[0].UnreadCount)
	})

	t.Run("mark read only touches the other side", func(t *testing.T) {
		marked, err := repo.MarkRead(ctx, conv.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(2), marked)

		ownerUnread, err := repo.UnreadCount(ctx, owner)
		require.NoError(t, err)
		assert.Zero(t, ownerUnread)

		customerUnread, err := repo.UnreadCount(ctx, customer)
		require.NoError(t, err)
		assert.Equal(t, int64(1), customerUnread)
	})
}
