package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizdir/backend/internal/domain/identity"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testUser builds a user without paying for bcrypt
func testUser(email, name string, role identity.Role) *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		PasswordHash:      "$2a$12$placeholder",
		DisplayName:       name,
		Role:              role,
		Status:            identity.UserStatusActive,
	}
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	user := testUser("ada@example.com", "Ada", identity.RoleUser)
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "  ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, identity.RoleUser, found.Role)
	assert.Empty(t, found.GetDomainEvents())

	exists, err := repo.ExistsByEmail(ctx, "Ada@Example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormUserRepository_Update(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	user := testUser("owner@example.com", "Owner", identity.RoleUser)
	require.NoError(t, repo.Create(ctx, user))

	now := time.Now().UTC().Truncate(time.Second)
	user.Role = identity.RoleBusinessOwner
	user.LastLoginAt = &now
	user.Version++
	require.NoError(t, repo.Update(ctx, user))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.RoleBusinessOwner, found.Role)
	assert.Equal(t, 2, found.Version)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, now.Equal(*found.LastLoginAt))
}

func TestGormUserRepository_FindAll(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	admin := testUser("root@example.com", "Root", identity.RoleAdmin)
	require.NoError(t, repo.Create(ctx, admin))
	for _, name := range []string{"Grace", "Linus", "Margaret"} {
		require.NoError(t, repo.Create(ctx, testUser(name+"@example.com", name, identity.RoleUser)))
	}
	suspended := testUser("spam@example.com", "Spammer", identity.RoleUser)
	suspended.Status = identity.UserStatusSuspended
	require.NoError(t, repo.Create(ctx, suspended))

	users, total, err := repo.FindAll(ctx, identity.UserFilter{Keyword: "LINUS"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Linus", users[0].DisplayName)

	role := identity.RoleAdmin
	_, total, err = repo.FindAll(ctx, identity.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	status := identity.UserStatusSuspended
	users, _, err = repo.FindAll(ctx, identity.UserFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, suspended.ID, users[0].ID)

	users, total, err = repo.FindAll(ctx, identity.UserFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, users, 2)

	// wildcard characters are matched literally
	_, total, err = repo.FindAll(ctx, identity.UserFilter{Keyword: "%"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	byIDs, err := repo.FindByIDs(ctx, []uuid.UUID{admin.ID, suspended.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)
}
