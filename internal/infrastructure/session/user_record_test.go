package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/auth-system/internal/core/ports"
	"github.com/99minutos/auth-system/internal/infrastructure/db/memory"
)

func TestUserRecordStore_Lifecycle(t *testing.T) {
	users := memory.NewUserRepository()
	store := NewUserRecordStore(users)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }
	ctx := context.Background()

	u, err := users.Add(ctx, "a@b.com", "digest")
	require.NoError(t, err)

	id, err := store.Create(ctx, u.ID)
	require.NoError(t, err)

	s, ok, err := store.Resolve(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, u.ID, s.UserID)
	assert.Equal(t, created, s.CreatedAt)

	stored, _ := users.Find(ctx, ports.UserFilter{ID: u.ID})
	assert.Equal(t, id, stored.SessionID)

	removed, err := store.Destroy(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)

	stored, _ = users.Find(ctx, ports.UserFilter{ID: u.ID})
	assert.Empty(t, stored.SessionID)
	assert.True(t, stored.SessionCreatedAt.IsZero())

	removed, err = store.Destroy(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestUserRecordStore_ReplacesPrevious(t *testing.T) {
	users := memory.NewUserRepository()
	store := NewUserRecordStore(users)
	ctx := context.Background()
	u, _ := users.Add(ctx, "a@b.com", "digest")

	first, err := store.Create(ctx, u.ID)
	require.NoError(t, err)
	second, err := store.Create(ctx, u.ID)
	require.NoError(t, err)

	_, ok, _ := store.Resolve(ctx, first)
	assert.False(t, ok)
	_, ok, _ = store.Resolve(ctx, second)
	assert.True(t, ok)

	removed, _ := store.Destroy(ctx, first)
	assert.False(t, removed)
}

func TestUserRecordStore_UnknownUser(t *testing.T) {
	store := NewUserRecordStore(memory.NewUserRepository())
	_, err := store.Create(context.Background(), "nobody")
	assert.Error(t, err)

	_, ok, err := store.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
