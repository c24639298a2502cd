package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestRedisDraftStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := repository.NewRedisDraftStore(client, time.Hour)
	ctx := context.Background()

	draft := &domain.OutlineDraft{
		ID:           "draft-1",
		DocumentID:   "doc-1",
		Topic:        "Quarterly results",
		DocumentType: domain.DocumentTypeDOCX,
		Titles:       []string{"Intro", "Revenue"},
	}

	t.Run("save and get", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, draft))
		assert.True(t, mr.Exists("docforge:outline:doc-1"))

		got, err := store.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, draft.ID, got.ID)
		assert.Equal(t, draft.Titles, got.Titles)
	})

	t.Run("save replaces the previous draft", func(t *testing.T) {
		next := *draft
		next.ID = "draft-2"
		require.NoError(t, store.Save(ctx, &next))

		got, err := store.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "draft-2", got.ID)
	})

	t.Run("drafts expire", func(t *testing.T) {
		mr.FastForward(2 * time.Hour)
		_, err := store.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, draft))
		require.NoError(t, store.Delete(ctx, "doc-1"))
		_, err := store.Get(ctx, "doc-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestMemoryDraftStore(t *testing.T) {
	store := repository.NewMemoryDraftStore(time.Minute)
	ctx := context.Background()

	draft := &domain.OutlineDraft{ID: "draft-1", DocumentID: "doc-1", Titles: []string{"A"}}
	require.NoError(t, store.Save(ctx, draft))
	draft.Titles[0] = "changed"

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, got.Titles)

	require.NoError(t, store.Delete(ctx, "doc-1"))
	_, err = store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
