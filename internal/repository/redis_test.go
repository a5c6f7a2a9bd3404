package repository

import (
	"context"
	"testing"
	"time"

	"washify/internal/config"
	"washify/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisDraftRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer Close(client)

	repo := NewRedisDraftRepository(client, "draft:", time.Hour)
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		draft := &models.Draft{
			Name:       "Asha Rao",
			Phone:      "9876543210",
			City:       "Pune",
			Packages:   []string{"quick", "windshield"},
			Car:        "sedan",
			WaterPower: true,
		}

		require.NoError(t, repo.Save(ctx, "k1", draft))
		assert.True(t, s.Exists("draft:k1"))

		got, err := repo.Load(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, draft, got)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		got, err := repo.Load(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "k2", &models.Draft{Name: "x"}))
		require.NoError(t, repo.Clear(ctx, "k2"))

		got, err := repo.Load(ctx, "k2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("TTL", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, "k3", &models.Draft{Name: "x"}))
		assert.Equal(t, time.Hour, s.TTL("draft:k3"))

		s.FastForward(2 * time.Hour)
		got, err := repo.Load(ctx, "k3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CorruptValue", func(t *testing.T) {
		require.NoError(t, s.Set("draft:bad", "{not json"))
		_, err := repo.Load(ctx, "bad")
		assert.Error(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})
}

func TestRedisDraftRepository_NilClient(t *testing.T) {
	repo := NewRedisDraftRepository(nil, "draft:", time.Hour)
	ctx := context.Background()

	_, err := repo.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNilClient)
	assert.ErrorIs(t, repo.Save(ctx, "k", &models.Draft{}), ErrNilClient)
	assert.ErrorIs(t, repo.Clear(ctx, "k"), ErrNilClient)
	assert.ErrorIs(t, Ping(ctx, nil), ErrNilClient)
	assert.NoError(t, Close(nil))
}

func TestRedisDraftRepository_ServerDown(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := NewRedisClient(config.RedisConfig{Address: s.Addr()})
	defer client.Close()
	s.Close()

	repo := NewRedisDraftRepository(client, "draft:", time.Hour)
	_, err = repo.Load(context.Background(), "k")
	assert.Error(t, err)
}
