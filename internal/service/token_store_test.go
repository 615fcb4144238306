package service

import (
	"context"
	"io"
	"testing"
	"time"

	"healgenie-portal/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenStoreTest(t *testing.T) (TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewTokenStore(rdb, log), mr
}

func TestTokenStoreSaveAndExists(t *testing.T) {
	store, mr := newTokenStoreTest(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, "a1", "r1", time.Minute, time.Hour))

	ok, err := store.Exists(ctx, userID, "a1", jwt.AccessToken)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, userID, "r1", jwt.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.Exists(ctx, userID, "a1", jwt.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok, "access token should expire with its TTL")
}

func TestTokenStoreConsumeOnce(t *testing.T) {
	store, _ := newTokenStoreTest(t)
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, store.Save(ctx, userID, "a1", "r1", time.Minute, time.Hour))

	first, err := store.Consume(ctx, userID, "r1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := store.Consume(ctx, userID, "r1")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestTokenStoreRevoke(t *testing.T) {
	store, _ := newTokenStoreTest(t)
	ctx := context.Background()
	userID := uuid.New()
	require.NoError(t, store.Save(ctx, userID, "a1", "r1", time.Minute, time.Hour))

	require.NoError(t, store.Revoke(ctx, userID, "a1", "r1"))

	ok, err := store.Exists(ctx, userID, "a1", jwt.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = store.Exists(ctx, userID, "r1", jwt.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok)
}
