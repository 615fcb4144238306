package service

import (
	"context"
	"fmt"
	"time"

	"healgenie-portal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// Redis key prefixes for the token allow-list
	RedisAccessKeyPrefix  = "access_token:"
	RedisRefreshKeyPrefix = "refresh_token:"
)

// TokenStore keeps issued token ids in Redis. A token is valid only while its key exists.
type TokenStore interface {
	Save(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string, accessTTL, refreshTTL time.Duration) error
	Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error)
	Consume(ctx context.Context, userID uuid.UUID, refreshTokenID string) (bool, error)
	Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
}

type tokenStore struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewTokenStore(redisClient *redis.Client, log *logrus.Logger) TokenStore {
	return &tokenStore{
		redisClient: redisClient,
		log:         log,
	}
}

func tokenKey(tokenType jwt.TokenType, userID uuid.UUID, tokenID string) string {
	prefix := RedisAccessKeyPrefix
	if tokenType == jwt.RefreshToken {
		prefix = RedisRefreshKeyPrefix
	}
	return fmt.Sprintf("%s%s:%s", prefix, userID.String(), tokenID)
}

// Save stores both token ids in a single transaction.
func (s *tokenStore) Save(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string, accessTTL, refreshTTL time.Duration) error {
	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, tokenKey(jwt.AccessToken, userID, accessTokenID), "valid", accessTTL)
	pipe.Set(ctx, tokenKey(jwt.RefreshToken, userID, refreshTokenID), "valid", refreshTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warnf("Failed to store tokens for user %s: %+v", userID, err)
		return fmt.Errorf("store tokens for user %s: %w", userID, err)
	}
	return nil
}

func (s *tokenStore) Exists(ctx context.Context, userID uuid.UUID, tokenID string, tokenType jwt.TokenType) (bool, error) {
	exists, err := s.redisClient.Exists(ctx, tokenKey(tokenType, userID, tokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to check token validity: %+v", err)
		return false, err
	}
	return exists > 0, nil
}

// Consume deletes a refresh token id and reports whether it was still present.
// Concurrent refreshes with the same token see true at most once.
func (s *tokenStore) Consume(ctx context.Context, userID uuid.UUID, refreshTokenID string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, tokenKey(jwt.RefreshToken, userID, refreshTokenID)).Result()
	if err != nil {
		s.log.Warnf("Failed to consume refresh token: %+v", err)
		return false, err
	}
	return deleted > 0, nil
}

// Revoke removes the access token and, when given, the refresh token.
func (s *tokenStore) Revoke(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	keys := []string{tokenKey(jwt.AccessToken, userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, tokenKey(jwt.RefreshToken, userID, refreshTokenID))
	}

	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.log.Warnf("Failed to revoke tokens for user %s: %+v", userID, err)
		return fmt.Errorf("revoke tokens for user %s: %w", userID, err)
	}
	return nil
}
