package service

import (
	"context"
	"fmt"
	"time"

	"dental-clinic-booking/pkg/jwt"

	"github.com/redis/go-redis/v9"
)

// TokenStore tracks which issued tokens are still live so they can be revoked.
type TokenStore interface {
	Save(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error)
	// Revoke deletes the token id and reports whether it was still live.
	Revoke(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error)
	RevokeAll(ctx context.Context, userID int) error
}

const revokeScanCount = 100

type redisTokenStore struct {
	redisClient *redis.Client
}

func NewRedisTokenStore(redisClient *redis.Client) TokenStore {
	return &redisTokenStore{redisClient: redisClient}
}

// TokenKey builds keys of the form access_token:<user>:<token id>.
func TokenKey(userID int, tokenType jwt.TokenType, tokenID string) string {
	return fmt.Sprintf("%s_token:%d:%s", tokenType, userID, tokenID)
}

func (s *redisTokenStore) Save(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string, ttl time.Duration) error {
	if err := s.redisClient.Set(ctx, TokenKey(userID, tokenType, tokenID), "valid", ttl).Err(); err != nil {
		return fmt.Errorf("store %s token: %w", tokenType, err)
	}
	return nil
}

func (s *redisTokenStore) Exists(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, TokenKey(userID, tokenType, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check %s token: %w", tokenType, err)
	}
	return n > 0, nil
}

func (s *redisTokenStore) Revoke(ctx context.Context, userID int, tokenType jwt.TokenType, tokenID string) (bool, error) {
	deleted, err := s.redisClient.Del(ctx, TokenKey(userID, tokenType, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revoke %s token: %w", tokenType, err)
	}
	return deleted > 0, nil
}

// RevokeAll deletes every access and refresh token of the user. SCAN is used instead of KEYS
// so a large keyspace does not block Redis.
func (s *redisTokenStore) RevokeAll(ctx context.Context, userID int) error {
	for _, tokenType := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := TokenKey(userID, tokenType, "*")
		iter := s.redisClient.Scan(ctx, 0, pattern, revokeScanCount).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s tokens: %w", tokenType, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("revoke %s tokens: %w", tokenType, err)
		}
	}
	return nil
}
