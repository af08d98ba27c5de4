package adapters

import (
	"context"
	"time"

	"github.com/go-redis/redis"
)

const revokedKeyPrefix = "revoked-token:"

// RedisTokenRepository keeps the set of revoked access tokens. Keys are
// SHA-256 digests of the raw token, never the token itself, and each entry
// carries a TTL matching the token's remaining lifetime so the set cleans
// itself up.
type RedisTokenRepository struct {
	client *redis.Client
}

func NewRedisTokenRepository(client *redis.Client) *RedisTokenRepository {
	return &RedisTokenRepository{client: client}
}

func (r *RedisTokenRepository) IsRevoked(_ context.Context, tokenHash string) (bool, error) {
	count, err := r.client.Exists(revokedKeyPrefix + tokenHash).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RedisTokenRepository) Revoke(_ context.Context, tokenHash string, expiration time.Duration) error {
	return r.client.Set(revokedKeyPrefix+tokenHash, "1", expiration).Err()
}
