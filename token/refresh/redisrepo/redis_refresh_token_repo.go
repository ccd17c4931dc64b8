package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/token/refresh"
	"github.com/redis/go-redis/v9"
)

var _ refresh.Repo = (*RedisRefreshTokenRepo)(nil)

// RedisRefreshTokenRepo stores refresh token metadata as JSON values whose key
// TTL matches the token expiry, so Redis evicts expired tokens itself.
type RedisRefreshTokenRepo struct {
	rdb    redis.Cmdable
	prefix string
}

func NewRedisRefreshTokenRepo(rdb redis.Cmdable, prefix string) *RedisRefreshTokenRepo {
	return &RedisRefreshTokenRepo{
		rdb:    rdb,
		prefix: prefix,
	}
}

func (r *RedisRefreshTokenRepo) Upsert(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	ttl := rt.ExpiresAt.Sub(refresh.NowTimeFunc())
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(rt)
	if err != nil {
		return fmt.Errorf("[RedisRefreshTokenRepo.Upsert] marshal: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(rt.TokenHash), b, ttl).Err(); err != nil {
		return fmt.Errorf("[RedisRefreshTokenRepo.Upsert] %w", err)
	}
	return nil
}

func (r *RedisRefreshTokenRepo) Delete(ctx context.Context, tokenHash string) error {
	if err := r.rdb.Del(ctx, r.key(tokenHash)).Err(); err != nil {
		return fmt.Errorf("[RedisRefreshTokenRepo.Delete] %w", err)
	}
	return nil
}

func (r *RedisRefreshTokenRepo) Get(ctx context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	b, err := r.rdb.Get(ctx, r.key(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("refresh token: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisRefreshTokenRepo.Get] %w", err)
	}

	var rt refresh.StoredRefreshToken
	if err := json.Unmarshal(b, &rt); err != nil {
		return nil, fmt.Errorf("[RedisRefreshTokenRepo.Get] unmarshal: %w", err)
	}
	return &rt, nil
}

func (r *RedisRefreshTokenRepo) key(tokenHash string) string {
	return r.prefix + ":rt:" + tokenHash
}
