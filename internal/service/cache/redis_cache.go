package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"FinSight/internal/domain/models"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisAnswerCache stores answered queries in Redis as JSON so multiple
// instances share one answer cache.
type RedisAnswerCache struct {
	cli *redis.Client
	ttl time.Duration
}

func NewRedisAnswerCache(cfg RedisConfig) *RedisAnswerCache {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &RedisAnswerCache{cli: rdb, ttl: cfg.TTL}
}

func (r *RedisAnswerCache) Get(ctx context.Context, key string) (*models.QueryResponse, bool) {
	b, err := r.cli.Get(ctx, "answer:"+key).Bytes()
	if err != nil {
		return nil, false
	}
	var resp models.QueryResponse
	if err := json.Unmarshal(b, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

func (r *RedisAnswerCache) Set(ctx context.Context, key string, resp *models.QueryResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		return
	}
	r.cli.Set(ctx, "answer:"+key, b, r.ttl)
}

func (r *RedisAnswerCache) Close() error {
	return r.cli.Close()
}
