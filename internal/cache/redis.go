package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient backs webhook delivery dedupe. The messaging platform
// redelivers webhooks on slow acks, so each delivery id is claimed once
// with a TTL.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db, ttlSeconds int, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("redis connected", zap.String("addr", addr))

	return &RedisClient{
		client: rdb,
		ttl:    time.Duration(ttlSeconds) * time.Second,
		log:    log,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// ClaimDelivery returns true when this delivery id has not been seen
// within the TTL window. On redis failure it errs on the side of
// processing the event.
func (r *RedisClient) ClaimDelivery(ctx context.Context, deliveryID string) bool {
	ok, err := r.client.SetNX(ctx, "delivery:"+deliveryID, "1", r.ttl).Result()
	if err != nil {
		r.log.Warn("delivery dedupe unavailable", zap.Error(err))
		return true
	}
	return ok
}
