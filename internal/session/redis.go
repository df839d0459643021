package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Store backed by Redis. Keys expire after ttl of inactivity.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) Store {
	return &redisStore{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session-store").Logger(),
	}
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

func couponKey(customerID uuid.UUID) string {
	return fmt.Sprintf("session:%s:coupon", customerID)
}

func (s *redisStore) Coupon(ctx context.Context, customerID uuid.UUID) (string, error) {
	key := couponKey(customerID)

	code, err := s.client.GetEx(ctx, key, s.ttl).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session coupon: %w", err)
	}
	return code, nil
}

func (s *redisStore) SetCoupon(ctx context.Context, customerID uuid.UUID, code string) error {
	if err := s.client.Set(ctx, couponKey(customerID), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session coupon: %w", err)
	}

	s.logger.Debug().
		Str("customer_id", customerID.String()).
		Str("coupon_code", code).
		Msg("session coupon stored")

	return nil
}

func (s *redisStore) ClearCoupon(ctx context.Context, customerID uuid.UUID) error {
	if err := s.client.Del(ctx, couponKey(customerID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session coupon: %w", err)
	}
	return nil
}
