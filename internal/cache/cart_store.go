// Package cache keeps per-user carts in Redis for the lifetime of a session.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"campuseats/internal/model"
)

const maxTxRetries = 5

var ErrConflict = errors.New("cart modified concurrently")

type CartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{
		client:    client,
		keyPrefix: "campuseats:cart",
		ttl:       ttl,
	}
}

// Connect parses url and checks the server answers before returning a client.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (s *CartStore) key(userID string) string {
	return s.keyPrefix + ":" + userID
}

func decode(data []byte) ([]model.LineItem, error) {
	var items []model.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return items, nil
}

// Load returns the stored lines for userID, or nil when there is no cart.
func (s *CartStore) Load(ctx context.Context, userID string) ([]model.LineItem, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return decode(data)
}

// Update applies fn to the stored lines inside a WATCH transaction and
// writes the result back, refreshing the TTL. An empty result deletes the
// cart. Conflicting writers are retried a few times before ErrConflict.
func (s *CartStore) Update(ctx context.Context, userID string, fn func([]model.LineItem) ([]model.LineItem, error)) ([]model.LineItem, error) {
	key := s.key(userID)
	var result []model.LineItem

	txf := func(tx *redis.Tx) error {
		var items []model.LineItem
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("get cart: %w", err)
		default:
			if items, err = decode(data); err != nil {
				return err
			}
		}

		updated, err := fn(items)
		if err != nil {
			return err
		}

		var payload []byte
		if len(updated) > 0 {
			if payload, err = json.Marshal(updated); err != nil {
				return fmt.Errorf("encode cart: %w", err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = updated
		return nil
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return result, err
	}
	return nil, ErrConflict
}

func (s *CartStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
