package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sakanusa/gerai-analytics-backend/pkg/redis"
)

const consumerScope = "evt:processed:orders"

// IdempotencyManager tracks processed event IDs using Redis SETNX with a TTL.
// Keys follow the `gerai:idempotency:evt:processed:orders:<event_id>` pattern.
type IdempotencyManager struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyManager builds a guard that marks events processed for the given TTL.
func NewIdempotencyManager(store redis.IdempotencyStore, ttl time.Duration) (*IdempotencyManager, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &IdempotencyManager{store: store, ttl: ttl}, nil
}

// CheckAndMarkProcessed returns true if the event has already been processed
// and otherwise marks it as processed with the configured TTL.
func (m *IdempotencyManager) CheckAndMarkProcessed(ctx context.Context, eventID string) (bool, error) {
	key, err := m.processedKey(eventID)
	if err != nil {
		return false, err
	}
	set, err := m.store.SetNX(ctx, key, "1", m.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Delete releases a claim so a failed event can be retried.
func (m *IdempotencyManager) Delete(ctx context.Context, eventID string) error {
	key, err := m.processedKey(eventID)
	if err != nil {
		return err
	}
	return m.store.Del(ctx, key)
}

func (m *IdempotencyManager) processedKey(eventID string) (string, error) {
	id := strings.TrimSpace(eventID)
	if id == "" {
		return "", errors.New("event id is required")
	}
	return m.store.IdempotencyKey(consumerScope, id), nil
}
