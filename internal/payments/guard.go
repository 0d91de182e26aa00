package payments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/redis"
)

const callbackScope = "gateway_callback"

// CallbackGuard short-circuits exact duplicate gateway deliveries using Redis
// SETNX keyed by (external reference, provider status). A nil guard never
// reports duplicates.
type CallbackGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

func NewCallbackGuard(store redis.IdempotencyStore, ttl time.Duration) (*CallbackGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	return &CallbackGuard{store: store, ttl: ttl}, nil
}

// CheckAndMark returns true if this (reference, status) pair was already seen
// and otherwise marks it.
func (g *CallbackGuard) CheckAndMark(ctx context.Context, externalRef, providerStatus string) (bool, error) {
	if g == nil {
		return false, nil
	}
	set, err := g.store.SetNX(ctx, g.key(externalRef, providerStatus), "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !set, nil
}

// Release forgets the pair so a redelivery is processed again.
func (g *CallbackGuard) Release(ctx context.Context, externalRef, providerStatus string) error {
	if g == nil {
		return nil
	}
	return g.store.Del(ctx, g.key(externalRef, providerStatus))
}

func (g *CallbackGuard) key(externalRef, providerStatus string) string {
	id := strings.TrimSpace(externalRef) + ":" + strings.ToLower(strings.TrimSpace(providerStatus))
	return g.store.IdempotencyKey(callbackScope, id)
}
