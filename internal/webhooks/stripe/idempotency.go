package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/adriancampa/storeloom-backend/pkg/redis"
)

// guardTTL bounds how long a processed event id blocks replays. Stripe's own
// retry window is shorter than this.
const guardTTL = 72 * time.Hour

const providerName = "stripe"

// IdempotencyGuard fences duplicate webhook deliveries using a redis SetNX
// reservation keyed by provider event id.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
}

// NewIdempotencyGuard builds a guard over the provided store.
func NewIdempotencyGuard(store redis.IdempotencyStore) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, fmt.Errorf("idempotency store required")
	}
	return &IdempotencyGuard{store: store}, nil
}

// CheckAndMark reserves the event id. It returns false when another delivery
// already holds the reservation.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, fmt.Errorf("event id required")
	}
	key := g.store.WebhookKey(providerName, eventID)
	ok, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), guardTTL)
	if err != nil && !errors.Is(err, goredis.Nil) {
		return false, fmt.Errorf("reserving webhook event: %w", err)
	}
	return ok, nil
}

// Release frees the reservation so a failed delivery can be retried by the
// provider.
func (g *IdempotencyGuard) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return nil
	}
	return g.store.Del(ctx, g.store.WebhookKey(providerName, eventID))
}
