package orderid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	apperrors "github.com/adriancampa/storeloom-backend/pkg/errors"
)

// maxAttempts bounds both collision-retry loops. A full sweep means the
// candidate space is saturated or the datastore is lying to us; either way
// checkout must abort instead of spinning.
const maxAttempts = 100

const segmentMod = 10000

// Store is the minimal order lookup surface the generator needs. All three
// lookups return (nil, nil) on a miss; errors are datastore failures and
// propagate unchanged.
type Store interface {
	FindOrderByID(ctx context.Context, id string) (*models.Order, error)
	FindOrderByNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindMostRecentOrder(ctx context.Context) (*models.Order, error)
}

// Generator produces the two order identifiers assigned at checkout.
//
// The order id (YYYY-XXXX-MMDD) derives its middle segment from wall-clock
// milliseconds plus a high-resolution tick, so it is probably unique but not
// guaranteed; UniqueID layers an existence-check retry loop on top. The order
// number (YYYY-MMDD-XXXX) continues a global sequence read from the most
// recently created order. Neither loop holds a lock: the datastore's unique
// constraints are the final backstop, and the checkout caller retries the
// whole generate+insert cycle when an insert still collides.
type Generator struct {
	store Store
	now   func() time.Time
	tick  func() int64
}

// Option overrides a Generator time source. Used by tests to pin the clock.
type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

func WithTick(tick func() int64) Option {
	return func(g *Generator) { g.tick = tick }
}

var processStart = time.Now()

// NewGenerator builds a Generator backed by the given order lookups.
func NewGenerator(store Store, opts ...Option) (*Generator, error) {
	if store == nil {
		return nil, fmt.Errorf("orderid: store is required")
	}
	g := &Generator{
		store: store,
		now:   time.Now,
		tick:  func() int64 { return time.Since(processStart).Nanoseconds() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// UniqueID returns an order id not currently present in the datastore.
//
// Each attempt perturbs the time-derived segment by the attempt count, checks
// the datastore, and returns the first free candidate. After maxAttempts
// existence checks it fails with a GENERATION_EXHAUSTED error and checkout
// must abort. The check and the eventual insert are separate statements, so a
// concurrent request can still claim the id in between; the caller handles
// that as a unique-violation retry.
func (g *Generator) UniqueID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := g.composeID(attempt)

		existing, err := g.store.FindOrderByID(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking order id %s: %w", candidate, err)
		}
		if existing == nil {
			return candidate, nil
		}
	}
	return "", exhausted("order id")
}

// NextOrderNumber returns the next number in the global order sequence.
//
// The sequence value is the numeric suffix of the most recently created order
// plus one; a missing or malformed suffix silently restarts the sequence at 1.
// The year and month-day segments always come from the current clock, not from
// the previous number. Candidates that already exist bump the sequence and
// retry, up to maxAttempts existence checks.
func (g *Generator) NextOrderNumber(ctx context.Context) (string, error) {
	last, err := g.store.FindMostRecentOrder(ctx)
	if err != nil {
		return "", fmt.Errorf("reading most recent order: %w", err)
	}

	seq := 1
	if last != nil {
		if parsed, ok := parseSequence(last.OrderNumber); ok {
			seq = parsed + 1
		}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate := g.composeNumber(seq)

		existing, err := g.store.FindOrderByNumber(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking order number %s: %w", candidate, err)
		}
		if existing == nil {
			return candidate, nil
		}
		seq++
	}
	return "", exhausted("order number")
}

func (g *Generator) composeID(attempt int) string {
	now := g.now()
	segment := (now.UnixMilli() + g.tick() + int64(attempt)) % segmentMod
	if segment < 0 {
		segment += segmentMod
	}
	return fmt.Sprintf("%04d-%04d-%02d%02d", now.Year(), segment, int(now.Month()), now.Day())
}

func (g *Generator) composeNumber(seq int) string {
	now := g.now()
	return fmt.Sprintf("%04d-%02d%02d-%04d", now.Year(), int(now.Month()), now.Day(), seq)
}

// parseSequence extracts the trailing 4-digit segment of an order number.
// Anything that does not match the YYYY-MMDD-XXXX shape reports !ok and the
// caller falls back to sequence 1.
func parseSequence(orderNumber string) (int, bool) {
	parts := strings.Split(orderNumber, "-")
	if len(parts) != 3 {
		return 0, false
	}
	value, err := strconv.Atoi(parts[2])
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func exhausted(kind string) error {
	return apperrors.New(apperrors.CodeExhausted,
		fmt.Sprintf("exhausted %d attempts generating %s", maxAttempts, kind))
}

// IsExhausted reports whether err is a generation-exhaustion failure.
func IsExhausted(err error) bool {
	typed := apperrors.As(err)
	return typed != nil && typed.Code() == apperrors.CodeExhausted
}
