package orderid

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adriancampa/storeloom-backend/pkg/db/models"
	apperrors "github.com/adriancampa/storeloom-backend/pkg/errors"
)

var identifierShape = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)

// stubStore tracks taken identifiers and counts existence checks.
type stubStore struct {
	ids        map[string]bool
	numbers    map[string]bool
	recent     *models.Order
	idChecks   int
	numChecks  int
	idErr      error
	recentErr  error
	alwaysTake bool
}

func newStubStore() *stubStore {
	return &stubStore{
		ids:     map[string]bool{},
		numbers: map[string]bool{},
	}
}

func (s *stubStore) FindOrderByID(_ context.Context, id string) (*models.Order, error) {
	s.idChecks++
	if s.idErr != nil {
		return nil, s.idErr
	}
	if s.alwaysTake || s.ids[id] {
		return &models.Order{ID: id}, nil
	}
	return nil, nil
}

func (s *stubStore) FindOrderByNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	s.numChecks++
	if s.alwaysTake || s.numbers[orderNumber] {
		return &models.Order{OrderNumber: orderNumber}, nil
	}
	return nil, nil
}

func (s *stubStore) FindMostRecentOrder(_ context.Context) (*models.Order, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	return s.recent, nil
}

func pinnedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func countingTick() Option {
	var n int64
	return WithTick(func() int64 {
		n++
		return n
	})
}

func TestUniqueIDFormat(t *testing.T) {
	store := newStubStore()
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)), countingTick())
	require.NoError(t, err)

	id, err := gen.UniqueID(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, identifierShape, id)
	assert.Equal(t, "2025", id[:4])
	assert.Equal(t, "0601", id[len(id)-4:])
}

func TestUniqueIDPairwiseDistinct(t *testing.T) {
	store := newStubStore()
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)), countingTick())
	require.NoError(t, err)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := gen.UniqueID(context.Background())
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s on iteration %d", id, i)
		seen[id] = true
		store.ids[id] = true
	}
	assert.Len(t, seen, 50)
}

func TestUniqueIDRetriesCollisions(t *testing.T) {
	pinned := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newStubStore()

	// Fixed clock and tick make candidates differ only by the attempt
	// perturbation, so the first three are known in advance.
	gen, err := NewGenerator(store, pinnedClock(pinned), WithTick(func() int64 { return 0 }))
	require.NoError(t, err)

	base := pinned.UnixMilli() % 10000
	for attempt := int64(0); attempt < 3; attempt++ {
		taken := fmt.Sprintf("2025-%04d-0601", (base+attempt)%10000)
		store.ids[taken] = true
	}

	id, err := gen.UniqueID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("2025-%04d-0601", (base+3)%10000), id)
	assert.Equal(t, 4, store.idChecks)
}

func TestUniqueIDExhaustion(t *testing.T) {
	store := newStubStore()
	store.alwaysTake = true
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = gen.UniqueID(context.Background())
	require.Error(t, err)
	assert.True(t, IsExhausted(err))
	assert.Equal(t, apperrors.CodeExhausted, apperrors.As(err).Code())
	assert.Equal(t, 100, store.idChecks)
}

func TestUniqueIDPropagatesStoreErrors(t *testing.T) {
	store := newStubStore()
	store.idErr = fmt.Errorf("connection reset")
	gen, err := NewGenerator(store)
	require.NoError(t, err)

	_, err = gen.UniqueID(context.Background())
	require.Error(t, err)
	assert.False(t, IsExhausted(err))
	assert.Equal(t, 1, store.idChecks)
}

func TestNextOrderNumberContinuesSequence(t *testing.T) {
	store := newStubStore()
	store.recent = &models.Order{OrderNumber: "2025-0601-0042"}
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	number, err := gen.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-0601-0043", number)
	assert.Regexp(t, identifierShape, number)
}

func TestNextOrderNumberDateFromClockNotPredecessor(t *testing.T) {
	// The sequence continues from the last order even when it was created on
	// an earlier day; the date segments always reflect the current clock.
	store := newStubStore()
	store.recent = &models.Order{OrderNumber: "2025-0601-0042"}
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	number, err := gen.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-0715-0043", number)
}

func TestNextOrderNumberMalformedSuffixFallsBack(t *testing.T) {
	for _, malformed := range []string{"not-a-number", "", "2025-0601", "2025-0601-00x1"} {
		store := newStubStore()
		store.recent = &models.Order{OrderNumber: malformed}
		gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)))
		require.NoError(t, err)

		number, err := gen.NextOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "2025-0601-0001", number, "suffix %q should fall back to 1", malformed)
	}
}

func TestNextOrderNumberCollisionBumpsSequence(t *testing.T) {
	store := newStubStore()
	store.recent = &models.Order{OrderNumber: "2025-0601-0042"}
	store.numbers["2025-0601-0043"] = true
	store.numbers["2025-0601-0044"] = true
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	number, err := gen.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-0601-0045", number)
	assert.Equal(t, 3, store.numChecks)
}

func TestNextOrderNumberExhaustion(t *testing.T) {
	store := newStubStore()
	store.alwaysTake = true
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	_, err = gen.NextOrderNumber(context.Background())
	require.Error(t, err)
	assert.True(t, IsExhausted(err))
	assert.Equal(t, 100, store.numChecks)
}

func TestNextOrderNumberEmptyDatastore(t *testing.T) {
	store := newStubStore()
	gen, err := NewGenerator(store, pinnedClock(time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)))
	require.NoError(t, err)

	first, err := gen.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-0601-0001", first)

	store.recent = &models.Order{OrderNumber: first}
	store.numbers[first] = true

	second, err := gen.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-0601-0002", second)
}

func TestNewGeneratorRequiresStore(t *testing.T) {
	_, err := NewGenerator(nil)
	require.Error(t, err)
}
