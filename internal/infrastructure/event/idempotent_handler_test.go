package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spicemill/stockledger/internal/domain/shared"
	"github.com/spicemill/stockledger/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is a map-backed IdempotencyStore with switchable failures
type fakeStore struct {
	mu        sync.Mutex
	marked    map[string]bool
	markErr   error
	unmarkErr error
	unmarked  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{marked: make(map[string]bool)}
}

func (s *fakeStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	if s.marked[eventID] {
		return false, nil
	}
	s.marked[eventID] = true
	return true, nil
}

func (s *fakeStore) Unmark(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unmarked = append(s.unmarked, eventID)
	if s.unmarkErr != nil {
		return s.unmarkErr
	}
	delete(s.marked, eventID)
	return nil
}

func (s *fakeStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.marked[eventID], nil
}

func (s *fakeStore) Close() error { return nil }

func TestIdempotentHandler_SkipsRedelivery(t *testing.T) {
	inner := newRecordingHandler(stock.EventTypePurchaseReceived)
	h := NewIdempotentHandler(inner, newFakeStore(), zap.NewNop())
	evt := received("Cumin", "10")

	require.NoError(t, h.Handle(context.Background(), evt))
	require.NoError(t, h.Handle(context.Background(), evt))

	assert.Equal(t, 1, inner.count())
	stats := h.Metrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_DistinctEventsBothApplied(t *testing.T) {
	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, newFakeStore(), nil)

	require.NoError(t, h.Handle(context.Background(), received("Cumin", "10")))
	require.NoError(t, h.Handle(context.Background(), received("Cumin", "10")))

	assert.Equal(t, 2, inner.count())
}

func TestIdempotentHandler_FailureReleasesMark(t *testing.T) {
	store := newFakeStore()
	inner := newRecordingHandler()
	inner.err = shared.ErrNotFound
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	evt := received("Saffron", "1")

	err := h.Handle(context.Background(), evt)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, []string{evt.EventID().String()}, store.unmarked)

	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), evt), "retry after rollback is applied")
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, int64(1), h.Metrics().Stats().EventsFailed)
}

func TestIdempotentHandler_UnmarkErrorKeepsHandlerError(t *testing.T) {
	store := newFakeStore()
	store.unmarkErr = errors.New("redis down")
	inner := newRecordingHandler()
	inner.err = errors.New("save failed")
	h := NewIdempotentHandler(inner, store, zap.NewNop())

	err := h.Handle(context.Background(), received("Cumin", "1"))
	assert.EqualError(t, err, "save failed")
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	store := newFakeStore()
	store.markErr = errors.New("redis down")
	inner := newRecordingHandler()
	inner.err = errors.New("downstream")
	h := NewIdempotentHandler(inner, store, zap.NewNop())

	err := h.Handle(context.Background(), received("Cumin", "1"))
	assert.Error(t, err)
	assert.Equal(t, 1, inner.count())
	assert.Empty(t, store.unmarked, "nothing was marked so nothing is released")
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := newRecordingHandler()
	h := NewIdempotentHandler(inner, newFakeStore(), zap.NewNop(),
		WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))
	evt := received("Cumin", "1")

	require.NoError(t, h.Handle(context.Background(), evt))
	require.NoError(t, h.Handle(context.Background(), evt))
	assert.Equal(t, 2, inner.count())
}

func TestIdempotentHandler_SharedMetricsAndUnwrap(t *testing.T) {
	metrics := &IdempotencyMetrics{}
	inner := newRecordingHandler(stock.EventTypeTaskUtilised)
	store := newFakeStore()
	a := NewIdempotentHandler(inner, store, nil, WithIdempotencyMetrics(metrics))
	b := NewIdempotentHandler(inner, store, nil, WithIdempotencyMetrics(metrics))

	evt := utilised("Cumin", "1")
	require.NoError(t, a.Handle(context.Background(), evt))
	require.NoError(t, b.Handle(context.Background(), evt))

	assert.Equal(t, IdempotencyStats{EventsProcessed: 1, EventsDuplicate: 1}, metrics.Stats())
	assert.Same(t, inner, b.Unwrap())
	assert.Equal(t, []string{stock.EventTypeTaskUtilised}, a.EventTypes())
}

func TestIdempotentHandler_OnBus(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	inner := newRecordingHandler(stock.EventTypePurchaseReceived)
	bus.Subscribe(NewIdempotentHandler(inner, newFakeStore(), zap.NewNop()))

	evt := received("Cumin", "10")
	require.NoError(t, bus.Publish(context.Background(), evt, evt))

	assert.Equal(t, 1, inner.count())
}
