package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/repository"
)

// memCapacityStore reproduces the store's conditional-update semantics in
// memory: the precondition check and the increment happen under one lock,
// exactly as indivisible as the real single-statement UPDATE.
type memCapacityStore struct {
	mu      sync.Mutex
	limit   int
	rec     domain.CapacityRecord
	created bool
}

func newMemCapacityStore(limit int) *memCapacityStore {
	return &memCapacityStore{limit: limit}
}

func (m *memCapacityStore) GetOrCreate(_ context.Context) (*domain.CapacityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.created {
		m.rec = domain.CapacityRecord{TotalLimit: m.limit}
		m.created = true
	}

	rec := m.rec
	return &rec, nil
}

func (m *memCapacityStore) TryIncrement(_ context.Context, session domain.Session) (*domain.CapacityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.rec.CanBook(session) {
		return nil, repository.ErrNoCapacity
	}

	switch session {
	case domain.SessionMorning:
		m.rec.MorningSold++
	case domain.SessionEvening:
		m.rec.EveningSold++
	case domain.SessionFullDay:
		m.rec.FulldaySold++
	}

	rec := m.rec
	return &rec, nil
}

func (m *memCapacityStore) Release(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch session {
	case domain.SessionMorning:
		if m.rec.MorningSold == 0 {
			return repository.ErrNotFound
		}
		m.rec.MorningSold--
	case domain.SessionEvening:
		if m.rec.EveningSold == 0 {
			return repository.ErrNotFound
		}
		m.rec.EveningSold--
	case domain.SessionFullDay:
		if m.rec.FulldaySold == 0 {
			return repository.ErrNotFound
		}
		m.rec.FulldaySold--
	}

	return nil
}

func (m *memCapacityStore) snapshot() domain.CapacityRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rec
}

func TestReserveSeatInvalidSession(t *testing.T) {
	svc := New(newMemCapacityStore(400), nil, nil)

	_, err := svc.ReserveSeat(context.Background(), domain.Session("vip"))
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestReserveSeatCreatesCounterLazily(t *testing.T) {
	store := newMemCapacityStore(400)
	svc := New(store, nil, nil)

	rec, err := svc.ReserveSeat(context.Background(), domain.SessionMorning)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.MorningSold)
	assert.Equal(t, 400, rec.TotalLimit)
}

// Exactly limit concurrent fullday reservations succeed; every extra
// caller gets ErrSoldOut and the invariants hold at the end.
func TestConcurrentFulldayReservations(t *testing.T) {
	const limit = 400
	const extra = 50

	store := newMemCapacityStore(limit)
	svc := New(store, nil, nil)

	var wg sync.WaitGroup
	results := make(chan error, limit+extra)

	for i := 0; i < limit+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ReserveSeat(context.Background(), domain.SessionFullDay)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, soldOut int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrSoldOut):
			soldOut++
		}
	}

	assert.Equal(t, limit, ok)
	assert.Equal(t, extra, soldOut)

	rec := store.snapshot()
	assert.Equal(t, limit, rec.FulldaySold)
	assert.True(t, rec.Valid())
}

// Hammer all three sessions at once; whatever mix commits, the final
// record must satisfy every invariant.
func TestConcurrentMixedSessionsKeepInvariants(t *testing.T) {
	const limit = 100

	store := newMemCapacityStore(limit)
	svc := New(store, nil, nil)

	sessions := []domain.Session{
		domain.SessionMorning, domain.SessionEvening, domain.SessionFullDay,
	}

	var wg sync.WaitGroup
	for i := 0; i < 3*limit; i++ {
		wg.Add(1)
		go func(s domain.Session) {
			defer wg.Done()
			_, _ = svc.ReserveSeat(context.Background(), s)
		}(sessions[i%len(sessions)])
	}
	wg.Wait()

	rec := store.snapshot()
	require.True(t, rec.Valid(), "final record %+v violates invariants", rec)
	assert.LessOrEqual(t, rec.MorningSold+rec.EveningSold+rec.FulldaySold, limit)
	assert.LessOrEqual(t, rec.MorningSold+rec.FulldaySold, limit)
	assert.LessOrEqual(t, rec.EveningSold+rec.FulldaySold, limit)
}

func TestReserveSeatNearLimit(t *testing.T) {
	store := newMemCapacityStore(400)
	svc := New(store, nil, nil)

	ctx := context.Background()

	_, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	store.rec.MorningSold = 399

	// One seat of global headroom left: morning still fits once.
	rec, err := svc.ReserveSeat(ctx, domain.SessionMorning)
	require.NoError(t, err)
	assert.Equal(t, 400, rec.MorningSold)

	_, err = svc.ReserveSeat(ctx, domain.SessionMorning)
	assert.ErrorIs(t, err, ErrSoldOut)
	_, err = svc.ReserveSeat(ctx, domain.SessionEvening)
	assert.ErrorIs(t, err, ErrSoldOut)
	_, err = svc.ReserveSeat(ctx, domain.SessionFullDay)
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestFulldayBlockedByMorningPoolOverlap(t *testing.T) {
	store := newMemCapacityStore(400)
	svc := New(store, nil, nil)

	ctx := context.Background()

	_, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	store.rec.MorningSold = 200
	store.rec.FulldaySold = 199

	// fullday fits once more (total 399 < 400)...
	_, err = svc.ReserveSeat(ctx, domain.SessionFullDay)
	require.NoError(t, err)

	// ...after which the morning pool (200+200) is saturated.
	_, err = svc.ReserveSeat(ctx, domain.SessionMorning)
	assert.ErrorIs(t, err, ErrSoldOut)
	_, err = svc.ReserveSeat(ctx, domain.SessionFullDay)
	assert.ErrorIs(t, err, ErrSoldOut)
}

func TestReleaseFreesSeat(t *testing.T) {
	store := newMemCapacityStore(1)
	svc := New(store, nil, nil)

	ctx := context.Background()

	_, err := svc.ReserveSeat(ctx, domain.SessionMorning)
	require.NoError(t, err)

	_, err = svc.ReserveSeat(ctx, domain.SessionMorning)
	require.ErrorIs(t, err, ErrSoldOut)

	require.NoError(t, svc.Release(ctx, domain.SessionMorning))

	rec, err := svc.ReserveSeat(ctx, domain.SessionMorning)
	require.NoError(t, err)
	assert.Equal(t, 1, rec.MorningSold)
}

func TestAvailabilityWithoutCache(t *testing.T) {
	store := newMemCapacityStore(400)
	svc := New(store, nil, nil)

	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.ReserveSeat(ctx, domain.SessionFullDay)
		require.NoError(t, err, fmt.Sprintf("reserve %d", i))
	}

	av, err := svc.Availability(ctx)
	require.NoError(t, err)
	assert.Equal(t, 390, av.Fullday)
	assert.Equal(t, 390, av.Morning)
	assert.Equal(t, 390, av.Evening)
	assert.Equal(t, 400, av.Limit)
}
