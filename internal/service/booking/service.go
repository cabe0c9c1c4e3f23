package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tedxdyp/ticketd/internal/domain"
	redisx "github.com/tedxdyp/ticketd/internal/redis"
	"github.com/tedxdyp/ticketd/internal/repository"
	redisrepo "github.com/tedxdyp/ticketd/internal/repository/redis"
)

// CapacityStore is the atomic conditional-update surface of the capacity
// record. TryIncrement must check its precondition and apply the increment
// as one indivisible store operation.
type CapacityStore interface {
	GetOrCreate(ctx context.Context) (*domain.CapacityRecord, error)
	TryIncrement(ctx context.Context, session domain.Session) (*domain.CapacityRecord, error)
	Release(ctx context.Context, session domain.Session) error
}

const availabilityTTL = 5 * time.Second

type Service struct {
	caps   CapacityStore
	cache  *redisrepo.Cache
	pubsub *redisx.CapacityPubSub
}

// New builds the booking engine. cache and pubsub may be nil; booking then
// runs without read caching and without cross-instance invalidation.
func New(caps CapacityStore, cache *redisrepo.Cache, pubsub *redisx.CapacityPubSub) *Service {
	return &Service{
		caps:   caps,
		cache:  cache,
		pubsub: pubsub,
	}
}

// ReserveSeat takes one seat of the given session.
//
// Returns:
//   - *domain.CapacityRecord: the counters after the increment.
//   - error: booking.ErrInvalidSession for an unknown session.
//   - error: booking.ErrSoldOut when the session has no seats left. This is
//     an expected outcome under contention, not a fault.
func (s *Service) ReserveSeat(ctx context.Context, session domain.Session) (*domain.CapacityRecord, error) {
	const op = "service.booking.ReserveSeat"

	if _, ok := domain.ParseSession(string(session)); !ok {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSession)
	}

	// Lazy singleton create; idempotent under concurrent first access.
	if _, err := s.caps.GetOrCreate(ctx); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	rec, err := s.caps.TryIncrement(ctx, session)
	if err != nil {
		if errors.Is(err, repository.ErrNoCapacity) {
			return nil, fmt.Errorf("%s:%w", op, ErrSoldOut)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	s.capacityChanged(ctx, session)

	return rec, nil
}

// Release gives a seat back. Used as the compensating step when a checkout
// fails after its reservation committed.
func (s *Service) Release(ctx context.Context, session domain.Session) error {
	const op = "service.booking.Release"

	if _, ok := domain.ParseSession(string(session)); !ok {
		return fmt.Errorf("%s:%w", op, ErrInvalidSession)
	}

	if err := s.caps.Release(ctx, session); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	s.capacityChanged(ctx, session)

	return nil
}

// Availability reports the remaining seats per session, cached for a few
// seconds with a singleflight-deduped loader.
func (s *Service) Availability(ctx context.Context) (*domain.Availability, error) {
	const op = "service.booking.Availability"

	load := func(ctx context.Context) (domain.Availability, error) {
		rec, err := s.caps.GetOrCreate(ctx)
		if err != nil {
			return domain.Availability{}, err
		}
		return rec.Availability(), nil
	}

	if s.cache == nil {
		av, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return &av, nil
	}

	av, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyAvailability(), availabilityTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &av, nil
}

func (s *Service) capacityChanged(ctx context.Context, session domain.Session) {
	if s.cache != nil {
		_ = s.cache.InvalidateAvailability(ctx)
	}
	if s.pubsub != nil {
		_ = s.pubsub.PublishCapacityChanged(ctx, string(session))
	}
}
