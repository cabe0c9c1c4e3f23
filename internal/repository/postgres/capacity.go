package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/repository"
)

// counterID pins the singleton row; every instance of the service mutates
// the same record.
const counterID = "session_counters"

// CapacityRepo owns the singleton capacity record. All mutation goes
// through single-statement conditional updates so the precondition check
// and the increment are indivisible; callers never do read-then-write.
type CapacityRepo struct {
	db    DB
	limit int
}

// The WHERE clause encodes the overlap rule: a full-day attendee occupies
// one seat in the morning pool and one in the evening pool, so single
// sessions are bounded by both the global total and their own pool, while
// fullday is bounded by the global total alone.
const (
	incrementMorningQuery = `
		UPDATE capacity_counters
		   SET morning_sold = morning_sold + 1
		 WHERE id = $1
		   AND morning_sold + evening_sold + fullday_sold < total_limit
		   AND morning_sold + fullday_sold < total_limit
		RETURNING morning_sold, evening_sold, fullday_sold, total_limit`

	incrementEveningQuery = `
		UPDATE capacity_counters
		   SET evening_sold = evening_sold + 1
		 WHERE id = $1
		   AND morning_sold + evening_sold + fullday_sold < total_limit
		   AND evening_sold + fullday_sold < total_limit
		RETURNING morning_sold, evening_sold, fullday_sold, total_limit`

	incrementFulldayQuery = `
		UPDATE capacity_counters
		   SET fullday_sold = fullday_sold + 1
		 WHERE id = $1
		   AND morning_sold + evening_sold + fullday_sold < total_limit
		RETURNING morning_sold, evening_sold, fullday_sold, total_limit`
)

// GetOrCreate returns the counter record, creating it with zeroed counters
// and the configured limit if absent. The upsert is idempotent, so
// concurrent first access never produces duplicates.
func (r *CapacityRepo) GetOrCreate(ctx context.Context) (*domain.CapacityRecord, error) {
	const op = "postgres.CapacityRepo.GetOrCreate"

	if _, err := r.db.Exec(ctx,
		`INSERT INTO capacity_counters (id, morning_sold, evening_sold, fullday_sold, total_limit)
		 VALUES ($1, 0, 0, 0, $2)
		 ON CONFLICT (id) DO NOTHING`,
		counterID, r.limit,
	); err != nil {
		return nil, wrapDBErr(op, err)
	}

	var rec domain.CapacityRecord
	err := r.db.QueryRow(ctx,
		`SELECT morning_sold, evening_sold, fullday_sold, total_limit
		 FROM capacity_counters WHERE id = $1`,
		counterID,
	).Scan(&rec.MorningSold, &rec.EveningSold, &rec.FulldaySold, &rec.TotalLimit)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rec, nil
}

// TryIncrement atomically increments the counter for the given session if
// the post-state would still satisfy the capacity invariants.
//
// Returns:
//   - *domain.CapacityRecord: the updated record when the seat was taken.
//   - error: repository.ErrNoCapacity when no row matched the precondition,
//     i.e. the session is sold out.
func (r *CapacityRepo) TryIncrement(ctx context.Context, session domain.Session) (*domain.CapacityRecord, error) {
	const op = "postgres.CapacityRepo.TryIncrement"

	var query string
	switch session {
	case domain.SessionMorning:
		query = incrementMorningQuery
	case domain.SessionEvening:
		query = incrementEveningQuery
	case domain.SessionFullDay:
		query = incrementFulldayQuery
	default:
		return nil, fmt.Errorf("%s: unknown session %q", op, session)
	}

	var rec domain.CapacityRecord
	err := r.db.QueryRow(ctx, query, counterID).
		Scan(&rec.MorningSold, &rec.EveningSold, &rec.FulldaySold, &rec.TotalLimit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s:%w", op, repository.ErrNoCapacity)
		}
		return nil, wrapDBErr(op, err)
	}

	return &rec, nil
}

// Release is the compensating decrement used when a later checkout step
// fails after the seat was committed. The floor guard keeps a stray
// release from driving a counter negative.
func (r *CapacityRepo) Release(ctx context.Context, session domain.Session) error {
	const op = "postgres.CapacityRepo.Release"

	var column string
	switch session {
	case domain.SessionMorning:
		column = "morning_sold"
	case domain.SessionEvening:
		column = "evening_sold"
	case domain.SessionFullDay:
		column = "fullday_sold"
	default:
		return fmt.Errorf("%s: unknown session %q", op, session)
	}

	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(
			`UPDATE capacity_counters SET %s = %s - 1 WHERE id = $1 AND %s > 0`,
			column, column, column,
		),
		counterID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
