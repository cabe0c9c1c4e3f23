package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tedxdyp/ticketd/internal/domain"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool       *pgxpool.Pool
	totalLimit int
}

// NewStore wraps a pgx pool. totalLimit is the capacity written into the
// counter record when it is created lazily; zero means domain.DefaultTotalLimit.
func NewStore(pool *pgxpool.Pool, totalLimit int) *Store {
	if totalLimit <= 0 {
		totalLimit = domain.DefaultTotalLimit
	}

	return &Store{
		pool:       pool,
		totalLimit: totalLimit,
	}
}

func (s *Store) Capacity() *CapacityRepo {
	return &CapacityRepo{db: s.pool, limit: s.totalLimit}
}

func (s *Store) Tickets() *TicketRepo {
	return &TicketRepo{db: s.pool}
}

// EnsureSchema creates the tables on first run. Safe to call on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const op = "postgres.Store.EnsureSchema"

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS capacity_counters (
			id           text PRIMARY KEY,
			morning_sold integer NOT NULL DEFAULT 0,
			evening_sold integer NOT NULL DEFAULT 0,
			fullday_sold integer NOT NULL DEFAULT 0,
			total_limit  integer NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS ticket_sequences (
			name  text PRIMARY KEY,
			value bigint NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tickets (
			ticket_id  text PRIMARY KEY,
			name       text NOT NULL,
			email      text NOT NULL,
			phone      text NOT NULL,
			department text NOT NULL DEFAULT '',
			branch     text NOT NULL DEFAULT '',
			session    text NOT NULL,
			amount     numeric NOT NULL,
			order_id   text NOT NULL DEFAULT '',
			payment_id text NOT NULL DEFAULT '',
			signature  text NOT NULL DEFAULT '',
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	return nil
}
