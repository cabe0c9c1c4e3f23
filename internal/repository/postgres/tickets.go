package postgres

import (
	"context"

	"github.com/tedxdyp/ticketd/internal/domain"
)

const ticketSequenceName = "ticket_id"

type TicketRepo struct {
	db DB
}

// NextSequence atomically advances the ticket id sequence and returns the
// new value. The upsert-increment is a single statement, so concurrent
// issuers can never observe the same value.
func (r *TicketRepo) NextSequence(ctx context.Context) (int64, error) {
	const op = "postgres.TicketRepo.NextSequence"

	var value int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO ticket_sequences (name, value)
		 VALUES ($1, 1)
		 ON CONFLICT (name) DO UPDATE
		 SET value = ticket_sequences.value + 1
		 RETURNING value`,
		ticketSequenceName,
	).Scan(&value)
	if err != nil {
		return 0, wrapDBErr(op, err)
	}

	return value, nil
}

// Insert persists a ticket.
//
// Returns:
//   - error: repository.ErrConflict if a ticket with the same id exists.
func (r *TicketRepo) Insert(ctx context.Context, t *domain.Ticket) error {
	const op = "postgres.TicketRepo.Insert"

	_, err := r.db.Exec(ctx,
		`INSERT INTO tickets (ticket_id, name, email, phone, department, branch,
		                      session, amount, order_id, payment_id, signature, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.TicketID, t.Name, t.Email, t.Phone, t.Department, t.Branch,
		t.Session, t.Amount, t.OrderID, t.PaymentID, t.Signature, t.CreatedAt,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// List returns all issued tickets. Order is not guaranteed to callers;
// newest-first is what the query happens to produce.
func (r *TicketRepo) List(ctx context.Context) ([]domain.Ticket, error) {
	const op = "postgres.TicketRepo.List"

	rows, err := r.db.Query(ctx,
		`SELECT ticket_id, name, email, phone, department, branch,
		        session, amount, order_id, payment_id, signature, created_at
		 FROM tickets
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		if err := rows.Scan(
			&t.TicketID, &t.Name, &t.Email, &t.Phone, &t.Department, &t.Branch,
			&t.Session, &t.Amount, &t.OrderID, &t.PaymentID, &t.Signature, &t.CreatedAt,
		); err != nil {
			return nil, wrapDBErr(op, err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return tickets, nil
}

// GetByID retrieves a single ticket.
//
// Returns:
//   - error: repository.ErrNotFound if no ticket has the given id.
func (r *TicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const op = "postgres.TicketRepo.GetByID"

	var t domain.Ticket
	err := r.db.QueryRow(ctx,
		`SELECT ticket_id, name, email, phone, department, branch,
		        session, amount, order_id, payment_id, signature, created_at
		 FROM tickets WHERE ticket_id = $1`,
		id,
	).Scan(
		&t.TicketID, &t.Name, &t.Email, &t.Phone, &t.Department, &t.Branch,
		&t.Session, &t.Amount, &t.OrderID, &t.PaymentID, &t.Signature, &t.CreatedAt,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}
