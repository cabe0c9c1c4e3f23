package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/repository"
)

// TicketStore persists issued tickets. NextSequence must be an atomic
// increment in the store itself, never read-then-write.
type TicketStore interface {
	NextSequence(ctx context.Context) (int64, error)
	Insert(ctx context.Context, t *domain.Ticket) error
	List(ctx context.Context) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
}

type Service struct {
	tickets TicketStore
}

func New(tickets TicketStore) *Service {
	return &Service{tickets: tickets}
}

// Issue mints the next ticket id from the atomic sequence and persists an
// immutable ticket record.
//
// Returns:
//   - *domain.Ticket: the persisted ticket, id and creation time set.
//   - error: ledger.ErrDuplicateTicket if the id already exists; impossible
//     by construction for sequence-derived ids, kept for the store contract.
func (s *Service) Issue(
	ctx context.Context,
	attendee domain.Attendee,
	session domain.Session,
	amount float64,
	proof domain.PaymentProof,
) (*domain.Ticket, error) {
	const op = "service.ledger.Issue"

	seq, err := s.tickets.NextSequence(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	t := &domain.Ticket{
		TicketID:     domain.FormatTicketID(seq),
		Attendee:     attendee,
		Session:      session,
		Amount:       amount,
		PaymentProof: proof,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.tickets.Insert(ctx, t); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s:%w", op, ErrDuplicateTicket)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Ticket, error) {
	const op = "service.ledger.List"

	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tickets, nil
}

// Get retrieves a ticket by id.
//
// Returns:
//   - error: ledger.ErrInvalidID when id is not shaped like an issued id.
//   - error: ledger.ErrTicketNotFound when no such ticket exists.
func (s *Service) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	const op = "service.ledger.Get"

	if !domain.ValidTicketID(id) {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidID)
	}

	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTicketNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return t, nil
}
