// Package checkout orchestrates the paid booking flow: verify the payment
// proof, reserve a seat, issue a ticket, then fan out notifications.
package checkout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/payment"
)

type SeatReserver interface {
	ReserveSeat(ctx context.Context, session domain.Session) (*domain.CapacityRecord, error)
	Release(ctx context.Context, session domain.Session) error
}

type TicketIssuer interface {
	Issue(ctx context.Context, attendee domain.Attendee, session domain.Session, amount float64, proof domain.PaymentProof) (*domain.Ticket, error)
}

// Notifier delivers post-issue side effects. Must not block the caller and
// must not fail the checkout.
type Notifier interface {
	Dispatch(ctx context.Context, t *domain.Ticket)
}

type Service struct {
	booking  SeatReserver
	ledger   TicketIssuer
	notifier Notifier
	secret   string
	logger   *slog.Logger
}

func New(booking SeatReserver, ledger TicketIssuer, notifier Notifier, razorpaySecret string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		booking:  booking,
		ledger:   ledger,
		notifier: notifier,
		secret:   razorpaySecret,
		logger:   logger,
	}
}

// Request carries everything the client sends after the gateway reports a
// captured payment. SessionRaw is the untrusted session string as received.
type Request struct {
	Attendee   domain.Attendee
	SessionRaw string
	Amount     float64
	Proof      domain.PaymentProof
}

// Checkout runs the full verify-then-book pipeline.
//
// Order matters: the signature gate runs before any state changes, so a
// forged request never touches the counters. If the ticket write fails after
// the seat increment committed, the seat is released again.
//
// Returns:
//   - error: checkout.ErrMissingFields, checkout.ErrInvalidSignature,
//     booking.ErrInvalidSession, booking.ErrSoldOut, checkout.ErrLedgerWrite.
func (s *Service) Checkout(ctx context.Context, req Request) (*domain.Ticket, error) {
	const op = "service.checkout.Checkout"

	if req.Proof.OrderID == "" || req.Proof.PaymentID == "" || req.Proof.Signature == "" ||
		req.Attendee.Name == "" || req.Attendee.Email == "" || req.Attendee.Phone == "" ||
		req.SessionRaw == "" || req.Amount <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingFields)
	}

	if !payment.VerifySignature(req.Proof.OrderID, req.Proof.PaymentID, req.Proof.Signature, s.secret) {
		s.logger.Warn("payment signature rejected",
			slog.String("order_id", req.Proof.OrderID),
			slog.String("payment_id", req.Proof.PaymentID))

		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSignature)
	}

	session, _ := domain.ParseSession(req.SessionRaw)

	t, err := s.reserveAndIssue(ctx, op, req.Attendee, session, req.SessionRaw, req.Amount, req.Proof)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, t)
	}

	return t, nil
}

// Book reserves a seat and issues a ticket without a payment gate. Serves
// the direct booking endpoint used for door sales and comp tickets.
func (s *Service) Book(ctx context.Context, attendee domain.Attendee, sessionRaw string, amount float64) (*domain.Ticket, error) {
	const op = "service.checkout.Book"

	if attendee.Name == "" || attendee.Email == "" || attendee.Phone == "" ||
		sessionRaw == "" || amount <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrMissingFields)
	}

	session, _ := domain.ParseSession(sessionRaw)

	t, err := s.reserveAndIssue(ctx, op, attendee, session, sessionRaw, amount, domain.PaymentProof{})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(ctx, t)
	}

	return t, nil
}

func (s *Service) reserveAndIssue(
	ctx context.Context,
	op string,
	attendee domain.Attendee,
	session domain.Session,
	sessionRaw string,
	amount float64,
	proof domain.PaymentProof,
) (*domain.Ticket, error) {
	// ReserveSeat re-validates the session string, so an unparsed sessionRaw
	// surfaces as booking.ErrInvalidSession rather than silently booking.
	if _, err := s.booking.ReserveSeat(ctx, domain.Session(sessionRaw)); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	t, err := s.ledger.Issue(ctx, attendee, session, amount, proof)
	if err != nil {
		s.logger.Error("ticket write failed after reservation, releasing seat",
			slog.String("session", string(session)),
			slog.Any("error", err))

		if relErr := s.booking.Release(ctx, session); relErr != nil {
			s.logger.Error("seat release failed, counter may be high by one",
				slog.String("session", string(session)),
				slog.Any("error", relErr))
		}

		return nil, fmt.Errorf("%s:%w", op, ErrLedgerWrite)
	}

	return t, nil
}
