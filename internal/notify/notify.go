// Package notify runs the best-effort tail of a checkout: ticket artifact,
// email, spreadsheet row. Everything here happens after the authoritative
// commit and can only ever be logged, never rolled back into the request.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/gateway"
)

type Renderer interface {
	Render(t *domain.Ticket) ([]byte, error)
}

type Mailer interface {
	SendTicket(ctx context.Context, t *domain.Ticket, pdf []byte) error
}

type SaleLogger interface {
	AppendSale(ctx context.Context, t *domain.Ticket) error
}

type Dispatcher struct {
	renderer Renderer
	mailer   Mailer
	sheets   SaleLogger
	logger   *slog.Logger
}

func NewDispatcher(renderer Renderer, mailer Mailer, sheets SaleLogger, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		renderer: renderer,
		mailer:   mailer,
		sheets:   sheets,
		logger:   logger,
	}
}

// Dispatch fires the notification chain for a committed ticket and returns
// immediately. The detached context keeps deliveries alive after the HTTP
// request that triggered them has been answered.
func (d *Dispatcher) Dispatch(ctx context.Context, t *domain.Ticket) {
	go d.deliver(context.WithoutCancel(ctx), t)
}

func (d *Dispatcher) deliver(ctx context.Context, t *domain.Ticket) {
	var pdf []byte

	if d.renderer != nil {
		b, err := d.renderer.Render(t)
		if err != nil {
			d.logger.Error("render ticket pdf", "ticket_id", t.TicketID, "error", err)
		} else {
			pdf = b
		}
	}

	if d.mailer != nil {
		if err := d.mailer.SendTicket(ctx, t, pdf); err != nil {
			d.logNotifyErr("send ticket email", t, err)
		} else {
			d.logger.Info("ticket email sent", "ticket_id", t.TicketID, "to", t.Email)
		}
	}

	if d.sheets != nil {
		if err := d.sheets.AppendSale(ctx, t); err != nil {
			d.logNotifyErr("append sale to sheet", t, err)
		} else {
			d.logger.Info("sale row appended", "ticket_id", t.TicketID)
		}
	}
}

func (d *Dispatcher) logNotifyErr(msg string, t *domain.Ticket, err error) {
	if errors.Is(err, gateway.ErrNotConfigured) {
		d.logger.Warn(msg+": skipped, gateway not configured", "ticket_id", t.TicketID)
		return
	}
	d.logger.Error(msg, "ticket_id", t.TicketID, "error", err)
}
