package gateway

import (
	"context"
	"fmt"
	"io"

	"github.com/tedxdyp/ticketd/internal/domain"
	gomail "gopkg.in/gomail.v2"
)

const emailSenderName = "TEDx DYP Akurdi"

type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(host string, port int, username, password, from string) *EmailSender {
	if username == "" || password == "" {
		return &EmailSender{}
	}

	return &EmailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// SendTicket mails the attendee their ticket. pdf may be empty when the
// renderer failed; the mail still goes out without the attachment.
func (s *EmailSender) SendTicket(ctx context.Context, t *domain.Ticket, pdf []byte) error {
	const op = "gateway.EmailSender.SendTicket"

	if s.dialer == nil {
		return fmt.Errorf("%s:%w", op, ErrNotConfigured)
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, emailSenderName)
	m.SetHeader("To", t.Email)
	m.SetHeader("Subject", "Your TEDx Ticket & Welcome!")
	m.SetBody("text/html", ticketEmailBody(t))

	if len(pdf) > 0 {
		m.Attach(
			fmt.Sprintf("%s-Ticket-%s.pdf", domain.TicketIDPrefix, t.TicketID),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(pdf)
				return err
			}),
		)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

func ticketEmailBody(t *domain.Ticket) string {
	return fmt.Sprintf(`
		<h2>Welcome to TEDx DYP Akurdi!</h2>
		<p>Dear <strong>%s</strong>,</p>
		<p>Thank you for registering for our event. Your ticket is attached as a PDF.</p>
		<ul>
			<li><strong>Ticket ID:</strong> %s</li>
			<li><strong>Session:</strong> %s</li>
			<li><strong>Amount Paid:</strong> &#8377;%.2f</li>
			<li><strong>Payment ID:</strong> %s</li>
		</ul>
		<p>We look forward to welcoming you!</p>
		<p>Best regards,<br/>TEDx DYP Akurdi Team</p>`,
		t.Name, t.TicketID, t.Session, t.Amount, t.PaymentID,
	)
}
