package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Session identifies which part of the event a ticket grants access to.
// A full-day ticket occupies one seat in the morning pool and one in the
// evening pool at the same time.
type Session string

const (
	SessionMorning Session = "morning"
	SessionEvening Session = "evening"
	SessionFullDay Session = "fullday"
)

// ParseSession maps a raw string onto one of the three session categories.
func ParseSession(s string) (Session, bool) {
	switch Session(s) {
	case SessionMorning, SessionEvening, SessionFullDay:
		return Session(s), true
	}
	return "", false
}

// DefaultTotalLimit is the venue capacity used when the counter
// record is created for the first time.
const DefaultTotalLimit = 400

// CapacityRecord is the singleton counter document backing all bookings.
// After every committed mutation the following must hold:
//
//	MorningSold + EveningSold + FulldaySold <= TotalLimit
//	MorningSold + FulldaySold              <= TotalLimit
//	EveningSold + FulldaySold              <= TotalLimit
type CapacityRecord struct {
	MorningSold int `json:"morning_sold"`
	EveningSold int `json:"evening_sold"`
	FulldaySold int `json:"fullday_sold"`
	TotalLimit  int `json:"total_limit"`
}

// CanBook reports whether one more seat of the given session fits without
// violating the capacity invariants. This mirrors the precondition the
// store enforces atomically; callers must not rely on it alone.
func (c CapacityRecord) CanBook(s Session) bool {
	total := c.MorningSold + c.EveningSold + c.FulldaySold

	switch s {
	case SessionMorning:
		return total < c.TotalLimit && c.MorningSold+c.FulldaySold < c.TotalLimit
	case SessionEvening:
		return total < c.TotalLimit && c.EveningSold+c.FulldaySold < c.TotalLimit
	case SessionFullDay:
		return total < c.TotalLimit
	}

	return false
}

// Valid reports whether the record satisfies the capacity invariants.
func (c CapacityRecord) Valid() bool {
	return c.MorningSold >= 0 && c.EveningSold >= 0 && c.FulldaySold >= 0 &&
		c.MorningSold+c.EveningSold+c.FulldaySold <= c.TotalLimit &&
		c.MorningSold+c.FulldaySold <= c.TotalLimit &&
		c.EveningSold+c.FulldaySold <= c.TotalLimit
}

type Availability struct {
	Morning int `json:"morning"`
	Evening int `json:"evening"`
	Fullday int `json:"fullday"`
	Limit   int `json:"limit"`
}

// Availability derives the remaining seats per category. A category's
// headroom is the tightest of the invariants that constrain it.
func (c CapacityRecord) Availability() Availability {
	total := c.TotalLimit - (c.MorningSold + c.EveningSold + c.FulldaySold)

	return Availability{
		Morning: clampMin(minInt(total, c.TotalLimit-(c.MorningSold+c.FulldaySold)), 0),
		Evening: clampMin(minInt(total, c.TotalLimit-(c.EveningSold+c.FulldaySold)), 0),
		Fullday: clampMin(total, 0),
		Limit:   c.TotalLimit,
	}
}

type Attendee struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department,omitempty"`
	Branch     string `json:"branch,omitempty"`
}

// PaymentProof is the triple handed back by the payment gateway after a
// captured payment. The signature is re-verified server-side before it is
// trusted.
type PaymentProof struct {
	OrderID   string `json:"razorpay_order_id,omitempty"`
	PaymentID string `json:"razorpay_payment_id,omitempty"`
	Signature string `json:"-"`
}

// Ticket is the durable record of a successful, paid reservation.
// Immutable once persisted.
type Ticket struct {
	TicketID string `json:"ticket_id"`
	Attendee
	Session Session `json:"session"`
	Amount  float64 `json:"amount"`
	PaymentProof
	CreatedAt time.Time `json:"created_at"`
}

// TicketIDPrefix is stamped onto every sequence-derived ticket id.
const TicketIDPrefix = "TEDX"

var ticketIDPattern = regexp.MustCompile(`^` + TicketIDPrefix + `-\d{5,}$`)

// FormatTicketID renders a sequence number as a fixed-width padded id,
// e.g. TEDX-00042.
func FormatTicketID(seq int64) string {
	return fmt.Sprintf("%s-%05d", TicketIDPrefix, seq)
}

// ValidTicketID reports whether id has the shape of an issued ticket id.
func ValidTicketID(id string) bool {
	return ticketIDPattern.MatchString(id)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampMin(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
