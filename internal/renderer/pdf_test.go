package renderer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tedxdyp/ticketd/internal/domain"
)

func TestRenderProducesPDF(t *testing.T) {
	ticket := &domain.Ticket{
		TicketID: "TEDX-00001",
		Attendee: domain.Attendee{
			Name:  "Asha Kulkarni",
			Email: "asha@example.com",
			Phone: "9876543210",
		},
		Session: domain.SessionFullDay,
		Amount:  499,
		PaymentProof: domain.PaymentProof{
			OrderID:   "order_test",
			PaymentID: "pay_test",
		},
		CreatedAt: time.Now(),
	}

	out, err := New().Render(ticket)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
