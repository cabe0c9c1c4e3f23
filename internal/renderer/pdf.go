// Package renderer produces the printable ticket artifact: a 500x220pt
// landscape PDF with the attendee details on a red panel and a QR code
// carrying the check-in payload.
package renderer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/tedxdyp/ticketd/internal/domain"
)

type TicketRenderer struct{}

func New() *TicketRenderer {
	return &TicketRenderer{}
}

func (r *TicketRenderer) Render(t *domain.Ticket) ([]byte, error) {
	const op = "renderer.TicketRenderer.Render"

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: 500, Ht: 220},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Left red panel.
	pdf.SetFillColor(190, 35, 38)
	pdf.RoundedRect(10, 10, 320, 200, 14, "1234", "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.Text(26, 46, "TED")
	tedWidth := pdf.GetStringWidth("TED")
	pdf.SetTextColor(235, 0, 40)
	pdf.Text(26+tedWidth, 46, "x")
	xWidth := pdf.GetStringWidth("x")
	pdf.SetTextColor(255, 255, 255)
	pdf.Text(26+tedWidth+xWidth, 46, "DYPAkurdi")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(26, 62, "x = Independently Organized TED Event")

	pdf.SetFont("Helvetica", "B", 22)
	price := fmt.Sprintf("INR %.0f", t.Amount)
	pdf.Text(320-pdf.GetStringWidth(price), 46, price)

	details := []struct {
		label string
		value string
	}{
		{"Name", t.Name},
		{"Email", t.Email},
		{"Phone", t.Phone},
		{"Ticket ID", t.TicketID},
	}

	y := 98.0
	for _, d := range details {
		pdf.SetFont("Helvetica", "B", 13)
		label := d.label + " : "
		pdf.Text(26, y, label)
		pdf.SetFont("Helvetica", "", 13)
		pdf.Text(26+pdf.GetStringWidth(label), y, d.value)
		y += 25
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(26, 198, "tedxdypakurdi")

	// Right section: oversized X.
	pdf.SetTextColor(235, 0, 40)
	pdf.SetFont("Helvetica", "B", 140)
	pdf.Text(355, 175, "X")

	// QR payload for door scanning.
	payload := fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nTicketID: %s\nPaymentID: %s",
		t.Name, t.Email, t.Phone, t.TicketID, t.PaymentID,
	)

	png, err := qrcode.Encode(payload, qrcode.Medium, 160)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 405, 130, 80, 80, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return buf.Bytes(), nil
}
