package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/tedxdyp/ticketd/internal/domain"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsLogger appends one row per sale to a Google Sheet used by the
// organizing team as the attendance register.
type SheetsLogger struct {
	svc           *sheets.Service
	spreadsheetID string
}

func NewSheetsLogger(ctx context.Context, spreadsheetID, credentialsFile string) (*SheetsLogger, error) {
	const op = "gateway.NewSheetsLogger"

	if spreadsheetID == "" || credentialsFile == "" {
		return &SheetsLogger{}, nil
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &SheetsLogger{svc: svc, spreadsheetID: spreadsheetID}, nil
}

var sheetHeader = []interface{}{
	"Name", "Email", "Phone", "Department", "Branch", "Session", "Amount",
	"Razorpay Order ID", "Payment ID", "Ticket ID", "Created At",
}

// AppendSale writes the sale row, adding the header row first if the sheet
// is still empty.
func (l *SheetsLogger) AppendSale(ctx context.Context, t *domain.Ticket) error {
	const op = "gateway.SheetsLogger.AppendSale"

	if l.svc == nil {
		return fmt.Errorf("%s:%w", op, ErrNotConfigured)
	}

	head, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, "Sheet1!A1:A1").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if len(head.Values) == 0 {
		_, err = l.svc.Spreadsheets.Values.
			Update(l.spreadsheetID, "Sheet1!A1", &sheets.ValueRange{
				Values: [][]interface{}{sheetHeader},
			}).
			ValueInputOption("RAW").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	row := []interface{}{
		t.Name, t.Email, t.Phone, t.Department, t.Branch, string(t.Session),
		t.Amount, t.OrderID, t.PaymentID, t.TicketID,
		t.CreatedAt.Format(time.RFC3339),
	}

	_, err = l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, "Sheet1!A2", &sheets.ValueRange{
			Values: [][]interface{}{row},
		}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
