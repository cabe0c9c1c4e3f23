package httpgin

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/gateway"
	"github.com/tedxdyp/ticketd/internal/payment"
	"github.com/tedxdyp/ticketd/internal/repository"
	"github.com/tedxdyp/ticketd/internal/service"
	"github.com/tedxdyp/ticketd/internal/service/booking"
	"github.com/tedxdyp/ticketd/internal/service/checkout"
	"github.com/tedxdyp/ticketd/internal/service/ledger"
)

const testSecret = "test"

type memCapacityStore struct {
	mu  sync.Mutex
	rec domain.CapacityRecord
}

func newMemCapacityStore() *memCapacityStore {
	return &memCapacityStore{rec: domain.CapacityRecord{TotalLimit: domain.DefaultTotalLimit}}
}

func (m *memCapacityStore) GetOrCreate(_ context.Context) (*domain.CapacityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.rec
	return &rec, nil
}

func (m *memCapacityStore) TryIncrement(_ context.Context, session domain.Session) (*domain.CapacityRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.rec.CanBook(session) {
		return nil, repository.ErrNoCapacity
	}
	switch session {
	case domain.SessionMorning:
		m.rec.MorningSold++
	case domain.SessionEvening:
		m.rec.EveningSold++
	case domain.SessionFullDay:
		m.rec.FulldaySold++
	}
	rec := m.rec
	return &rec, nil
}

func (m *memCapacityStore) Release(_ context.Context, session domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch session {
	case domain.SessionMorning:
		m.rec.MorningSold--
	case domain.SessionEvening:
		m.rec.EveningSold--
	case domain.SessionFullDay:
		m.rec.FulldaySold--
	}
	return nil
}

type memTicketStore struct {
	mu      sync.Mutex
	seq     int64
	tickets map[string]domain.Ticket
}

func newMemTicketStore() *memTicketStore {
	return &memTicketStore{tickets: make(map[string]domain.Ticket)}
}

func (m *memTicketStore) NextSequence(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

func (m *memTicketStore) Insert(_ context.Context, t *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tickets[t.TicketID]; exists {
		return repository.ErrConflict
	}
	m.tickets[t.TicketID] = *t
	return nil
}

func (m *memTicketStore) List(_ context.Context) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t)
	}
	return out, nil
}

func (m *memTicketStore) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

type noopNotifier struct{}

func (noopNotifier) Dispatch(_ context.Context, _ *domain.Ticket) {}

func newTestRouter(t *testing.T, caps *memCapacityStore, allowedOrigins ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))

	b := booking.New(caps, nil, nil)
	l := ledger.New(newMemTicketStore())
	svcs := &service.Services{
		Booking:  b,
		Ledger:   l,
		Checkout: checkout.New(b, l, noopNotifier{}, testSecret, logger),
	}

	return NewRouter(svcs, gateway.NewRazorpayGateway("", ""), nil, nil, allowedOrigins, logger)
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRootAndNotFound(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Server is running!"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/no/such/route", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())
}

func TestCreateOrderRequiresAmount(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodPost, "/create-order", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Amount is required"}`, w.Body.String())
}

func TestCreateOrderGatewayUnconfigured(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodPost, "/create-order", map[string]any{"amount": 299})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to create order"}`, w.Body.String())
}

func verifyPaymentBody(orderID, paymentID, signature string) map[string]any {
	return map[string]any{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
		"name":                "Asha Kulkarni",
		"email":               "asha@example.com",
		"phone":               "9876543210",
		"department":          "CS",
		"branch":              "A",
		"session":             "morning",
		"amount":              299,
	}
}

func TestVerifyPaymentHappyPath(t *testing.T) {
	caps := newMemCapacityStore()
	r := newTestRouter(t, caps)

	sig := payment.Signature("order_1", "pay_1", testSecret)
	w := doJSON(r, http.MethodPost, "/verify-payment", verifyPaymentBody("order_1", "pay_1", sig))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp VerifyPaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "TEDX-00001", resp.TicketID)
	assert.Equal(t, "Payment verified, ticket stored, and email sent successfully", resp.Message)

	assert.Equal(t, 1, caps.rec.MorningSold)

	// The ticket is now readable through the public surface.
	w = doJSON(r, http.MethodGet, "/tickets/TEDX-00001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyPaymentForgedSignature(t *testing.T) {
	caps := newMemCapacityStore()
	r := newTestRouter(t, caps)

	w := doJSON(r, http.MethodPost, "/verify-payment", verifyPaymentBody("order_1", "pay_1", "deadbeef"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid payment signature"}`, w.Body.String())
	assert.Zero(t, caps.rec.MorningSold)
}

// Booking failures answer {success:false, message}; the {error} shape is
// reserved for the order route and the catch-all.
func TestVerifyPaymentMissingFields(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	body := verifyPaymentBody("order_1", "pay_1", payment.Signature("order_1", "pay_1", testSecret))
	delete(body, "email")

	w := doJSON(r, http.MethodPost, "/verify-payment", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing required fields"}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/verify-payment", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Missing required fields"}`, w.Body.String())
}

func TestBookTicketHappyPath(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodPost, "/book-ticket", map[string]any{
		"name":        "Ravi Patil",
		"email":       "ravi@example.com",
		"phone":       "9123456780",
		"sessionType": "fullday",
		"amount":      499,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool          `json:"success"`
		Ticket  domain.Ticket `json:"ticket"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, domain.SessionFullDay, resp.Ticket.Session)
	assert.Equal(t, "TEDX-00001", resp.Ticket.TicketID)
}

func TestBookTicketSoldOut(t *testing.T) {
	caps := newMemCapacityStore()
	caps.rec.MorningSold = domain.DefaultTotalLimit
	r := newTestRouter(t, caps)

	w := doJSON(r, http.MethodPost, "/book-ticket", map[string]any{
		"name":        "Ravi Patil",
		"email":       "ravi@example.com",
		"phone":       "9123456780",
		"sessionType": "morning",
		"amount":      299,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Tickets sold out or session unavailable"}`, w.Body.String())
}

func TestBookTicketInvalidSession(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodPost, "/book-ticket", map[string]any{
		"name":        "Ravi Patil",
		"email":       "ravi@example.com",
		"phone":       "9123456780",
		"sessionType": "midnight",
		"amount":      299,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid session type"}`, w.Body.String())
}

func TestAvailabilityReflectsBookings(t *testing.T) {
	caps := newMemCapacityStore()
	caps.rec.MorningSold = 10
	caps.rec.FulldaySold = 5
	r := newTestRouter(t, caps)

	w := doJSON(r, http.MethodGet, "/availability", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("ETag"))
	assert.Equal(t, "public, max-age=5", w.Header().Get("Cache-Control"))

	var av domain.Availability
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &av))
	assert.Equal(t, domain.DefaultTotalLimit-15, av.Fullday)
}

func TestGetTicketErrors(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore())

	w := doJSON(r, http.MethodGet, "/tickets/garbage", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Invalid ticket id"}`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/tickets/TEDX-99999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Ticket not found"}`, w.Body.String())
}

func TestCORSHonorsAllowList(t *testing.T) {
	r := newTestRouter(t, newMemCapacityStore(), "https://tickets.example.com")

	req := httptest.NewRequest(http.MethodGet, "/availability", nil)
	req.Header.Set("Origin", "https://tickets.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://tickets.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/availability", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
