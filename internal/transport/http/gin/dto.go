package httpgin

type CreateOrderRequest struct {
	Amount float64 `json:"amount"`
}

type CreateOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// VerifyPaymentRequest carries the gateway proof plus attendee details.
// No binding:required tags on purpose: field presence is validated in the
// checkout service so every absence maps to the same error message.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string  `json:"razorpay_order_id"`
	RazorpayPaymentID string  `json:"razorpay_payment_id"`
	RazorpaySignature string  `json:"razorpay_signature"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             string  `json:"phone"`
	Department        string  `json:"department"`
	Branch            string  `json:"branch"`
	Session           string  `json:"session"`
	Amount            float64 `json:"amount"`
}

type BookTicketRequest struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	Department  string  `json:"department"`
	Branch      string  `json:"branch"`
	SessionType string  `json:"sessionType"`
	Amount      float64 `json:"amount"`
}

type VerifyPaymentResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	TicketID string `json:"ticketId"`
}

type BookTicketResponse struct {
	Success bool `json:"success"`
	Ticket  any  `json:"ticket"`
	Counter any  `json:"counter"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// FailureResponse is the failure body of the booking endpoints. The
// payment and booking routes answer {success:false, message} while the
// order route and the catch-all answer {error}.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
