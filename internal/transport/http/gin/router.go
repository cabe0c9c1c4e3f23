package httpgin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tedxdyp/ticketd/internal/domain"
	"github.com/tedxdyp/ticketd/internal/gateway"
	redisx "github.com/tedxdyp/ticketd/internal/redis"
	redisrepo "github.com/tedxdyp/ticketd/internal/repository/redis"
	"github.com/tedxdyp/ticketd/internal/service"
	"github.com/tedxdyp/ticketd/internal/service/booking"
	"github.com/tedxdyp/ticketd/internal/service/checkout"
	"github.com/tedxdyp/ticketd/internal/service/ledger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	orders *gateway.RazorpayGateway,
	idem *redisrepo.IdempotencyStore,
	limiter *redisrepo.SlidingWindowLimiter,
	allowedOrigins []string,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS(allowedOrigins))
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Server is running!"})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})

	r.POST("/create-order", handleCreateOrder(orders))
	r.POST("/verify-payment", handleVerifyPayment(svcs, idem))
	r.POST("/book-ticket", handleBookTicket(svcs, limiter))

	r.GET("/availability", handleGetAvailability(svcs))
	r.GET("/tickets", handleListTickets(svcs))
	r.GET("/tickets/:id", handleGetTicket(svcs))

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Create a payment order
// @Param    req body  CreateOrderRequest true "payload"
// @Success  200 {object} CreateOrderResponse
// @Failure  400 {object} ErrorResponse
// @Router   /create-order [post]
func handleCreateOrder(orders *gateway.RazorpayGateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Amount is required"})
			return
		}

		order, err := orders.CreateOrder(c.Request.Context(), req.Amount)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create order"})
			return
		}

		c.JSON(http.StatusOK, CreateOrderResponse{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: "INR",
		})
	}
}

// @Summary  Verify payment and issue a ticket (idempotent)
// @Param    Idempotency-Key header string false "defaults to the payment id"
// @Param    req body  VerifyPaymentRequest true "payload"
// @Success  200 {object} VerifyPaymentResponse
// @Failure  400 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "idempotency key in progress"
// @Router   /verify-payment [post]
func handleVerifyPayment(svcs *service.Services, idem *redisrepo.IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, FailureResponse{Message: "Missing required fields"})
			return
		}

		// A retried webhook or double-clicked client replays the stored
		// result instead of burning a second seat.
		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		if idemKey == "" {
			idemKey = req.RazorpayPaymentID
		}

		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisx.KeyIdemCheckout(idemKey)

			if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
				replayStored(c, payload)
				return
			}

			locked, err := idem.AcquireLock(c.Request.Context(), idemStorageKey, 60*time.Second)
			if err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusInternalServerError, FailureResponse{Message: "Failed to verify payment or book ticket"})
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(c.Request.Context(), idemStorageKey); ok {
					replayStored(c, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, FailureResponse{Message: "Payment verification already in progress"})
				return
			}
		}

		t, err := svcs.Checkout.Checkout(c.Request.Context(), checkout.Request{
			Attendee: domain.Attendee{
				Name:       req.Name,
				Email:      req.Email,
				Phone:      req.Phone,
				Department: req.Department,
				Branch:     req.Branch,
			},
			SessionRaw: req.Session,
			Amount:     req.Amount,
			Proof: domain.PaymentProof{
				OrderID:   req.RazorpayOrderID,
				PaymentID: req.RazorpayPaymentID,
				Signature: req.RazorpaySignature,
			},
		})
		if err != nil {
			if idemStorageKey != "" && idem != nil {
				_ = idem.Release(c.Request.Context(), idemStorageKey)
			}
			respondFail(c, err, "Failed to verify payment or book ticket")
			return
		}

		resp := VerifyPaymentResponse{
			Success:  true,
			Message:  "Payment verified, ticket stored, and email sent successfully",
			TicketID: t.TicketID,
		}

		if idemStorageKey != "" && idem != nil {
			b, _ := json.Marshal(resp)
			_ = idem.SaveResult(c.Request.Context(), idemStorageKey, string(b))
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Book a ticket without a payment gate
// @Param    req body  BookTicketRequest true "payload"
// @Success  200 {object} BookTicketResponse
// @Failure  400 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /book-ticket [post]
func handleBookTicket(svcs *service.Services, limiter *redisrepo.SlidingWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter != nil {
			allowed, _, retryAfter, err := limiter.Allow(c.Request.Context(), "ip:"+c.ClientIP())
			if err == nil && !allowed {
				c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
				c.JSON(http.StatusTooManyRequests, FailureResponse{Message: "Too many booking attempts"})
				return
			}
		}

		var req BookTicketRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, FailureResponse{Message: "Missing required fields"})
			return
		}

		t, err := svcs.Checkout.Book(c.Request.Context(), domain.Attendee{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Department: req.Department,
			Branch:     req.Branch,
		}, req.SessionType, req.Amount)
		if err != nil {
			respondFail(c, err, "Failed to book ticket")
			return
		}

		counter, err := svcs.Booking.Availability(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			counter = nil
		}

		c.JSON(http.StatusOK, BookTicketResponse{
			Success: true,
			Ticket:  t,
			Counter: counter,
		})
	}
}

// @Summary  Remaining seats per session
// @Success  200 {object} domain.Availability
// @Router   /availability [get]
func handleGetAvailability(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		av, err := svcs.Booking.Availability(c.Request.Context())
		if err != nil {
			respondErr(c, err, "Failed to load availability")
			return
		}

		writeJSONWithCache(c, http.StatusOK, av, "public, max-age=5")
	}
}

// @Summary  List issued tickets
// @Success  200 {array} domain.Ticket
// @Router   /tickets [get]
func handleListTickets(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tickets, err := svcs.Ledger.List(c.Request.Context())
		if err != nil {
			respondErr(c, err, "Failed to list tickets")
			return
		}

		c.JSON(http.StatusOK, tickets)
	}
}

// @Summary  Get one ticket
// @Param    id  path  string  true  "Ticket ID"
// @Success  200 {object} domain.Ticket
// @Failure  404 {object} ErrorResponse
// @Router   /tickets/{id} [get]
func handleGetTicket(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := svcs.Ledger.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err, "Failed to load ticket")
			return
		}

		c.JSON(http.StatusOK, t)
	}
}

// --- Helpers ---

func replayStored(c *gin.Context, payload string) {
	c.Header("X-Idempotent-Replay", "true")
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(payload))
}

// respondFail answers a failed booking mutation with the
// {success:false, message} body the payment and booking routes promise.
func respondFail(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, checkout.ErrMissingFields):
		c.JSON(http.StatusBadRequest, FailureResponse{Message: "Missing required fields"})
	case errors.Is(err, checkout.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, FailureResponse{Message: "Invalid payment signature"})
	case errors.Is(err, booking.ErrInvalidSession):
		c.JSON(http.StatusBadRequest, FailureResponse{Message: "Invalid session type"})
	case errors.Is(err, booking.ErrSoldOut):
		c.JSON(http.StatusBadRequest, FailureResponse{Message: "Tickets sold out or session unavailable"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, FailureResponse{Message: fallback})
	}
}

// respondErr answers failed reads with the plain {error} body.
func respondErr(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ledger.ErrInvalidID):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid ticket id"})
	case errors.Is(err, ledger.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Ticket not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
	}
}
