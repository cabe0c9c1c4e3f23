package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tedxdyp/ticketd/internal/config"
	"github.com/tedxdyp/ticketd/internal/gateway"
	"github.com/tedxdyp/ticketd/internal/notify"
	"github.com/tedxdyp/ticketd/internal/postgres"
	redisx "github.com/tedxdyp/ticketd/internal/redis"
	"github.com/tedxdyp/ticketd/internal/renderer"
	postgresrepo "github.com/tedxdyp/ticketd/internal/repository/postgres"
	redisrepo "github.com/tedxdyp/ticketd/internal/repository/redis"
	"github.com/tedxdyp/ticketd/internal/service"
	httpgin "github.com/tedxdyp/ticketd/internal/transport/http/gin"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpServer *http.Server
	pubsub     *redisx.CapacityPubSub
	cache      *redisrepo.Cache
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Name,
		cfg.Postgres.SSLMode,
	)

	pgxPool, err := postgres.New(context.Background(), postgres.Config{DSN: dsn})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	rdb, err := redisx.New(context.Background(), redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	store := postgresrepo.NewStore(pgxPool, cfg.Booking.TotalLimit)
	if err := store.EnsureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	cache := redisrepo.New(rdb)
	pubsub := redisx.NewCapacityPubSub(rdb)
	limiter := redisrepo.NewSlidingWindowLimiter(rdb, "book", 10, 1*time.Minute)
	idem := redisrepo.NewIdempotencyStore(rdb, 2*time.Hour)

	// Downstream gateways; each degrades to a call-time failure when its
	// credentials are absent, the server itself always starts.
	orders := gateway.NewRazorpayGateway(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	mailer := gateway.NewEmailSender(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)
	sheets, err := gateway.NewSheetsLogger(context.Background(), cfg.Sheets.SpreadsheetID, cfg.Sheets.CredentialsFile)
	if err != nil {
		logger.Warn("sheets logger unavailable, sale rows will be skipped", "error", err)
		sheets = &gateway.SheetsLogger{}
	}

	dispatcher := notify.NewDispatcher(renderer.New(), mailer, sheets, logger)

	services := service.NewServices(store, cache, pubsub, dispatcher, cfg.Razorpay.KeySecret, logger)

	router := httpgin.NewRouter(services, orders, idem, limiter, cfg.Server.AllowedOrigins, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler: router,
		},
		pubsub: pubsub,
		cache:  cache,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("HTTP server listening", "host", a.cfg.Server.Host, "port", a.cfg.Server.Port)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	// Other instances invalidate our availability cache through pub/sub, so
	// a booking on one replica is visible everywhere within a tick.
	g.Go(func() error {
		err := a.pubsub.Subscribe(gCtx, func(ctx context.Context, session string) {
			if cacheErr := a.cache.InvalidateAvailability(ctx); cacheErr != nil {
				a.logger.Warn("availability invalidation failed", "session", session, "error", cacheErr)
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("capacity subscription failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.logger.Info("shutting down HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(ctx)
	})

	return g.Wait()
}
