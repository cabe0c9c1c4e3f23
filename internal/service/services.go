package service

import (
	"log/slog"

	redisx "github.com/tedxdyp/ticketd/internal/redis"
	postgresrepo "github.com/tedxdyp/ticketd/internal/repository/postgres"
	redisrepo "github.com/tedxdyp/ticketd/internal/repository/redis"
	"github.com/tedxdyp/ticketd/internal/service/booking"
	"github.com/tedxdyp/ticketd/internal/service/checkout"
	"github.com/tedxdyp/ticketd/internal/service/ledger"
)

type Services struct {
	Booking  *booking.Service
	Ledger   *ledger.Service
	Checkout *checkout.Service
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisx.CapacityPubSub,
	notifier checkout.Notifier,
	razorpaySecret string,
	logger *slog.Logger,
) *Services {
	b := booking.New(store.Capacity(), cache, pubsub)
	l := ledger.New(store.Tickets())

	return &Services{
		Booking:  b,
		Ledger:   l,
		Checkout: checkout.New(b, l, notifier, razorpaySecret, logger),
	}
}
