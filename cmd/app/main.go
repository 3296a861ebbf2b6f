package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/inventory"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/rabbitmq"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/repository/migrations"
	"github.com/Domenick1991/flightbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.CacheTTL(), cfg.Flights.CacheTTL())

	bus, err := newEventBus(cfg, log)
	if err != nil {
		log.Fatalf("connect event bus: %v", err)
	}
	defer bus.close()

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		inventory.NewClient(cfg.Inventory.BaseURL, cfg.Inventory.Timeout()),
		booking.Config{
			PNRLength:          cfg.Booking.PNRLength,
			CancellationWindow: cfg.Booking.CancellationWindow(),
			Location:           cfg.Booking.Location(),
			RequestTimeout:     cfg.Booking.RequestTimeout(),
		},
		booking.WithCache(redisCache),
		booking.WithProducer(bus.producer, bus.eventsTopic),
		booking.WithNotificationsTopic(bus.notificationsTopic),
		booking.WithLogger(log),
	)

	register := func(r *gin.Engine) {
		api.NewBookingHandler(bookingService).Register(r.Group("/booking"))
	}
	checks := []bootstrap.HealthCheck{pool.Ping, redisCache.Ping}
	if bus.check != nil {
		checks = append(checks, bus.check)
	}
	if err := bootstrap.Run(ctx, cfg, log, register, checks...); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

type eventBus struct {
	producer           booking.Producer
	eventsTopic        string
	notificationsTopic string
	close              func()
	check              bootstrap.HealthCheck
}

// newEventBus connects the broker selected by events.driver.
func newEventBus(cfg *config.Config, log *logrus.Logger) (*eventBus, error) {
	if cfg.Events.Driver == config.EventsDriverRabbitMQ {
		broker, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			return nil, err
		}
		return &eventBus{
			producer:           broker,
			eventsTopic:        cfg.RabbitMQ.EventsQueue,
			notificationsTopic: cfg.RabbitMQ.NotificationQueue,
			close:              func() { _ = broker.Close() },
		}, nil
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	return &eventBus{
		producer:           producer,
		eventsTopic:        cfg.Kafka.BookingEventsTopic,
		notificationsTopic: cfg.Kafka.NotificationsTopic,
		close:              func() { _ = producer.Close() },
		check:              producer.CheckConnection,
	}, nil
}
