package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/rabbitmq"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
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

	sender := email.NewSender(log)

	g, gctx := errgroup.WithContext(ctx)
	switch cfg.Events.Driver {
	case config.EventsDriverRabbitMQ:
		broker, err := rabbitmq.Dial(cfg.RabbitMQ.URL)
		if err != nil {
			log.Fatalf("connect rabbitmq: %v", err)
		}
		defer broker.Close()

		g.Go(func() error {
			return broker.Consume(gctx, cfg.RabbitMQ.NotificationQueue, sender.Handle)
		})
	default:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()

		g.Go(func() error {
			return consumer.Consume(gctx, sender.Handle)
		})
	}

	log.WithField("driver", cfg.Events.Driver).Info("notification worker started")
	if err := g.Wait(); err != nil {
		log.WithError(err).Error("consumer stopped")
		return
	}
	log.Info("notification worker stopped")
}
