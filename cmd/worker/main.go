package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/notify"
	"github.com/Domenick1991/airreservation/internal/service/audit"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Errorf("load config: %v", err)
		return 1
	}
	if err := log.Init(cfg.Log.Level); err != nil {
		logrus.Errorf("init logging: %v", err)
		return 1
	}
	if err := checkDriver(cfg.Database); err != nil {
		logrus.Error(err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage, err := bootstrap.NewStorage(ctx, cfg.Database)
	if err != nil {
		logrus.Errorf("open storage: %v", err)
		return 1
	}
	defer storage.Close()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runAudit(ctx, audit.NewAuditService(storage.Flights), cfg.Worker.AuditInterval())
		return nil
	})

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer func() {
			if err := consumer.Close(); err != nil {
				logrus.WithError(err).Warn("close kafka consumer")
			}
		}()
		sender := notify.NewSender(storage.Passengers)

		g.Go(func() error {
			return consumer.Consume(ctx, sender.Send)
		})
	} else {
		logrus.Info("kafka not configured, notifications consumer disabled")
	}

	if err := g.Wait(); err != nil {
		logrus.Errorf("worker stopped: %v", err)
		return 1
	}
	logrus.Info("worker stopped")
	return 0
}

// checkDriver rejects the in-memory store: it lives inside the API process, so
// a worker would only ever see its own empty copy.
func checkDriver(cfg config.DatabaseConfig) error {
	if cfg.Driver == config.DriverMemory {
		return errors.New("worker needs a shared database, database.driver memory is only usable by the API process")
	}
	return nil
}

func runAudit(ctx context.Context, auditor *audit.AuditService, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := auditor.Run(ctx); err != nil {
			log.FromContext(ctx).WithError(err).Error("inventory audit failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
