package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/airreservation/api"
	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/bootstrap"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/seed"
	"github.com/Domenick1991/airreservation/internal/tracing"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := log.Init(cfg.Log.Level); err != nil {
		logrus.Fatalf("init logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.ConfigureTraceProvider(cfg.Tracing)
	if err != nil {
		logrus.Fatalf("configure tracing: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("shutdown tracer provider")
		}
	}()

	storage, err := bootstrap.NewStorage(ctx, cfg.Database)
	if err != nil {
		logrus.Fatalf("open storage: %v", err)
	}
	defer storage.Close()

	services := bootstrap.NewServices(ctx, cfg, storage)
	defer services.Close()

	if cfg.Database.SeedOnStart || cfg.Database.Driver == config.DriverMemory {
		if err := seed.NewSeeder(services.Flights, services.Passengers, services.Engine).Run(ctx); err != nil {
			logrus.Fatalf("seed: %v", err)
		}
	}

	router := api.NewRouter(services.Flights, services.Passengers, services.Engine, storage.Ping)
	if err := bootstrap.Run(ctx, cfg, router, storage.Ping); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
