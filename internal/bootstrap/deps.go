package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/cache"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/repository"
	"github.com/Domenick1991/airreservation/internal/repository/memory"
	"github.com/Domenick1991/airreservation/internal/service/audit"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/service/passengers"
)

// Storage is one backing store behind the repository interfaces.
type Storage struct {
	Txs          repository.TxBeginner
	Flights      repository.FlightRepository
	Passengers   repository.PassengerRepository
	Reservations repository.ReservationRepository
	Ping         func(ctx context.Context) error
	Close        func()
}

// NewStorage opens the store selected by cfg.Database.Driver. For postgres
// the schema is created if missing.
func NewStorage(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore(memory.WithLockTimeout(cfg.LockTimeout()))
		return &Storage{
			Txs:          store,
			Flights:      store.Flights(),
			Passengers:   store.Passengers(),
			Reservations: store.Reservations(),
			Ping:         func(context.Context) error { return nil },
			Close:        func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := repository.InitializeSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &Storage{
		Txs:          repository.NewTxManager(pool, cfg.LockTimeout()),
		Flights:      repository.NewFlightRepository(pool),
		Passengers:   repository.NewPassengerRepository(pool),
		Reservations: repository.NewReservationRepository(pool),
		Ping:         pool.Ping,
		Close:        pool.Close,
	}, nil
}

type Services struct {
	Flights    *flights.FlightService
	Passengers *passengers.PassengerService
	Engine     *booking.BookingService
	Audit      *audit.AuditService

	closers []func() error
}

func (s *Services) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// NewServices wires the services over storage. Redis and Kafka are optional;
// an empty address or broker list leaves them out.
func NewServices(ctx context.Context, cfg *config.Config, storage *Storage) *Services {
	s := &Services{}
	logger := log.FromContext(ctx)

	var (
		flightCache flights.FlightCache
		engineCache booking.Cache
		producer    booking.Producer
	)

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		redisCache := cache.NewRedisCache(client, cfg.Reservations.CacheTTL())
		flightCache, engineCache = redisCache, redisCache
		s.closers = append(s.closers, client.Close)
	} else {
		logger.Info("redis not configured, flights cache disabled")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		if err := kafkaProducer.CheckConnection(ctx); err != nil {
			logger.WithError(err).Warn("kafka unreachable at startup")
		}
		producer = kafkaProducer
		s.closers = append(s.closers, kafkaProducer.Close)
	} else {
		logger.Info("kafka not configured, reservation events disabled")
	}

	s.Flights = flights.NewFlightService(storage.Flights, flightCache)
	s.Passengers = passengers.NewPassengerService(storage.Passengers, storage.Reservations)
	s.Engine = booking.NewBookingService(
		storage.Txs,
		engineCache,
		producer,
		cfg.Kafka.ReservationTopic,
		cfg.Reservations.TxTimeout(),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	s.Audit = audit.NewAuditService(storage.Flights)
	return s
}
