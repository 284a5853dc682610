package booking

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/metrics"
	"github.com/Domenick1991/airreservation/internal/repository"
)

const (
	opBookSeat          = "book_seat"
	opCancelReservation = "cancel_reservation"
)

// ReservationEngine books and cancels seats. Every call runs in exactly one
// storage transaction that ends committed or rolled back before returning.
type ReservationEngine interface {
	BookSeat(ctx context.Context, passengerID, flightID int64) (*domain.Reservation, error)
	CancelReservation(ctx context.Context, reservationID int64) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BookingService struct {
	txs                repository.TxBeginner
	cache              Cache
	producer           Producer
	reservationTopic   string
	notificationsTopic string
	txTimeout          time.Duration
	tracer             trace.Tracer
	observe            func(operation string, state domain.TxState)
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithStateObserver registers a callback for every transaction state change.
func WithStateObserver(f func(operation string, state domain.TxState)) BookingServiceOption {
	return func(s *BookingService) {
		s.observe = f
	}
}

// NewBookingService builds the engine. cache and producer may be nil.
func NewBookingService(
	txs repository.TxBeginner,
	cache Cache,
	producer Producer,
	reservationTopic string,
	txTimeout time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		txs:              txs,
		cache:            cache,
		producer:         producer,
		reservationTopic: reservationTopic,
		txTimeout:        txTimeout,
		tracer:           otel.Tracer("github.com/Domenick1991/airreservation/internal/service/booking"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// BookSeat locks the flight row, checks for a free seat, decrements the
// counter and inserts the reservation.
func (s *BookingService) BookSeat(ctx context.Context, passengerID, flightID int64) (*domain.Reservation, error) {
	ctx = log.ToContext(ctx, log.FromContext(ctx).WithFields(logrus.Fields{
		"passenger_id": passengerID,
		"flight_id":    flightID,
	}))

	var reservation *domain.Reservation
	err := s.inTx(ctx, opBookSeat, func(ctx context.Context, tx repository.Tx) error {
		flight, err := tx.LockFlight(ctx, flightID)
		if err != nil {
			return err
		}
		if flight.AvailableSeats <= 0 {
			return &domain.ExhaustedError{FlightID: flightID}
		}
		if err := tx.DecrementAvailableSeats(ctx, flightID); err != nil {
			return err
		}
		reservation, err = tx.InsertReservation(ctx, passengerID, flightID)
		return err
	}, attribute.Int64("passenger.id", passengerID), attribute.Int64("flight.id", flightID))
	if err != nil {
		return nil, fmt.Errorf("book seat: %w", err)
	}

	s.afterCommit(ctx, kafka.EventReservationBooked, reservation)
	return reservation, nil
}

// CancelReservation locks the reservation row, deletes it, then locks the
// owning flight row and gives the seat back. Locks are always taken in that
// order.
func (s *BookingService) CancelReservation(ctx context.Context, reservationID int64) error {
	ctx = log.ToContext(ctx, log.FromContext(ctx).WithField("reservation_id", reservationID))

	var cancelled *domain.Reservation
	err := s.inTx(ctx, opCancelReservation, func(ctx context.Context, tx repository.Tx) error {
		r, err := tx.LockReservation(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, reservationID); err != nil {
			return err
		}
		if _, err := tx.LockFlight(ctx, r.FlightID); err != nil {
			return err
		}
		if err := tx.IncrementAvailableSeats(ctx, r.FlightID); err != nil {
			return err
		}
		cancelled = r
		return nil
	}, attribute.Int64("reservation.id", reservationID))
	if err != nil {
		return fmt.Errorf("cancel reservation: %w", err)
	}

	s.afterCommit(ctx, kafka.EventReservationCancelled, cancelled)
	return nil
}

// inTx drives one transaction from Idle to a terminal state. A panic inside
// fn rolls back before it is re-raised.
func (s *BookingService) inTx(ctx context.Context, operation string, fn func(context.Context, repository.Tx) error, attrs ...attribute.KeyValue) (err error) {
	ctx, span := s.tracer.Start(ctx, "booking."+operation, trace.WithAttributes(attrs...))
	started := time.Now()
	defer func() {
		metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.Failures.WithLabelValues(operation, Reason(err)).Inc()
			log.FromContext(ctx).WithError(err).WithField("operation", operation).WithField("reason", Reason(err)).Warn("transaction failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.txTimeout)
		defer cancel()
	}

	s.transition(ctx, operation, domain.TxIdle)
	tx, err := s.txs.Begin(ctx)
	if err != nil {
		return normalize(err)
	}
	s.transition(ctx, operation, domain.TxStarted)

	defer func() {
		if r := recover(); r != nil {
			s.rollback(ctx, tx, operation)
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		s.rollback(ctx, tx, operation)
		return normalize(err)
	}

	if err := tx.Commit(ctx); err != nil {
		s.rollback(ctx, tx, operation)
		return normalize(err)
	}
	s.transition(ctx, operation, domain.TxCommitted)
	return nil
}

// rollback runs even when the caller has gone away so the row locks are
// released before the call returns.
func (s *BookingService) rollback(ctx context.Context, tx repository.Tx, operation string) {
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil {
		log.FromContext(ctx).WithError(err).WithField("operation", operation).Error("rollback failed")
	}
	s.transition(ctx, operation, domain.TxRolledBack)
}

func (s *BookingService) transition(ctx context.Context, operation string, state domain.TxState) {
	if state.Terminal() {
		metrics.Transactions.WithLabelValues(operation, string(state)).Inc()
	}
	log.FromContext(ctx).WithField("operation", operation).WithField("tx_state", state).Debug("transaction state")
	if s.observe != nil {
		s.observe(operation, state)
	}
}

// afterCommit publishes the event and drops cached listings. Failures are
// logged; the reservation change is already durable.
func (s *BookingService) afterCommit(ctx context.Context, eventType string, r *domain.Reservation) {
	logger := log.FromContext(ctx)

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			logger.WithError(err).Warn("failed to invalidate flights cache")
		}
	}

	if s.producer == nil || s.reservationTopic == "" {
		return
	}
	event := kafka.NewReservationEvent(eventType, r.ID, r.PassengerID, r.FlightID)
	key := strconv.FormatInt(r.FlightID, 10)
	if err := s.producer.Publish(ctx, s.reservationTopic, key, event); err != nil {
		logger.WithError(err).WithField("event_type", eventType).Warn("failed to publish reservation event")
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			logger.WithError(err).WithField("event_type", eventType).Warn("failed to publish notification")
		}
	}
}

// normalize folds anything outside the domain taxonomy into ErrStorage.
// Caller cancellation is passed through unchanged.
func normalize(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrExhausted),
		errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrStorage),
		errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}

// Reason is a short label for the error kind.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrExhausted):
		return "exhausted"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "storage"
	}
}

var _ ReservationEngine = (*BookingService)(nil)
