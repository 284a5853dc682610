// Package memory is an in-process implementation of the repository
// interfaces. Row locks are per-row channel semaphores and transactional
// writes are staged until Commit, so it keeps the same atomicity and
// no-oversell guarantees as the Postgres store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository"
)

// Operation names passed to a FaultInjector.
const (
	OpLockFlight        = "lock_flight"
	OpDecrement         = "decrement"
	OpInsertReservation = "insert_reservation"
	OpLockReservation   = "lock_reservation"
	OpDeleteReservation = "delete_reservation"
	OpIncrement         = "increment"
	OpCommit            = "commit"
)

// FaultInjector is consulted before each transactional operation; a non-nil
// result is returned from that operation unchanged.
type FaultInjector func(op string) error

type Option func(*Store)

func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.lockTimeout = d
	}
}

func WithFaultInjector(f FaultInjector) Option {
	return func(s *Store) {
		s.fault = f
	}
}

type Store struct {
	mu sync.Mutex

	flights      map[int64]*domain.Flight
	passengers   map[int64]*domain.Passenger
	reservations map[int64]*domain.Reservation

	nextFlightID      int64
	nextPassengerID   int64
	nextReservationID int64

	flightLocks      map[int64]chan struct{}
	reservationLocks map[int64]chan struct{}

	lockTimeout time.Duration
	fault       FaultInjector
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		flights:          make(map[int64]*domain.Flight),
		passengers:       make(map[int64]*domain.Passenger),
		reservations:     make(map[int64]*domain.Reservation),
		flightLocks:      make(map[int64]chan struct{}),
		reservationLocks: make(map[int64]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Flights() repository.FlightRepository {
	return &flightRepository{store: s}
}

func (s *Store) Passengers() repository.PassengerRepository {
	return &passengerRepository{store: s}
}

func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepository{store: s}
}

func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxErr(err)
	}
	return &tx{
		store:  s,
		held:   make(map[chan struct{}]struct{}),
		deltas: make(map[int64]int),
	}, nil
}

func (s *Store) injected(op string) error {
	if s.fault == nil {
		return nil
	}
	return s.fault(op)
}

// acquire blocks until the row lock is free, the lock timeout elapses or ctx
// is done.
func (s *Store) acquire(ctx context.Context, locks map[int64]chan struct{}, id int64) (chan struct{}, error) {
	s.mu.Lock()
	ch, ok := locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		locks[id] = ch
	}
	s.mu.Unlock()

	var timeout <-chan time.Time
	if s.lockTimeout > 0 {
		timer := time.NewTimer(s.lockTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case ch <- struct{}{}:
		return ch, nil
	case <-timeout:
		return nil, fmt.Errorf("%w: lock wait exceeded %s", domain.ErrBusy, s.lockTimeout)
	case <-ctx.Done():
		return nil, ctxErr(ctx.Err())
	}
}

// ctxErr treats an expired deadline as contention and passes cancellation
// through.
func ctxErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrBusy, err)
	}
	return err
}

var _ repository.TxBeginner = (*Store)(nil)
