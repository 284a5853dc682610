package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository"
)

var errTxClosed = fmt.Errorf("%w: transaction already closed", domain.ErrStorage)

type tx struct {
	store  *Store
	closed bool
	held   map[chan struct{}]struct{}

	deltas  map[int64]int
	inserts []*domain.Reservation
	deletes []int64
}

func (t *tx) begin(ctx context.Context, op string) error {
	if t.closed {
		return errTxClosed
	}
	if err := ctx.Err(); err != nil {
		return ctxErr(err)
	}
	return t.store.injected(op)
}

func (t *tx) lock(ctx context.Context, locks map[int64]chan struct{}, id int64) error {
	t.store.mu.Lock()
	ch, ok := locks[id]
	t.store.mu.Unlock()
	if ok {
		if _, mine := t.held[ch]; mine {
			return nil
		}
	}

	ch, err := t.store.acquire(ctx, locks, id)
	if err != nil {
		return err
	}
	t.held[ch] = struct{}{}
	return nil
}

func (t *tx) LockFlight(ctx context.Context, flightID int64) (*domain.Flight, error) {
	if err := t.begin(ctx, OpLockFlight); err != nil {
		return nil, err
	}
	if !t.store.flightExists(flightID) {
		return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
	}
	if err := t.lock(ctx, t.store.flightLocks, flightID); err != nil {
		return nil, err
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	f, ok := t.store.flights[flightID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
	}
	out := *f
	out.AvailableSeats += t.deltas[flightID]
	return &out, nil
}

func (t *tx) DecrementAvailableSeats(ctx context.Context, flightID int64) error {
	if err := t.begin(ctx, OpDecrement); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	f, ok := t.store.flights[flightID]
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
	}
	if f.AvailableSeats+t.deltas[flightID] <= 0 {
		return &domain.ExhaustedError{FlightID: flightID}
	}
	t.deltas[flightID]--
	return nil
}

func (t *tx) IncrementAvailableSeats(ctx context.Context, flightID int64) error {
	if err := t.begin(ctx, OpIncrement); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	f, ok := t.store.flights[flightID]
	if !ok {
		return &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
	}
	if f.AvailableSeats+t.deltas[flightID] >= f.TotalSeats {
		return fmt.Errorf("%w: flight %d already at capacity", domain.ErrStorage, flightID)
	}
	t.deltas[flightID]++
	return nil
}

func (t *tx) InsertReservation(ctx context.Context, passengerID, flightID int64) (*domain.Reservation, error) {
	if err := t.begin(ctx, OpInsertReservation); err != nil {
		return nil, err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.store.passengers[passengerID]; !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityPassenger, ID: passengerID}
	}
	if _, ok := t.store.flights[flightID]; !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
	}

	t.store.nextReservationID++
	r := &domain.Reservation{
		ID:          t.store.nextReservationID,
		PassengerID: passengerID,
		FlightID:    flightID,
		CreatedAt:   time.Now().UTC(),
	}
	t.inserts = append(t.inserts, r)
	out := *r
	return &out, nil
}

func (t *tx) LockReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	if err := t.begin(ctx, OpLockReservation); err != nil {
		return nil, err
	}
	if !t.store.reservationExists(reservationID) {
		return nil, &domain.NotFoundError{Entity: domain.EntityReservation, ID: reservationID}
	}
	if err := t.lock(ctx, t.store.reservationLocks, reservationID); err != nil {
		return nil, err
	}

	// The previous holder may have deleted the row while we waited.
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	r, ok := t.store.reservations[reservationID]
	if !ok || t.deleted(reservationID) {
		return nil, &domain.NotFoundError{Entity: domain.EntityReservation, ID: reservationID}
	}
	out := *r
	return &out, nil
}

func (t *tx) DeleteReservation(ctx context.Context, reservationID int64) error {
	if err := t.begin(ctx, OpDeleteReservation); err != nil {
		return err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if _, ok := t.store.reservations[reservationID]; !ok || t.deleted(reservationID) {
		return &domain.NotFoundError{Entity: domain.EntityReservation, ID: reservationID}
	}
	t.deletes = append(t.deletes, reservationID)
	return nil
}

func (t *tx) deleted(reservationID int64) bool {
	for _, id := range t.deletes {
		if id == reservationID {
			return true
		}
	}
	return false
}

// Commit validates every staged write against the committed state and
// applies all of them or none.
func (t *tx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	if err := t.store.injected(OpCommit); err != nil {
		t.release()
		return err
	}
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for flightID, delta := range t.deltas {
		f, ok := s.flights[flightID]
		if !ok {
			return &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
		}
		if next := f.AvailableSeats + delta; next < 0 || next > f.TotalSeats {
			return fmt.Errorf("%w: flight %d available seats would be %d", domain.ErrStorage, flightID, next)
		}
	}
	for _, id := range t.deletes {
		if _, ok := s.reservations[id]; !ok {
			return &domain.NotFoundError{Entity: domain.EntityReservation, ID: id}
		}
	}

	now := time.Now().UTC()
	for flightID, delta := range t.deltas {
		if delta == 0 {
			continue
		}
		f := s.flights[flightID]
		f.AvailableSeats += delta
		f.UpdatedAt = now
	}
	for _, r := range t.inserts {
		s.reservations[r.ID] = r
	}
	for _, id := range t.deletes {
		delete(s.reservations, id)
		delete(s.reservationLocks, id)
	}
	return nil
}

// Rollback discards staged writes. It is a no-op on a closed transaction.
func (t *tx) Rollback(context.Context) error {
	if t.closed {
		return nil
	}
	t.release()
	return nil
}

func (t *tx) release() {
	t.closed = true
	t.deltas = nil
	t.inserts = nil
	for ch := range t.held {
		<-ch
	}
	t.held = nil
}

var _ repository.Tx = (*tx)(nil)
