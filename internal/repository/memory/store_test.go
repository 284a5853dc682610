package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Domenick1991/airreservation/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seedStore(t *testing.T, seats int, opts ...Option) (*Store, *domain.Flight, *domain.Passenger) {
	t.Helper()
	ctx := context.Background()
	s := NewStore(opts...)
	f := &domain.Flight{Number: "F101", Departure: "New York", Destination: "London", TotalSeats: seats}
	require.NoError(t, s.Flights().Create(ctx, f))
	p := &domain.Passenger{FirstName: "John", LastName: "Doe", PassportNumber: "A123"}
	require.NoError(t, s.Passengers().Create(ctx, p))
	return s, f, p
}

func book(t *testing.T, s *Store, passengerID, flightID int64) *domain.Reservation {
	t.Helper()
	ctx := context.Background()
	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.LockFlight(ctx, flightID)
	require.NoError(t, err)
	require.NoError(t, tx.DecrementAvailableSeats(ctx, flightID))
	r, err := tx.InsertReservation(ctx, passengerID, flightID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	return r
}

func TestStore_CommitAppliesStagedWrites(t *testing.T) {
	s, f, p := seedStore(t, 2)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	locked, err := tx.LockFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, locked.AvailableSeats)
	require.NoError(t, tx.DecrementAvailableSeats(ctx, f.ID))
	r, err := tx.InsertReservation(ctx, p.ID, f.ID)
	require.NoError(t, err)

	// Staged writes are visible to the transaction only.
	again, err := tx.LockFlight(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.AvailableSeats)
	committed, err := s.Flights().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, committed.AvailableSeats)

	require.NoError(t, tx.Commit(ctx))

	committed, err = s.Flights().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, committed.AvailableSeats)

	var ids []int64
	for sum, err := range s.Reservations().ListForPassenger(ctx, p.ID) {
		require.NoError(t, err)
		ids = append(ids, sum.ReservationID)
		assert.Equal(t, "F101", sum.FlightNumber)
	}
	assert.Equal(t, []int64{r.ID}, ids)
}

func TestStore_RollbackDiscardsStagedWrites(t *testing.T) {
	s, f, p := seedStore(t, 1)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.LockFlight(ctx, f.ID)
	require.NoError(t, err)
	require.NoError(t, tx.DecrementAvailableSeats(ctx, f.ID))
	_, err = tx.InsertReservation(ctx, p.ID, f.ID)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))
	require.NoError(t, tx.Rollback(ctx))

	got, err := s.Flights().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSeats)

	audits, err := s.Flights().Audit(ctx)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Zero(t, audits[0].Reservations)

	// The lock was released.
	book(t, s, p.ID, f.ID)
}

func TestStore_ClosedTransaction(t *testing.T) {
	s, f, _ := seedStore(t, 1)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	_, err = tx.LockFlight(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, tx.Commit(ctx), domain.ErrStorage)
	assert.NoError(t, tx.Rollback(ctx))
}

func TestStore_DecrementAtZeroIsExhausted(t *testing.T) {
	s, f, _ := seedStore(t, 1)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, tx.DecrementAvailableSeats(ctx, f.ID))
	assert.ErrorIs(t, tx.DecrementAvailableSeats(ctx, f.ID), domain.ErrExhausted)
}

func TestStore_IncrementAtCapacityIsStorageFailure(t *testing.T) {
	s, f, _ := seedStore(t, 1)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	assert.ErrorIs(t, tx.IncrementAvailableSeats(ctx, f.ID), domain.ErrStorage)
}

func TestStore_LockTimeoutIsBusy(t *testing.T) {
	s, f, _ := seedStore(t, 1, WithLockTimeout(20*time.Millisecond))
	ctx := context.Background()

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = holder.LockFlight(ctx, f.ID)
	require.NoError(t, err)

	waiter, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = waiter.LockFlight(ctx, f.ID)
	assert.ErrorIs(t, err, domain.ErrBusy)
	require.NoError(t, waiter.Rollback(ctx))

	require.NoError(t, holder.Rollback(ctx))
}

func TestStore_LockWaitHonorsContext(t *testing.T) {
	s, f, _ := seedStore(t, 1)
	ctx := context.Background()

	holder, err := s.Begin(ctx)
	require.NoError(t, err)
	defer holder.Rollback(ctx)
	_, err = holder.LockFlight(ctx, f.ID)
	require.NoError(t, err)

	t.Run("deadline", func(t *testing.T) {
		waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		waiter, err := s.Begin(ctx)
		require.NoError(t, err)
		defer waiter.Rollback(ctx)

		_, err = waiter.LockFlight(waitCtx, f.ID)
		assert.ErrorIs(t, err, domain.ErrBusy)
	})

	t.Run("cancel", func(t *testing.T) {
		waitCtx, cancel := context.WithCancel(ctx)
		waiter, err := s.Begin(ctx)
		require.NoError(t, err)
		defer waiter.Rollback(ctx)

		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		_, err = waiter.LockFlight(waitCtx, f.ID)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, domain.ErrBusy)
	})
}

func TestStore_WaiterSeesDeletedReservation(t *testing.T) {
	s, f, p := seedStore(t, 1)
	r := book(t, s, p.ID, f.ID)
	ctx := context.Background()

	first, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = first.LockReservation(ctx, r.ID)
	require.NoError(t, err)
	require.NoError(t, first.DeleteReservation(ctx, r.ID))

	second, err := s.Begin(ctx)
	require.NoError(t, err)
	defer second.Rollback(ctx)

	result := make(chan error, 1)
	go func() {
		_, err := second.LockReservation(ctx, r.ID)
		result <- err
	}()

	time.Sleep(10 * time.Millisecond)
	_, err = first.LockFlight(ctx, f.ID)
	require.NoError(t, err)
	require.NoError(t, first.IncrementAvailableSeats(ctx, f.ID))
	require.NoError(t, first.Commit(ctx))

	err = <-result
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_InsertReservationChecksReferences(t *testing.T) {
	s, f, p := seedStore(t, 1)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	_, err = tx.InsertReservation(ctx, p.ID+10, f.ID)
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.EntityPassenger, nf.Entity)

	_, err = tx.InsertReservation(ctx, p.ID, f.ID+10)
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, domain.EntityFlight, nf.Entity)
}

func TestStore_FaultInjection(t *testing.T) {
	boom := errors.New("disk on fire")
	s, f, p := seedStore(t, 1, WithFaultInjector(func(op string) error {
		if op == OpCommit {
			return boom
		}
		return nil
	}))
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.LockFlight(ctx, f.ID)
	require.NoError(t, err)
	require.NoError(t, tx.DecrementAvailableSeats(ctx, f.ID))
	_, err = tx.InsertReservation(ctx, p.ID, f.ID)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.Commit(ctx), boom)

	got, err := s.Flights().GetByID(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableSeats)
}

func TestStore_UniqueConstraints(t *testing.T) {
	s, _, _ := seedStore(t, 1)
	ctx := context.Background()

	err := s.Flights().Create(ctx, &domain.Flight{Number: "F101", Departure: "A", Destination: "B", TotalSeats: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	err = s.Passengers().Create(ctx, &domain.Passenger{FirstName: "J", LastName: "D", PassportNumber: "A123"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestStore_ListIsRestartable(t *testing.T) {
	s, _, _ := seedStore(t, 1)
	ctx := context.Background()
	seq := s.Flights().List(ctx)

	count := func() int {
		n := 0
		for _, err := range seq {
			require.NoError(t, err)
			n++
		}
		return n
	}

	assert.Equal(t, 1, count())
	require.NoError(t, s.Flights().Create(ctx, &domain.Flight{Number: "F102", Departure: "Paris", Destination: "Berlin", TotalSeats: 150}))
	assert.Equal(t, 2, count())
}
