package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type PGTxManager struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxManager returns a TxBeginner whose transactions give up waiting on a
// row lock after lockTimeout.
func NewTxManager(db *pgxpool.Pool, lockTimeout time.Duration) *PGTxManager {
	return &PGTxManager{db: db, lockTimeout: lockTimeout}
}

func (m *PGTxManager) Begin(ctx context.Context) (Tx, error) {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, classifyErr(err)
	}

	if m.lockTimeout > 0 {
		timeout := fmt.Sprintf("%dms", m.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, timeout); err != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			return nil, classifyErr(err)
		}
	}

	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockFlight(ctx context.Context, flightID int64) (*domain.Flight, error) {
	row := t.tx.QueryRow(ctx, `SELECT id, number, departure, destination, total_seats, available_seats, created_at, updated_at
		FROM flights WHERE id=$1 FOR UPDATE`, flightID)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Number, &f.Departure, &f.Destination, &f.TotalSeats, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: flightID}
		}
		return nil, classifyErr(err)
	}
	return &f, nil
}

func (t *pgTx) DecrementAvailableSeats(ctx context.Context, flightID int64) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now()
		WHERE id=$1 AND available_seats > 0`, flightID)
	if err != nil {
		return classifyErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.ExhaustedError{FlightID: flightID}
	}
	return nil
}

func (t *pgTx) IncrementAvailableSeats(ctx context.Context, flightID int64) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1, updated_at = now()
		WHERE id=$1 AND available_seats < total_seats`, flightID)
	if err != nil {
		return classifyErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: flight %d already at capacity", domain.ErrStorage, flightID)
	}
	return nil
}

func (t *pgTx) InsertReservation(ctx context.Context, passengerID, flightID int64) (*domain.Reservation, error) {
	r := domain.Reservation{PassengerID: passengerID, FlightID: flightID}
	if err := t.tx.QueryRow(ctx, `INSERT INTO reservations (passenger_id, flight_id) VALUES ($1, $2)
		RETURNING id, created_at`, passengerID, flightID).Scan(&r.ID, &r.CreatedAt); err != nil {
		err = classifyErr(err)
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			switch nf.Entity {
			case domain.EntityPassenger:
				nf.ID = passengerID
			case domain.EntityFlight:
				nf.ID = flightID
			}
		}
		return nil, err
	}
	return &r, nil
}

func (t *pgTx) LockReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error) {
	row := t.tx.QueryRow(ctx, `SELECT id, passenger_id, flight_id, created_at FROM reservations WHERE id=$1 FOR UPDATE`, reservationID)
	var r domain.Reservation
	if err := row.Scan(&r.ID, &r.PassengerID, &r.FlightID, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityReservation, ID: reservationID}
		}
		return nil, classifyErr(err)
	}
	return &r, nil
}

func (t *pgTx) DeleteReservation(ctx context.Context, reservationID int64) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM reservations WHERE id=$1`, reservationID)
	if err != nil {
		return classifyErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return &domain.NotFoundError{Entity: domain.EntityReservation, ID: reservationID}
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	return classifyErr(t.tx.Commit(ctx))
}

// Rollback is safe to call after Commit; it is then a no-op.
func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return classifyErr(err)
}

var _ TxBeginner = (*PGTxManager)(nil)
