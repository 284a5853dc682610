package repository

import (
	"context"
	"iter"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// Tx is one storage transaction. Lock* methods take an exclusive row lock held
// until Commit or Rollback. Callers that need both locks must take the
// reservation row before the flight row.
type Tx interface {
	LockFlight(ctx context.Context, flightID int64) (*domain.Flight, error)
	DecrementAvailableSeats(ctx context.Context, flightID int64) error
	IncrementAvailableSeats(ctx context.Context, flightID int64) error
	InsertReservation(ctx context.Context, passengerID, flightID int64) (*domain.Reservation, error)
	LockReservation(ctx context.Context, reservationID int64) (*domain.Reservation, error)
	DeleteReservation(ctx context.Context, reservationID int64) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	List(ctx context.Context) iter.Seq2[domain.FlightSummary, error]
	Audit(ctx context.Context) ([]domain.InventoryAudit, error)
}

type PassengerRepository interface {
	Create(ctx context.Context, passenger *domain.Passenger) error
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
}

type ReservationRepository interface {
	ListForPassenger(ctx context.Context, passengerID int64) iter.Seq2[domain.ReservationSummary, error]
}
