package repository

import (
	"context"
	"iter"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type PGReservationRepository struct {
	db *pgxpool.Pool
}

func NewReservationRepository(db *pgxpool.Pool) ReservationRepository {
	return &PGReservationRepository{db: db}
}

func (r *PGReservationRepository) ListForPassenger(ctx context.Context, passengerID int64) iter.Seq2[domain.ReservationSummary, error] {
	return func(yield func(domain.ReservationSummary, error) bool) {
		rows, err := r.db.Query(ctx, `SELECT r.id, f.number, f.departure, f.destination
			FROM reservations r
			JOIN flights f ON f.id = r.flight_id
			WHERE r.passenger_id = $1
			ORDER BY r.id`, passengerID)
		if err != nil {
			yield(domain.ReservationSummary{}, classifyErr(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var s domain.ReservationSummary
			if err := rows.Scan(&s.ReservationID, &s.FlightNumber, &s.Departure, &s.Destination); err != nil {
				yield(domain.ReservationSummary{}, classifyErr(err))
				return
			}
			if !yield(s, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.ReservationSummary{}, classifyErr(err))
		}
	}
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
