package repository

import (
	"context"
	"errors"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

// Create inserts a flight with every seat available.
func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	flight.AvailableSeats = flight.TotalSeats
	if err := r.db.QueryRow(ctx, `INSERT INTO flights (number, departure, destination, total_seats, available_seats)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at`, flight.Number, flight.Departure, flight.Destination, flight.TotalSeats).
		Scan(&flight.ID, &flight.CreatedAt, &flight.UpdatedAt); err != nil {
		return classifyErr(err)
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT id, number, departure, destination, total_seats, available_seats, created_at, updated_at FROM flights WHERE id=$1`, id)
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.Number, &f.Departure, &f.Destination, &f.TotalSeats, &f.AvailableSeats, &f.CreatedAt, &f.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: id}
		}
		return nil, classifyErr(err)
	}
	return &f, nil
}

// List streams flight summaries. Every range over the result runs a fresh query.
func (r *PGFlightRepository) List(ctx context.Context) iter.Seq2[domain.FlightSummary, error] {
	return func(yield func(domain.FlightSummary, error) bool) {
		rows, err := r.db.Query(ctx, `SELECT id, number, departure, destination, available_seats, total_seats FROM flights ORDER BY id`)
		if err != nil {
			yield(domain.FlightSummary{}, classifyErr(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var f domain.FlightSummary
			if err := rows.Scan(&f.ID, &f.Number, &f.Departure, &f.Destination, &f.AvailableSeats, &f.TotalSeats); err != nil {
				yield(domain.FlightSummary{}, classifyErr(err))
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.FlightSummary{}, classifyErr(err))
		}
	}
}

// Audit compares each flight's seat counter against its reservation count in
// a single statement snapshot.
func (r *PGFlightRepository) Audit(ctx context.Context) ([]domain.InventoryAudit, error) {
	rows, err := r.db.Query(ctx, `SELECT f.id, f.number, f.total_seats, f.available_seats, COUNT(r.id)
		FROM flights f
		LEFT JOIN reservations r ON r.flight_id = f.id
		GROUP BY f.id
		ORDER BY f.id`)
	if err != nil {
		return nil, classifyErr(err)
	}
	defer rows.Close()

	audits := make([]domain.InventoryAudit, 0)
	for rows.Next() {
		var a domain.InventoryAudit
		if err := rows.Scan(&a.FlightID, &a.Number, &a.TotalSeats, &a.AvailableSeats, &a.Reservations); err != nil {
			return nil, classifyErr(err)
		}
		audits = append(audits, a)
	}
	return audits, classifyErr(rows.Err())
}

var _ FlightRepository = (*PGFlightRepository)(nil)
