package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func (r *PGPassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	if err := r.db.QueryRow(ctx, `INSERT INTO passengers (first_name, last_name, passport_number)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, passenger.FirstName, passenger.LastName, passenger.PassportNumber).
		Scan(&passenger.ID, &passenger.CreatedAt); err != nil {
		return classifyErr(err)
	}
	return nil
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	row := r.db.QueryRow(ctx, `SELECT id, first_name, last_name, passport_number, created_at FROM passengers WHERE id=$1`, id)
	var p domain.Passenger
	if err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.PassportNumber, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.NotFoundError{Entity: domain.EntityPassenger, ID: id}
		}
		return nil, classifyErr(err)
	}
	return &p, nil
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
