package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Domenick1991/airreservation/internal/domain"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
)

const (
	constraintReservationPassenger = "reservations_passenger_fk"
	constraintReservationFlight    = "reservations_flight_fk"
)

// classifyErr maps driver errors onto the domain taxonomy.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}

	switch pgErr.Code {
	case pgLockNotAvailable, pgQueryCanceled, pgDeadlockDetected, pgSerializationFail:
		return fmt.Errorf("%w: %w", domain.ErrBusy, err)
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintReservationPassenger:
			return &domain.NotFoundError{Entity: domain.EntityPassenger}
		case constraintReservationFlight:
			return &domain.NotFoundError{Entity: domain.EntityFlight}
		}
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	case pgCheckViolation:
		return fmt.Errorf("%w: constraint %s violated: %w", domain.ErrStorage, pgErr.ConstraintName, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
}
