package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrExhausted     = errors.New("no available seats")
	ErrBusy          = errors.New("resource busy")
	ErrStorage       = errors.New("storage failure")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
)

const (
	EntityFlight      = "flight"
	EntityPassenger   = "passenger"
	EntityReservation = "reservation"
)

type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

type ExhaustedError struct {
	FlightID int64
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("flight %d has no available seats", e.FlightID)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
