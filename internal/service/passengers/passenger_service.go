package passengers

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository"
)

type PassengerUseCase interface {
	Create(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error)
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	ListReservations(ctx context.Context, passengerID int64) iter.Seq2[domain.ReservationSummary, error]
}

type CreatePassengerInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PassportNumber string `json:"passport_number"`
}

func (in CreatePassengerInput) Validate() error {
	switch {
	case strings.TrimSpace(in.FirstName) == "":
		return fmt.Errorf("%w: first name is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("%w: last name is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.PassportNumber) == "":
		return fmt.Errorf("%w: passport number is required", domain.ErrInvalidInput)
	}
	return nil
}

type PassengerService struct {
	passengers   repository.PassengerRepository
	reservations repository.ReservationRepository
}

func NewPassengerService(passengers repository.PassengerRepository, reservations repository.ReservationRepository) *PassengerService {
	return &PassengerService{passengers: passengers, reservations: reservations}
}

func (s *PassengerService) Create(ctx context.Context, input CreatePassengerInput) (*domain.Passenger, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	p := &domain.Passenger{
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		PassportNumber: strings.TrimSpace(input.PassportNumber),
	}
	if err := s.passengers.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create passenger: %w", err)
	}
	return p, nil
}

func (s *PassengerService) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	return s.passengers.GetByID(ctx, id)
}

// ListReservations yields the passenger's reservations joined with their
// flights. A passenger without reservations yields nothing.
func (s *PassengerService) ListReservations(ctx context.Context, passengerID int64) iter.Seq2[domain.ReservationSummary, error] {
	return s.reservations.ListForPassenger(ctx, passengerID)
}

var _ PassengerUseCase = (*PassengerService)(nil)
