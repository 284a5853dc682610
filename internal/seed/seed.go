// Package seed loads the demo flights and passengers.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/service/passengers"
)

type Flight struct {
	flights.CreateFlightInput
	// Available is the seat count left after seeding. Seats in between are
	// held by the charter passenger so the ledger matches the counter.
	Available int
}

var Flights = []Flight{
	{CreateFlightInput: flights.CreateFlightInput{Number: "F101", Departure: "UAE", Destination: "Canada", TotalSeats: 50}, Available: 50},
	{CreateFlightInput: flights.CreateFlightInput{Number: "F102", Departure: "UAE", Destination: "USA", TotalSeats: 40}, Available: 40},
	{CreateFlightInput: flights.CreateFlightInput{Number: "F103", Departure: "UAE", Destination: "China", TotalSeats: 30}, Available: 1},
}

var Passengers = []passengers.CreatePassengerInput{
	{FirstName: "John", LastName: "Doe", PassportNumber: "A123"},
	{FirstName: "Jane", LastName: "Smith", PassportNumber: "B456"},
}

var Charter = passengers.CreatePassengerInput{FirstName: "Charter", LastName: "Block", PassportNumber: "CHARTER-0001"}

type Seeder struct {
	flights    flights.FlightUseCase
	passengers passengers.PassengerUseCase
	engine     booking.ReservationEngine
}

func NewSeeder(f flights.FlightUseCase, p passengers.PassengerUseCase, engine booking.ReservationEngine) *Seeder {
	return &Seeder{flights: f, passengers: p, engine: engine}
}

// Run creates whatever seed records are missing. Existing flight numbers and
// passports are left alone.
func (s *Seeder) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)

	for _, in := range Passengers {
		if _, err := s.passengers.Create(ctx, in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("seed passenger %s: %w", in.PassportNumber, err)
		}
	}

	var charterID int64
	for _, in := range Flights {
		flight, err := s.flights.Create(ctx, in.CreateFlightInput)
		if err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				logger.WithField("flight", in.Number).Debug("seed flight exists")
				continue
			}
			return fmt.Errorf("seed flight %s: %w", in.Number, err)
		}

		held := in.TotalSeats - in.Available
		if held <= 0 {
			continue
		}
		if charterID == 0 {
			p, err := s.passengers.Create(ctx, Charter)
			if err != nil {
				return fmt.Errorf("seed charter passenger: %w", err)
			}
			charterID = p.ID
		}
		for range held {
			if _, err := s.engine.BookSeat(ctx, charterID, flight.ID); err != nil {
				return fmt.Errorf("seed hold on %s: %w", in.Number, err)
			}
		}
	}

	logger.Info("seed data loaded")
	return nil
}
