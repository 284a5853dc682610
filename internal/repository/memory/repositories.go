package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository"
)

func (s *Store) flightExists(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.flights[id]
	return ok
}

func (s *Store) reservationExists(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reservations[id]
	return ok
}

type flightRepository struct {
	store *Store
}

func (r *flightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	if err := ctx.Err(); err != nil {
		return ctxErr(err)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.flights {
		if f.Number == flight.Number {
			return fmt.Errorf("%w: flight number %s", domain.ErrAlreadyExists, flight.Number)
		}
	}

	s.nextFlightID++
	now := time.Now().UTC()
	flight.ID = s.nextFlightID
	flight.AvailableSeats = flight.TotalSeats
	flight.CreatedAt = now
	flight.UpdatedAt = now
	stored := *flight
	s.flights[flight.ID] = &stored
	return nil
}

func (r *flightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxErr(err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f, ok := r.store.flights[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: id}
	}
	out := *f
	return &out, nil
}

// List yields a snapshot of committed flights taken when iteration starts.
func (r *flightRepository) List(ctx context.Context) iter.Seq2[domain.FlightSummary, error] {
	return func(yield func(domain.FlightSummary, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.FlightSummary{}, ctxErr(err))
			return
		}

		r.store.mu.Lock()
		summaries := make([]domain.FlightSummary, 0, len(r.store.flights))
		for _, f := range r.store.flights {
			summaries = append(summaries, f.Summary())
		}
		r.store.mu.Unlock()
		slices.SortFunc(summaries, func(a, b domain.FlightSummary) int {
			return cmp.Compare(a.ID, b.ID)
		})

		for _, f := range summaries {
			if !yield(f, nil) {
				return
			}
		}
	}
}

func (r *flightRepository) Audit(ctx context.Context) ([]domain.InventoryAudit, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxErr(err)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]int, len(s.flights))
	for _, res := range s.reservations {
		counts[res.FlightID]++
	}
	audits := make([]domain.InventoryAudit, 0, len(s.flights))
	for _, f := range s.flights {
		audits = append(audits, domain.InventoryAudit{
			FlightID:       f.ID,
			Number:         f.Number,
			TotalSeats:     f.TotalSeats,
			AvailableSeats: f.AvailableSeats,
			Reservations:   counts[f.ID],
		})
	}
	slices.SortFunc(audits, func(a, b domain.InventoryAudit) int {
		return cmp.Compare(a.FlightID, b.FlightID)
	})
	return audits, nil
}

type passengerRepository struct {
	store *Store
}

func (r *passengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	if err := ctx.Err(); err != nil {
		return ctxErr(err)
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.passengers {
		if p.PassportNumber == passenger.PassportNumber {
			return fmt.Errorf("%w: passport number %s", domain.ErrAlreadyExists, passenger.PassportNumber)
		}
	}

	s.nextPassengerID++
	passenger.ID = s.nextPassengerID
	passenger.CreatedAt = time.Now().UTC()
	stored := *passenger
	s.passengers[passenger.ID] = &stored
	return nil
}

func (r *passengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxErr(err)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.passengers[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: domain.EntityPassenger, ID: id}
	}
	out := *p
	return &out, nil
}

type reservationRepository struct {
	store *Store
}

func (r *reservationRepository) ListForPassenger(ctx context.Context, passengerID int64) iter.Seq2[domain.ReservationSummary, error] {
	return func(yield func(domain.ReservationSummary, error) bool) {
		if err := ctx.Err(); err != nil {
			yield(domain.ReservationSummary{}, ctxErr(err))
			return
		}

		s := r.store
		s.mu.Lock()
		var summaries []domain.ReservationSummary
		for _, res := range s.reservations {
			if res.PassengerID != passengerID {
				continue
			}
			f := s.flights[res.FlightID]
			summaries = append(summaries, domain.ReservationSummary{
				ReservationID: res.ID,
				FlightNumber:  f.Number,
				Departure:     f.Departure,
				Destination:   f.Destination,
			})
		}
		s.mu.Unlock()
		slices.SortFunc(summaries, func(a, b domain.ReservationSummary) int {
			return cmp.Compare(a.ReservationID, b.ReservationID)
		})

		for _, sum := range summaries {
			if !yield(sum, nil) {
				return
			}
		}
	}
}

var (
	_ repository.FlightRepository      = (*flightRepository)(nil)
	_ repository.PassengerRepository   = (*passengerRepository)(nil)
	_ repository.ReservationRepository = (*reservationRepository)(nil)
)
