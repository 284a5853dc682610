package flights

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/log"
	"github.com/Domenick1991/airreservation/internal/repository"
)

type FlightUseCase interface {
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	List(ctx context.Context) iter.Seq2[domain.FlightSummary, error]
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.FlightSummary, bool, error)
	FlightsGeneration(ctx context.Context) (int64, error)
	// SetFlights stores flights only if no invalidation happened since
	// generation was read.
	SetFlights(ctx context.Context, generation int64, flights []domain.FlightSummary) (bool, error)
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	Number      string `json:"number"`
	Departure   string `json:"departure"`
	Destination string `json:"destination"`
	TotalSeats  int    `json:"total_seats"`
}

func (in CreateFlightInput) Validate() error {
	switch {
	case strings.TrimSpace(in.Number) == "":
		return fmt.Errorf("%w: flight number is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Departure) == "":
		return fmt.Errorf("%w: departure is required", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Destination) == "":
		return fmt.Errorf("%w: destination is required", domain.ErrInvalidInput)
	case in.TotalSeats <= 0:
		return fmt.Errorf("%w: total seats must be positive", domain.ErrInvalidInput)
	}
	return nil
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
}

// NewFlightService builds the service. cache may be nil.
func NewFlightService(repo repository.FlightRepository, cache FlightCache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

// Create stores a flight with every seat available.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		Number:      strings.TrimSpace(input.Number),
		Departure:   strings.TrimSpace(input.Departure),
		Destination: strings.TrimSpace(input.Destination),
		TotalSeats:  input.TotalSeats,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, fmt.Errorf("create flight %s: %w", flight.Number, err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			log.FromContext(ctx).WithError(err).Warn("failed to invalidate flights cache")
		}
	}
	return flight, nil
}

// List yields flight summaries, from cache when present. A full pass over the
// store refills the cache; an abandoned or failed pass does not, and neither
// does a pass that overlapped a booking or cancellation.
func (s *FlightService) List(ctx context.Context) iter.Seq2[domain.FlightSummary, error] {
	return func(yield func(domain.FlightSummary, error) bool) {
		logger := log.FromContext(ctx)

		fill := false
		var generation int64
		if s.cache != nil {
			cached, ok, err := s.cache.GetFlights(ctx)
			if err != nil {
				logger.WithError(err).Warn("flights cache read failed")
			}
			if ok {
				for _, f := range cached {
					if !yield(f, nil) {
						return
					}
				}
				return
			}

			generation, err = s.cache.FlightsGeneration(ctx)
			if err != nil {
				logger.WithError(err).Warn("flights cache generation read failed")
			} else {
				fill = true
			}
		}

		collected := make([]domain.FlightSummary, 0)
		for f, err := range s.repo.List(ctx) {
			if err != nil {
				yield(domain.FlightSummary{}, err)
				return
			}
			collected = append(collected, f)
			if !yield(f, nil) {
				return
			}
		}

		if !fill {
			return
		}
		stored, err := s.cache.SetFlights(ctx, generation, collected)
		if err != nil {
			logger.WithError(err).Warn("flights cache write failed")
			return
		}
		if !stored {
			logger.Debug("flights changed during listing, cache fill skipped")
		}
	}
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
