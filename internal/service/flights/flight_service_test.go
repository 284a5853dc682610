package flights

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/airreservation/internal/domain"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	if args.Error(0) == nil {
		flight.ID = 4
		flight.AvailableSeats = flight.TotalSeats
	}
	return args.Error(0)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) List(ctx context.Context) iter.Seq2[domain.FlightSummary, error] {
	args := m.Called(ctx)
	flights, _ := args.Get(0).([]domain.FlightSummary)
	err := args.Error(1)
	return func(yield func(domain.FlightSummary, error) bool) {
		for _, f := range flights {
			if !yield(f, nil) {
				return
			}
		}
		if err != nil {
			yield(domain.FlightSummary{}, err)
		}
	}
}

func (m *MockFlightRepository) Audit(ctx context.Context) ([]domain.InventoryAudit, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.InventoryAudit), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context) ([]domain.FlightSummary, bool, error) {
	args := m.Called(ctx)
	flights, _ := args.Get(0).([]domain.FlightSummary)
	return flights, args.Bool(1), args.Error(2)
}

func (m *MockCache) FlightsGeneration(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, generation int64, flights []domain.FlightSummary) (bool, error) {
	args := m.Called(ctx, generation, flights)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var testFlights = []domain.FlightSummary{
	{ID: 1, Number: "F101", Departure: "New York", Destination: "London", AvailableSeats: 100, TotalSeats: 100},
	{ID: 2, Number: "F102", Departure: "Paris", Destination: "Berlin", AvailableSeats: 150, TotalSeats: 150},
}

func collect(t *testing.T, seq iter.Seq2[domain.FlightSummary, error]) ([]domain.FlightSummary, error) {
	t.Helper()
	var out []domain.FlightSummary
	for f, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, f)
	}
	return out, nil
}

func TestFlightService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, false, nil).Once()
	mockCache.On("FlightsGeneration", ctx).Return(int64(5), nil).Once()
	mockRepo.On("List", ctx).Return(testFlights, nil).Once()
	mockCache.On("SetFlights", ctx, int64(5), testFlights).Return(true, nil).Once()

	result, err := collect(t, service.List(ctx))

	assert.NoError(t, err)
	assert.Equal(t, testFlights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_List_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(testFlights, true, nil).Once()

	result, err := collect(t, service.List(ctx))

	assert.NoError(t, err)
	assert.Equal(t, testFlights, result)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_List_CacheError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, false, errors.New("cache error")).Once()
	mockCache.On("FlightsGeneration", ctx).Return(int64(0), nil).Once()
	mockRepo.On("List", ctx).Return(testFlights, nil).Once()
	mockCache.On("SetFlights", ctx, int64(0), testFlights).Return(false, errors.New("cache error")).Once()

	result, err := collect(t, service.List(ctx))

	assert.NoError(t, err)
	assert.Equal(t, testFlights, result)
	mockCache.AssertExpectations(t)
}

func TestFlightService_List_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockCache.On("GetFlights", ctx).Return(nil, false, nil).Once()
	mockCache.On("FlightsGeneration", ctx).Return(int64(0), nil).Once()
	mockRepo.On("List", ctx).Return(testFlights[:1], expectedErr).Once()

	result, err := collect(t, service.List(ctx))

	assert.Equal(t, expectedErr, err)
	assert.Len(t, result, 1)
	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_List_EarlyBreakSkipsCacheFill(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, false, nil).Once()
	mockCache.On("FlightsGeneration", ctx).Return(int64(0), nil).Once()
	mockRepo.On("List", ctx).Return(testFlights, nil).Once()

	for range service.List(ctx) {
		break
	}

	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_List_GenerationReadFailureSkipsCacheFill(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockCache.On("GetFlights", ctx).Return(nil, false, nil).Once()
	mockCache.On("FlightsGeneration", ctx).Return(int64(0), errors.New("connection refused")).Once()
	mockRepo.On("List", ctx).Return(testFlights, nil).Once()

	result, err := collect(t, service.List(ctx))

	assert.NoError(t, err)
	assert.Equal(t, testFlights, result)
	mockCache.AssertNotCalled(t, "SetFlights", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_List_Restartable(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()

	mockRepo.On("List", ctx).Return(testFlights, nil).Twice()

	seq := service.List(ctx)
	first, err := collect(t, seq)
	require.NoError(t, err)
	second, err := collect(t, seq)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_GetByID(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil)
	ctx := context.Background()

	flight := &domain.Flight{ID: 4, Number: "F104", TotalSeats: 150, AvailableSeats: 149}
	mockRepo.On("GetByID", ctx, int64(4)).Return(flight, nil).Once()
	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, &domain.NotFoundError{Entity: domain.EntityFlight, ID: 999}).Once()

	result, err := service.GetByID(ctx, 4)
	assert.NoError(t, err)
	assert.Equal(t, flight, result)

	result, err = service.GetByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)
}

func TestFlightService_Create(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.MatchedBy(func(f *domain.Flight) bool {
		return f.Number == "F104" && f.TotalSeats == 80
	})).Return(nil).Once()
	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()

	flight, err := service.Create(ctx, CreateFlightInput{Number: " F104 ", Departure: "Rome", Destination: "Madrid", TotalSeats: 80})

	require.NoError(t, err)
	assert.Equal(t, int64(4), flight.ID)
	assert.Equal(t, 80, flight.AvailableSeats)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestFlightService_Create_Duplicate(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, mockCache)
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.Anything).Return(domain.ErrAlreadyExists).Once()

	_, err := service.Create(ctx, CreateFlightInput{Number: "F101", Departure: "A", Destination: "B", TotalSeats: 1})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	mockCache.AssertNotCalled(t, "InvalidateFlights", mock.Anything)
}

func TestCreateFlightInput_Validate(t *testing.T) {
	testCases := []struct {
		name        string
		input       CreateFlightInput
		expectedErr string
	}{
		{name: "missing number", input: CreateFlightInput{Departure: "A", Destination: "B", TotalSeats: 1}, expectedErr: "flight number is required"},
		{name: "missing departure", input: CreateFlightInput{Number: "F1", Destination: "B", TotalSeats: 1}, expectedErr: "departure is required"},
		{name: "missing destination", input: CreateFlightInput{Number: "F1", Departure: "A", TotalSeats: 1}, expectedErr: "destination is required"},
		{name: "zero seats", input: CreateFlightInput{Number: "F1", Departure: "A", Destination: "B"}, expectedErr: "total seats must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}
