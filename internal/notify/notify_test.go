package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
)

type MockPassengerLookup struct {
	mock.Mock
}

func (m *MockPassengerLookup) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func TestSender_Send(t *testing.T) {
	ctx := context.Background()
	event := kafka.NewReservationEvent(kafka.EventReservationBooked, 10, 1, 3)

	t.Run("success", func(t *testing.T) {
		lookup := new(MockPassengerLookup)
		lookup.On("GetByID", ctx, int64(1)).Return(&domain.Passenger{ID: 1, FirstName: "John", LastName: "Doe"}, nil).Once()

		assert.NoError(t, NewSender(lookup).Send(ctx, event))
		lookup.AssertExpectations(t)
	})

	t.Run("passenger gone", func(t *testing.T) {
		lookup := new(MockPassengerLookup)
		lookup.On("GetByID", ctx, int64(1)).Return(nil, &domain.NotFoundError{Entity: domain.EntityPassenger, ID: 1}).Once()

		assert.NoError(t, NewSender(lookup).Send(ctx, event))
	})

	t.Run("storage failure", func(t *testing.T) {
		lookup := new(MockPassengerLookup)
		lookup.On("GetByID", ctx, int64(1)).Return(nil, errors.New("boom")).Once()

		assert.ErrorContains(t, NewSender(lookup).Send(ctx, event), "lookup passenger 1")
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "reservation 10 confirmed on flight 3",
		Message(kafka.NewReservationEvent(kafka.EventReservationBooked, 10, 1, 3)))
	assert.Equal(t, "reservation 10 on flight 3 cancelled",
		Message(kafka.NewReservationEvent(kafka.EventReservationCancelled, 10, 1, 3)))
}
