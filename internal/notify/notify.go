// Package notify turns reservation events into passenger notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/kafka"
	"github.com/Domenick1991/airreservation/internal/log"
)

type PassengerLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
}

type Sender struct {
	passengers PassengerLookup
}

func NewSender(passengers PassengerLookup) *Sender {
	return &Sender{passengers: passengers}
}

// Send logs a notification for the event's passenger. A passenger that no
// longer exists is not an error.
func (s *Sender) Send(ctx context.Context, event kafka.ReservationEvent) error {
	entry := log.FromContext(ctx).WithFields(logrus.Fields{
		"event_id":       event.ID.String(),
		"event_type":     event.Type,
		"reservation_id": event.ReservationID,
		"flight_id":      event.FlightID,
	})

	p, err := s.passengers.GetByID(ctx, event.PassengerID)
	if err != nil {
		if domain.IsNotFound(err) {
			entry.Warn("passenger for notification not found")
			return nil
		}
		return fmt.Errorf("lookup passenger %d: %w", event.PassengerID, err)
	}

	entry.WithField("passenger", p.FirstName+" "+p.LastName).Info(Message(event))
	return nil
}

func Message(event kafka.ReservationEvent) string {
	switch event.Type {
	case kafka.EventReservationBooked:
		return fmt.Sprintf("reservation %d confirmed on flight %d", event.ReservationID, event.FlightID)
	case kafka.EventReservationCancelled:
		return fmt.Sprintf("reservation %d on flight %d cancelled", event.ReservationID, event.FlightID)
	default:
		return fmt.Sprintf("reservation %d: %s", event.ReservationID, event.Type)
	}
}
