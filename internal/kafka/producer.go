package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Domenick1991/airreservation/internal/log"
)

const (
	EventReservationBooked    = "reservation_booked"
	EventReservationCancelled = "reservation_cancelled"
)

// ReservationEvent is published after a booking or cancellation commits.
type ReservationEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	PassengerID   int64     `json:"passenger_id"`
	FlightID      int64     `json:"flight_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewReservationEvent(eventType string, reservationID, passengerID, flightID int64) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.New(),
		Type:          eventType,
		ReservationID: reservationID,
		PassengerID:   passengerID,
		FlightID:      flightID,
		OccurredAt:    time.Now().UTC(),
	}
}

type Producer struct {
	brokers []string
	writer  *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Producer{
		brokers: brokers,
		writer:  writer,
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	log.FromContext(ctx).WithField("topic", topic).WithField("key", key).Debug("published to kafka")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

// CheckConnection dials the first broker and lists partitions.
func (p *Producer) CheckConnection(ctx context.Context) error {
	if len(p.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions()
	if err != nil {
		return fmt.Errorf("failed to read partitions: %w", err)
	}

	log.FromContext(ctx).WithField("partitions", len(partitions)).Info("connected to kafka")
	return nil
}
