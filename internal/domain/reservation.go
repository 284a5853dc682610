package domain

import "time"

type Reservation struct {
	ID          int64
	PassengerID int64
	FlightID    int64
	CreatedAt   time.Time
}

type ReservationSummary struct {
	ReservationID int64  `json:"reservation_id"`
	FlightNumber  string `json:"flight_number"`
	Departure     string `json:"departure"`
	Destination   string `json:"destination"`
}
