package domain

import "time"

type Flight struct {
	ID             int64
	Number         string
	Departure      string
	Destination    string
	TotalSeats     int
	AvailableSeats int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Booked is the number of seats consumed by reservations.
func (f Flight) Booked() int {
	return f.TotalSeats - f.AvailableSeats
}

func (f Flight) Summary() FlightSummary {
	return FlightSummary{
		ID:             f.ID,
		Number:         f.Number,
		Departure:      f.Departure,
		Destination:    f.Destination,
		AvailableSeats: f.AvailableSeats,
		TotalSeats:     f.TotalSeats,
	}
}

type FlightSummary struct {
	ID             int64  `json:"id"`
	Number         string `json:"number"`
	Departure      string `json:"departure"`
	Destination    string `json:"destination"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats"`
}

// InventoryAudit is one row of the seat reconciliation report.
type InventoryAudit struct {
	FlightID       int64
	Number         string
	TotalSeats     int
	AvailableSeats int
	Reservations   int
}

// Drift is zero when total_seats - available_seats equals the reservation count.
func (a InventoryAudit) Drift() int {
	return a.TotalSeats - a.AvailableSeats - a.Reservations
}
