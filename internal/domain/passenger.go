package domain

import "time"

type Passenger struct {
	ID             int64
	FirstName      string
	LastName       string
	PassportNumber string
	CreatedAt      time.Time
}
