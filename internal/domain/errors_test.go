package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("book seat: %w", &NotFoundError{Entity: EntityFlight, ID: 42})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrExhausted))
	assert.EqualError(t, err, "book seat: flight 42 not found")

	var nf *NotFoundError
	if assert.True(t, errors.As(err, &nf)) {
		assert.Equal(t, EntityFlight, nf.Entity)
		assert.Equal(t, int64(42), nf.ID)
	}

	assert.EqualError(t, &NotFoundError{Entity: EntityPassenger}, "passenger not found")
}

func TestExhaustedError(t *testing.T) {
	err := fmt.Errorf("book seat: %w", &ExhaustedError{FlightID: 3})

	assert.True(t, errors.Is(err, ErrExhausted))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "book seat: flight 3 has no available seats")
}

func TestInventoryAudit_Drift(t *testing.T) {
	assert.Zero(t, InventoryAudit{TotalSeats: 30, AvailableSeats: 1, Reservations: 29}.Drift())
	assert.Equal(t, 1, InventoryAudit{TotalSeats: 30, AvailableSeats: 1, Reservations: 28}.Drift())
	assert.Equal(t, -1, InventoryAudit{TotalSeats: 30, AvailableSeats: 2, Reservations: 29}.Drift())
}

func TestTxState_Terminal(t *testing.T) {
	assert.False(t, TxIdle.Terminal())
	assert.False(t, TxStarted.Terminal())
	assert.True(t, TxCommitted.Terminal())
	assert.True(t, TxRolledBack.Terminal())
}
