package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/repository/memory"
	"github.com/Domenick1991/airreservation/internal/service/audit"
)

func TestCheckDriver(t *testing.T) {
	assert.NoError(t, checkDriver(config.DatabaseConfig{Driver: config.DriverPostgres}))
	assert.ErrorContains(t, checkDriver(config.DatabaseConfig{Driver: config.DriverMemory}), "shared database")
}

func TestRunAudit_StopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Flights().Create(context.Background(), &domain.Flight{
		Number: "F101", Departure: "UAE", Destination: "Canada", TotalSeats: 50,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		runAudit(ctx, audit.NewAuditService(store.Flights()), time.Millisecond)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("audit loop did not stop")
	}
}
