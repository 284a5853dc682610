package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/service/passengers"
)

// HealthCheck reports whether storage is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(
	flightService flights.FlightUseCase,
	passengerService passengers.PassengerUseCase,
	engine booking.ReservationEngine,
	health HealthCheck,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID(), RequestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			if err := health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	NewFlightHandler(flightService).Register(router.Group("/flights"))
	NewPassengerHandler(passengerService).Register(router.Group("/passengers"))
	NewReservationHandler(engine).Register(router.Group("/reservations"))

	return router
}
