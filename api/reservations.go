package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/booking"
)

type ReservationHandler struct {
	engine booking.ReservationEngine
}

type createReservationRequest struct {
	PassengerID int64 `json:"passenger_id"`
	FlightID    int64 `json:"flight_id"`
}

func (r createReservationRequest) validate() error {
	if r.PassengerID <= 0 {
		return fmt.Errorf("%w: passenger_id must be positive", domain.ErrInvalidInput)
	}
	if r.FlightID <= 0 {
		return fmt.Errorf("%w: flight_id must be positive", domain.ErrInvalidInput)
	}
	return nil
}

type reservationResponse struct {
	ReservationID int64 `json:"reservation_id"`
	PassengerID   int64 `json:"passenger_id"`
	FlightID      int64 `json:"flight_id"`
}

func NewReservationHandler(engine booking.ReservationEngine) *ReservationHandler {
	return &ReservationHandler{engine: engine}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.DELETE("/:id", h.cancel)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		writeError(c, err)
		return
	}

	r, err := h.engine.BookSeat(c.Request.Context(), req.PassengerID, req.FlightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservationResponse{
		ReservationID: r.ID,
		PassengerID:   r.PassengerID,
		FlightID:      r.FlightID,
	})
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.engine.CancelReservation(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
