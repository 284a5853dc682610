package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/passengers"
)

type PassengerHandler struct {
	service passengers.PassengerUseCase
}

type passengerResponse struct {
	ID             int64  `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	PassportNumber string `json:"passport_number"`
}

type reservationSummaryResponse struct {
	ReservationID int64  `json:"reservation_id"`
	FlightNumber  string `json:"flight_number"`
	Departure     string `json:"departure"`
	Destination   string `json:"destination"`
}

func toPassengerResponse(p *domain.Passenger) passengerResponse {
	return passengerResponse{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		PassportNumber: p.PassportNumber,
	}
}

func NewPassengerHandler(service passengers.PassengerUseCase) *PassengerHandler {
	return &PassengerHandler{service: service}
}

func (h *PassengerHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.GET("/:id/reservations", h.reservations)
}

func (h *PassengerHandler) create(c *gin.Context) {
	var req passengers.CreatePassengerInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPassengerResponse(p))
}

func (h *PassengerHandler) get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPassengerResponse(p))
}

// reservations always answers with a list; a passenger with no bookings gets [].
func (h *PassengerHandler) reservations(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]domain.ReservationSummary, 0)
	for s, err := range h.service.ListReservations(c.Request.Context(), id) {
		if err != nil {
			writeError(c, err)
			return
		}
		summaries = append(summaries, s)
	}

	c.JSON(http.StatusOK, lo.Map(summaries, func(s domain.ReservationSummary, _ int) reservationSummaryResponse {
		return reservationSummaryResponse{
			ReservationID: s.ReservationID,
			FlightNumber:  s.FlightNumber,
			Departure:     s.Departure,
			Destination:   s.Destination,
		}
	}))
}
