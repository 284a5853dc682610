package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightResponse struct {
	ID             int64  `json:"id"`
	Number         string `json:"number"`
	Departure      string `json:"departure"`
	Destination    string `json:"destination"`
	AvailableSeats int    `json:"available_seats"`
	TotalSeats     int    `json:"total_seats"`
}

func toFlightResponse(f domain.FlightSummary) flightResponse {
	return flightResponse{
		ID:             f.ID,
		Number:         f.Number,
		Departure:      f.Departure,
		Destination:    f.Destination,
		AvailableSeats: f.AvailableSeats,
		TotalSeats:     f.TotalSeats,
	}
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) list(c *gin.Context) {
	var summaries []domain.FlightSummary
	for f, err := range h.service.List(c.Request.Context()) {
		if err != nil {
			writeError(c, err)
			return
		}
		summaries = append(summaries, f)
	}

	c.JSON(http.StatusOK, lo.Map(summaries, func(f domain.FlightSummary, _ int) flightResponse {
		return toFlightResponse(f)
	}))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFlightResponse(flight.Summary()))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flights.CreateFlightInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	flight, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toFlightResponse(flight.Summary()))
}
