package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// CreateTripRequest is the HTTP request body for creating a trip.
type CreateTripRequest struct {
	City         string `json:"city" binding:"required"`
	BaseLocation string `json:"base_location" binding:"required"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
	Purpose      string `json:"purpose"`
	Notes        string `json:"notes"`
}

// UpdateStatusRequest is the HTTP request body for status changes.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	City         string `json:"city"`
	BaseLocation string `json:"base_location"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Purpose      string `json:"purpose,omitempty"`
	Notes        string `json:"notes,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func toTripResponse(t *domain.Trip) TripResponse {
	return TripResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		City:         t.City,
		BaseLocation: t.BaseLocation,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Purpose:      t.Purpose,
		Notes:        t.Notes,
		Status:       string(t.Status),
		CreatedAt:    formatTime(t.CreatedAt),
	}
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), caller(c), service.CreateTripRequest{
		City:         req.City,
		BaseLocation: req.BaseLocation,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Purpose:      req.Purpose,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTripResponse(trip))
}

// ListTrips handles GET /v1/trips
func (h *TripHandler) ListTrips(c *gin.Context) {
	trips, err := h.tripService.ListTrips(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		response = append(response, toTripResponse(t))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}

// UpdateTripStatus handles PATCH /v1/trips/:id
func (h *TripHandler) UpdateTripStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	trip, err := h.tripService.UpdateTripStatus(c.Request.Context(), caller(c), c.Param("id"), domain.TripStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toTripResponse(trip))
}
