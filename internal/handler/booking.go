package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for creating a booking.
type CreateBookingRequest struct {
	TripID          string  `json:"trip_id" binding:"required"`
	EstimatedKm     float64 `json:"estimated_km" binding:"gte=0"`
	TotalDays       *int    `json:"total_days,omitempty"` // defaults to 1
	PickupLocation  string  `json:"pickup_location" binding:"required"`
	DropoffLocation string  `json:"dropoff_location" binding:"required"`
	BookingDate     string  `json:"booking_date,omitempty"`
}

// AssignDriverRequest is the HTTP request body for assigning a driver.
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" binding:"required"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID              string  `json:"id"`
	TripID          string  `json:"trip_id"`
	UserID          string  `json:"user_id"`
	DriverID        string  `json:"driver_id,omitempty"`
	DealerID        string  `json:"dealer_id,omitempty"`
	BaseFare        float64 `json:"base_fare"`
	EstimatedKm     float64 `json:"estimated_km"`
	PerKmRate       float64 `json:"per_km_rate"`
	PerDayRate      float64 `json:"per_day_rate"`
	TotalDays       int     `json:"total_days"`
	FinalPrice      float64 `json:"final_price"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	BookingDate     string  `json:"booking_date"`
	Status          string  `json:"status"`
	PaymentStatus   string  `json:"payment_status"`
	CreatedAt       string  `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		TripID:          b.TripID,
		UserID:          b.UserID,
		DriverID:        b.DriverID,
		DealerID:        b.DealerID,
		BaseFare:        b.BaseFare,
		EstimatedKm:     b.EstimatedKm,
		PerKmRate:       b.PerKmRate,
		PerDayRate:      b.PerDayRate,
		TotalDays:       b.TotalDays,
		FinalPrice:      b.FinalPrice,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		BookingDate:     b.BookingDate,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CreatedAt:       formatTime(b.CreatedAt),
	}
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	totalDays := 1
	if req.TotalDays != nil {
		totalDays = *req.TotalDays
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), caller(c), service.CreateBookingRequest{
		TripID:          req.TripID,
		EstimatedKm:     req.EstimatedKm,
		TotalDays:       totalDays,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		BookingDate:     req.BookingDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// ListBookings handles GET /v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListBookings(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		response = append(response, toBookingResponse(b))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// AssignDriver handles PATCH /v1/bookings/:id/assign
func (h *BookingHandler) AssignDriver(c *gin.Context) {
	var req AssignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	booking, err := h.bookingService.AssignDriver(c.Request.Context(), caller(c), c.Param("id"), req.DriverID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// AcceptBooking handles PATCH /v1/bookings/:id/accept
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	booking, err := h.bookingService.AcceptBooking(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// UpdateStatus handles PATCH /v1/bookings/:id/status
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	booking, err := h.bookingService.UpdateBookingStatus(c.Request.Context(), caller(c), c.Param("id"), domain.BookingStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}
