package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// DriverHandler handles HTTP requests for driver and dealer profiles.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// CreateDriverRequest is the HTTP request body for creating a driver profile.
type CreateDriverRequest struct {
	DealerID      string `json:"dealer_id,omitempty"`
	LicenseNumber string `json:"license_number" binding:"required"`
	LicenseExpiry string `json:"license_expiry" binding:"required"`
	VehicleNumber string `json:"vehicle_number" binding:"required"`
	VehicleType   string `json:"vehicle_type" binding:"required,oneof=SEDAN SUV HATCHBACK LUXURY"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID            string  `json:"id"`
	UserID        string  `json:"user_id"`
	DealerID      string  `json:"dealer_id,omitempty"`
	LicenseNumber string  `json:"license_number"`
	LicenseExpiry string  `json:"license_expiry"`
	VehicleNumber string  `json:"vehicle_number"`
	VehicleType   string  `json:"vehicle_type"`
	TotalEarnings float64 `json:"total_earnings"`
	TotalPayouts  float64 `json:"total_payouts"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
}

// DealerResponse is the HTTP response for dealer data.
type DealerResponse struct {
	ID                  string  `json:"id"`
	UserID              string  `json:"user_id"`
	CompanyName         string  `json:"company_name"`
	CompanyRegistration string  `json:"company_registration,omitempty"`
	TaxID               string  `json:"tax_id,omitempty"`
	CommissionPercent   float64 `json:"commission_percent"`
	TotalEarnings       float64 `json:"total_earnings"`
	TotalPayouts        float64 `json:"total_payouts"`
	CreatedAt           string  `json:"created_at"`
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:            d.ID,
		UserID:        d.UserID,
		DealerID:      d.DealerID,
		LicenseNumber: d.LicenseNumber,
		LicenseExpiry: d.LicenseExpiry,
		VehicleNumber: d.VehicleNumber,
		VehicleType:   string(d.VehicleType),
		TotalEarnings: d.TotalEarnings,
		TotalPayouts:  d.TotalPayouts,
		IsActive:      d.IsActive,
		CreatedAt:     formatTime(d.CreatedAt),
	}
}

func toDriverResponses(drivers []*domain.Driver) []DriverResponse {
	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, toDriverResponse(d))
	}
	return response
}

// CreateProfile handles POST /v1/drivers
func (h *DriverHandler) CreateProfile(c *gin.Context) {
	var req CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	driver, err := h.driverService.CreateDriverProfile(c.Request.Context(), caller(c), service.CreateDriverProfileRequest{
		DealerID:      req.DealerID,
		LicenseNumber: req.LicenseNumber,
		LicenseExpiry: req.LicenseExpiry,
		VehicleNumber: req.VehicleNumber,
		VehicleType:   domain.VehicleType(req.VehicleType),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// ListAvailable handles GET /v1/drivers/available?vehicle_type=SUV
func (h *DriverHandler) ListAvailable(c *gin.Context) {
	drivers, err := h.driverService.ListAvailableDrivers(c.Request.Context(), domain.VehicleType(c.Query("vehicle_type")))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponses(drivers))
}

// Profile handles GET /v1/drivers/profile
func (h *DriverHandler) Profile(c *gin.Context) {
	driver, err := h.driverService.GetDriverProfile(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponse(driver))
}
