package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/service"
)

// DealerHandler handles HTTP requests for a dealer's fleet.
type DealerHandler struct {
	driverService *service.DriverService
}

// NewDealerHandler creates a new DealerHandler.
func NewDealerHandler(driverService *service.DriverService) *DealerHandler {
	return &DealerHandler{driverService: driverService}
}

// Profile handles GET /v1/dealers/profile
func (h *DealerHandler) Profile(c *gin.Context) {
	dealer, err := h.driverService.GetDealerProfile(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, DealerResponse{
		ID:                  dealer.ID,
		UserID:              dealer.UserID,
		CompanyName:         dealer.CompanyName,
		CompanyRegistration: dealer.CompanyRegistration,
		TaxID:               dealer.TaxID,
		CommissionPercent:   dealer.CommissionPercent,
		TotalEarnings:       dealer.TotalEarnings,
		TotalPayouts:        dealer.TotalPayouts,
		CreatedAt:           formatTime(dealer.CreatedAt),
	})
}

// Drivers handles GET /v1/dealers/drivers
func (h *DealerHandler) Drivers(c *gin.Context) {
	drivers, err := h.driverService.ListDealerDrivers(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toDriverResponses(drivers))
}
