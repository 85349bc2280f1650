package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// PayoutHandler handles HTTP requests for payouts.
type PayoutHandler struct {
	payoutService *service.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(payoutService *service.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// PayoutResponse is the HTTP response for payout data.
type PayoutResponse struct {
	ID               string  `json:"id"`
	BookingID        string  `json:"booking_id"`
	BookingPrice     float64 `json:"booking_price"`
	AdminCommission  float64 `json:"admin_commission"`
	DealerAmount     float64 `json:"dealer_amount"`
	DealerCommission float64 `json:"dealer_commission"`
	DriverAmount     float64 `json:"driver_amount"`
	DealerID         string  `json:"dealer_id,omitempty"`
	DriverID         string  `json:"driver_id,omitempty"`
	AdminID          string  `json:"admin_id,omitempty"`
	Status           string  `json:"status"`
	ProcessedAt      string  `json:"processed_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func toPayoutResponse(p *domain.Payout) PayoutResponse {
	return PayoutResponse{
		ID:               p.ID,
		BookingID:        p.BookingID,
		BookingPrice:     p.BookingPrice,
		AdminCommission:  p.AdminCommission,
		DealerAmount:     p.DealerAmount,
		DealerCommission: p.DealerCommission,
		DriverAmount:     p.DriverAmount,
		DealerID:         p.DealerID,
		DriverID:         p.DriverID,
		AdminID:          p.AdminID,
		Status:           string(p.Status),
		ProcessedAt:      formatTime(p.ProcessedAt),
		CreatedAt:        formatTime(p.CreatedAt),
	}
}

// ListPayouts handles GET /v1/payouts
func (h *PayoutHandler) ListPayouts(c *gin.Context) {
	payouts, err := h.payoutService.ListPayouts(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		response = append(response, toPayoutResponse(p))
	}
	respondJSON(c, http.StatusOK, response)
}

// ProcessPayout handles PATCH /v1/payouts/:id/process
func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	payout, err := h.payoutService.ProcessPayout(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toPayoutResponse(payout))
}

// Statement handles GET /v1/payouts/:id/statement
func (h *PayoutHandler) Statement(c *gin.Context) {
	id := c.Param("id")
	pdf, err := h.payoutService.PayoutStatement(c.Request.Context(), caller(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="payout-`+id+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
