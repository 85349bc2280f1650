package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet/internal/domain"
	"fleet/internal/service"
)

// StatsHandler serves dashboard summaries.
type StatsHandler struct {
	statsService *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// DashboardResponse is the HTTP response for driver, dealer and customer dashboards.
type DashboardResponse struct {
	TotalBookings  int     `json:"total_bookings"`
	ActiveTrips    int     `json:"active_trips"`
	TotalEarnings  float64 `json:"total_earnings"`
	PendingPayouts float64 `json:"pending_payouts"`
	TotalSpent     float64 `json:"total_spent"`
}

// AdminStatsResponse is the HTTP response for the platform dashboard.
type AdminStatsResponse struct {
	TotalUsers     int     `json:"total_users"`
	TotalBookings  int     `json:"total_bookings"`
	TotalRevenue   float64 `json:"total_revenue"`
	AdminEarnings  float64 `json:"admin_earnings"`
	PendingPayouts int     `json:"pending_payouts"`
	ActiveBookings int     `json:"active_bookings"`
}

type dashboardFunc func(ctx context.Context, caller domain.Identity) (*domain.DashboardStats, error)

func (h *StatsHandler) dashboard(fn dashboardFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := fn(c.Request.Context(), caller(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondJSON(c, http.StatusOK, DashboardResponse{
			TotalBookings:  stats.TotalBookings,
			ActiveTrips:    stats.ActiveTrips,
			TotalEarnings:  stats.TotalEarnings,
			PendingPayouts: stats.PendingPayouts,
			TotalSpent:     stats.TotalSpent,
		})
	}
}

// Driver handles GET /v1/drivers/stats
func (h *StatsHandler) Driver(c *gin.Context) { h.dashboard(h.statsService.DriverStats)(c) }

// Dealer handles GET /v1/dealers/stats
func (h *StatsHandler) Dealer(c *gin.Context) { h.dashboard(h.statsService.DealerStats)(c) }

// Customer handles GET /v1/customer/stats
func (h *StatsHandler) Customer(c *gin.Context) { h.dashboard(h.statsService.CustomerStats)(c) }

// Admin handles GET /v1/admin/stats
func (h *StatsHandler) Admin(c *gin.Context) {
	stats, err := h.statsService.AdminStats(c.Request.Context(), caller(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, AdminStatsResponse{
		TotalUsers:     stats.TotalUsers,
		TotalBookings:  stats.TotalBookings,
		TotalRevenue:   stats.TotalRevenue,
		AdminEarnings:  stats.AdminEarnings,
		PendingPayouts: stats.PendingPayouts,
		ActiveBookings: stats.ActiveBookings,
	})
}
