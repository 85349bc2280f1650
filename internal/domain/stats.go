package domain

// DashboardStats summarises a driver, dealer or customer dashboard.
// TotalSpent is only populated for customers.
type DashboardStats struct {
	TotalBookings  int
	ActiveTrips    int
	TotalEarnings  float64
	PendingPayouts float64
	TotalSpent     float64
}

// AdminStats is the platform-wide summary.
type AdminStats struct {
	TotalUsers     int
	TotalBookings  int
	TotalRevenue   float64
	AdminEarnings  float64
	PendingPayouts int
	ActiveBookings int
}
