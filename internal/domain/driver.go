package domain

import "time"

// VehicleType is the class of vehicle a driver operates.
type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "SEDAN"
	VehicleTypeSUV       VehicleType = "SUV"
	VehicleTypeHatchback VehicleType = "HATCHBACK"
	VehicleTypeLuxury    VehicleType = "LUXURY"
)

// Valid reports whether v is a known vehicle type.
func (v VehicleType) Valid() bool {
	switch v {
	case VehicleTypeSedan, VehicleTypeSUV, VehicleTypeHatchback, VehicleTypeLuxury:
		return true
	}
	return false
}

// Driver is the driver profile of a user, optionally operating under a dealer.
type Driver struct {
	ID            string
	UserID        string
	DealerID      string // empty when independent
	LicenseNumber string
	LicenseExpiry string
	VehicleNumber string
	VehicleType   VehicleType
	TotalEarnings float64
	TotalPayouts  float64
	IsActive      bool
	CreatedAt     time.Time
}

// Dealer is a fleet operator owning zero or more drivers.
type Dealer struct {
	ID                  string
	UserID              string
	CompanyName         string
	CompanyRegistration string
	TaxID               string
	BankAccount         string
	BankIFSC            string
	CommissionPercent   float64
	TotalEarnings       float64
	TotalPayouts        float64
	CreatedAt           time.Time
}

// DefaultDealerCommissionPercent is assigned to dealers created without an explicit rate.
const DefaultDealerCommissionPercent = 15.0
