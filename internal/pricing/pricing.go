// Package pricing derives booking prices and revenue splits from a fixed
// set of rates.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNegativeDistance is returned when the estimated distance is below
	// zero or is not a finite number.
	ErrNegativeDistance = errors.New("estimated distance must be a non-negative number")

	// ErrInvalidDays is returned when the day count is below one.
	ErrInvalidDays = errors.New("total days must be at least one")

	// ErrNegativePrice is returned when splitting a negative or non-finite price.
	ErrNegativePrice = errors.New("booking price must be a non-negative number")
)

var validate = validator.New()

// Rates holds the fare and commission configuration. It is treated as
// immutable once validated.
type Rates struct {
	BaseFare                float64 `validate:"gte=0"`
	PerKmRate               float64 `validate:"gte=0"`
	PerDayRate              float64 `validate:"gte=0"`
	AdminCommissionPercent  float64 `validate:"gte=0,lte=100"`
	DealerCommissionPercent float64 `validate:"gte=0,lte=100"`
	DealerPoolFraction      float64 `validate:"gte=0,lte=1"` // share of the post-commission remainder paid to the dealer
}

// DefaultRates returns the marketplace defaults.
func DefaultRates() Rates {
	return Rates{
		BaseFare:                50.0,
		PerKmRate:               5.0,
		PerDayRate:              200.0,
		AdminCommissionPercent:  10.0,
		DealerCommissionPercent: 15.0,
		DealerPoolFraction:      0.22,
	}
}

// Validate checks every rate against its allowed range.
func (r Rates) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid pricing rates: %w", err)
	}
	return nil
}

// Price returns BaseFare + km*PerKmRate + days*PerDayRate. No rounding is applied.
func (r Rates) Price(estimatedKm float64, totalDays int) (float64, error) {
	if !(estimatedKm >= 0) || math.IsInf(estimatedKm, 1) {
		return 0, ErrNegativeDistance
	}
	if totalDays < 1 {
		return 0, ErrInvalidDays
	}
	return r.BaseFare + estimatedKm*r.PerKmRate + float64(totalDays)*r.PerDayRate, nil
}

// Split is the three-way division of a booking price.
// AdminCommission + DealerAmount + DriverAmount equals the price.
type Split struct {
	BookingPrice     float64
	AdminCommission  float64
	DealerAmount     float64
	DealerCommission float64
	DriverAmount     float64
}

// Split divides a booking price between platform, dealer and driver.
// DealerCommission is the dealer's own cut of its pool and is not
// subtracted again from anyone.
func (r Rates) Split(bookingPrice float64, hasDealer bool) (Split, error) {
	if !(bookingPrice >= 0) || math.IsInf(bookingPrice, 1) {
		return Split{}, ErrNegativePrice
	}

	admin := bookingPrice * r.AdminCommissionPercent / 100
	remaining := bookingPrice - admin

	s := Split{
		BookingPrice:    bookingPrice,
		AdminCommission: admin,
		DriverAmount:    remaining,
	}
	if hasDealer {
		dealerTotal := remaining * r.DealerPoolFraction
		s.DealerAmount = dealerTotal
		s.DealerCommission = dealerTotal * r.DealerCommissionPercent / 100
		s.DriverAmount = remaining - dealerTotal
	}
	return s, nil
}
