package service

import (
	"errors"

	"fleet/internal/pricing"
	"fleet/internal/repository"
)

var (
	// ErrInvalidBookingID is returned when booking ID is empty.
	ErrInvalidBookingID = errors.New("invalid booking id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPayoutID is returned when payout ID is empty.
	ErrInvalidPayoutID = errors.New("invalid payout id")

	// ErrInvalidBookingStatus is returned for an unknown booking status.
	ErrInvalidBookingStatus = errors.New("invalid booking status")

	// ErrInvalidTripStatus is returned for an unknown trip status.
	ErrInvalidTripStatus = errors.New("invalid trip status")

	// ErrInvalidVehicleType is returned for an unknown vehicle type.
	ErrInvalidVehicleType = errors.New("invalid vehicle type")

	// ErrInvalidPaymentAmount is returned when payment amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrInvalidRole is returned when registering with an unknown role.
	ErrInvalidRole = errors.New("invalid role")

	// ErrMissingField is returned when a required field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrTripNotFound is returned when the trip does not exist or belongs to someone else.
	ErrTripNotFound = errors.New("trip not found")

	// ErrDriverNotFound is returned when the driver does not exist.
	ErrDriverNotFound = errors.New("driver not found")

	// ErrDriverProfileNotFound is returned when the caller has no driver profile.
	ErrDriverProfileNotFound = errors.New("driver profile not found")

	// ErrDealerNotFound is returned when the dealer does not exist.
	ErrDealerNotFound = errors.New("dealer not found")

	// ErrDealerProfileNotFound is returned when the caller has no dealer profile.
	ErrDealerProfileNotFound = errors.New("dealer profile not found")

	// ErrPayoutNotFound is returned when the payout does not exist.
	ErrPayoutNotFound = errors.New("payout not found")

	// ErrUserNotFound is returned when the user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrBookingNotPending is returned when accepting a booking that is no longer PENDING.
	ErrBookingNotPending = errors.New("booking is not pending")

	// ErrIllegalTransition is returned when the requested status cannot follow the current one.
	ErrIllegalTransition = errors.New("illegal booking status transition")

	// ErrBookingChanged is returned when the booking moved on between read and write.
	ErrBookingChanged = errors.New("booking was modified concurrently")

	// ErrPayoutNotPending is returned when processing an already processed payout.
	ErrPayoutNotPending = errors.New("payout is not pending")

	// ErrPayoutBusy is returned when another request is processing the same payout.
	ErrPayoutBusy = errors.New("payout is being processed")

	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrDriverProfileExists is returned when the caller already has a driver profile.
	ErrDriverProfileExists = errors.New("driver profile already exists")

	// ErrInvalidCredentials is returned for an unknown email or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller's role or ownership does not allow the operation.
	ErrForbidden = errors.New("forbidden")
)

// Kind classifies errors for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	}
	return "internal"
}

var kinds = []struct {
	kind Kind
	errs []error
}{
	{KindInvalidInput, []error{
		ErrInvalidBookingID, ErrInvalidTripID, ErrInvalidDriverID, ErrInvalidPayoutID,
		ErrInvalidBookingStatus, ErrInvalidTripStatus, ErrInvalidVehicleType,
		ErrInvalidPaymentAmount, ErrInvalidPaymentMethod, ErrInvalidRole, ErrMissingField,
		pricing.ErrNegativeDistance, pricing.ErrInvalidDays, pricing.ErrNegativePrice,
	}},
	{KindNotFound, []error{
		ErrBookingNotFound, ErrTripNotFound, ErrDriverNotFound, ErrDriverProfileNotFound,
		ErrDealerNotFound, ErrDealerProfileNotFound, ErrPayoutNotFound, ErrUserNotFound,
		repository.ErrNotFound,
	}},
	{KindConflict, []error{
		ErrBookingNotPending, ErrIllegalTransition, ErrBookingChanged, ErrPayoutNotPending,
		ErrPayoutBusy, ErrEmailTaken, ErrDriverProfileExists, repository.ErrDuplicate,
	}},
	{KindForbidden, []error{ErrForbidden}},
	{KindUnauthorized, []error{ErrInvalidCredentials}},
}

// KindOf returns the kind of err, KindInternal when unclassified.
func KindOf(err error) Kind {
	for _, k := range kinds {
		for _, target := range k.errs {
			if errors.Is(err, target) {
				return k.kind
			}
		}
	}
	return KindInternal
}

// notFound maps repository.ErrNotFound onto a domain-specific sentinel.
func notFound(err, as error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return as
	}
	return err
}
