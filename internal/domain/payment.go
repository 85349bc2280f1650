package domain

import "time"

// PaymentStatus is shared by payments and the booking's payment_status.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod represents how a customer paid.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodWallet       PaymentMethod = "WALLET"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// Payment is a single payment attempt against a booking.
type Payment struct {
	ID            string
	BookingID     string
	UserID        string
	Amount        float64
	Method        PaymentMethod
	TransactionID string
	Status        PaymentStatus
	CreatedAt     time.Time
}
