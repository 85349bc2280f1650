package service

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"fleet/internal/domain"
)

// renderStatement lays out the revenue split of a payout on one A4 page.
// booking may be nil.
func renderStatement(payout *domain.Payout, booking *domain.Booking, at time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payout Statement", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYOUT STATEMENT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	line := func(label, value string) {
		pdf.Cell(50, 7, label)
		pdf.Cell(0, 7, value)
		pdf.Ln(7)
	}

	line("Payout ID:", payout.ID)
	line("Booking ID:", payout.BookingID)
	line("Status:", string(payout.Status))
	line("Generated:", payout.CreatedAt.Format("Jan 02, 2006 3:04 PM"))
	if !payout.ProcessedAt.IsZero() {
		line("Processed:", payout.ProcessedAt.Format("Jan 02, 2006 3:04 PM"))
	}
	line("Issued:", at.Format("Jan 02, 2006 3:04 PM"))
	pdf.Ln(4)

	if booking != nil {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Booking")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		line("Route:", booking.PickupLocation+" -> "+booking.DropoffLocation)
		line("Date:", booking.BookingDate)
		line("Distance:", fmt.Sprintf("%.1f km x %s", booking.EstimatedKm, money(booking.PerKmRate)))
		line("Days:", fmt.Sprintf("%d x %s", booking.TotalDays, money(booking.PerDayRate)))
		line("Base fare:", money(booking.BaseFare))
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Split")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	line("Booking price:", money(payout.BookingPrice))
	line("Admin commission:", money(payout.AdminCommission))
	if payout.DealerID != "" {
		line("Dealer amount:", money(payout.DealerAmount))
		line("  of which commission:", money(payout.DealerCommission))
	}
	line("Driver amount:", money(payout.DriverAmount))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Dealer commission is the dealer's share of the dealer amount and is not deducted separately.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render statement: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
