package internal

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// RupeeSymbol is the only currency symbol recognised in screenshots
const RupeeSymbol = "₹"

// Rupee formats whole-rupee amounts with Indian digit grouping (1,00,000)
type Rupee struct {
	printer *message.Printer
}

// NewRupee returns a formatter using the en-IN locale
func NewRupee() Rupee {
	return Rupee{printer: message.NewPrinter(language.MustParse("en-IN"))}
}

// Format formats a single amount with the rupee symbol, e.g. "₹1,500"
func (r Rupee) Format(amount int) string {
	return RupeeSymbol + r.printer.Sprint(number.Decimal(amount))
}

// FormatOptional formats an optional amount, returning "-" when absent
func (r Rupee) FormatOptional(amount *int) string {
	if amount == nil {
		return "-"
	}
	return r.Format(*amount)
}
