package pricing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatCurrency renders a price as symbol + comma-grouped amount with two decimals
func FormatCurrency(symbol string, v float64) string {
	return symbol + printer.Sprintf("%.2f", v)
}
