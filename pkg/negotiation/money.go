package negotiation

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a price with two decimals and English digit grouping.
func FormatPrice(v float64) string {
	return pricePrinter.Sprintf("%.2f", v)
}
