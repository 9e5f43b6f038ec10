package console

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.Korean)

// FormatMoney groups digits the Korean way and keeps up to two decimals,
// so backend amounts are shown without rounding to whole won.
func FormatMoney(v float64) string {
	if v < 0 {
		return "-₩" + printer.Sprint(number.Decimal(-v, number.MaxFractionDigits(2)))
	}
	return "₩" + printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func FormatRate(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2))) + "%"
}
