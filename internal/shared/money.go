package shared

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// Column limits: quantities and rates are NUMERIC(10,2), amounts NUMERIC(12,2).
const (
	MaxQuantity = 99999999.99
	MaxRate     = 99999999.99
	MaxAmount   = 9999999999.99
)

// RoundMoney rounds a decimal to two places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Round2 rounds v to two decimal places, half away from zero.
func Round2(v float64) float64 {
	r, _ := RoundMoney(decimal.NewFromFloat(v)).Float64()
	return r
}

// MultiplyMoney returns round(a*b, 2) computed in decimal arithmetic.
func MultiplyMoney(a, b float64) float64 {
	v, _ := RoundMoney(decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b))).Float64()
	return v
}

// FormatMoney renders an amount with thousands grouping, e.g. "LKR 15,000.00".
func FormatMoney(currency string, amount float64) string {
	rounded, _ := RoundMoney(decimal.NewFromFloat(amount)).Float64()
	if currency == "" {
		return moneyPrinter.Sprintf("%.2f", rounded)
	}
	return moneyPrinter.Sprintf("%s %.2f", currency, rounded)
}
