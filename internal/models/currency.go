package models

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Currencies Stripe charges in whole units, with no minor unit.
var zeroDecimalCurrencies = []string{
	"bif", "clp", "djf", "gnf", "jpy", "kmf", "krw", "mga",
	"pyg", "rwf", "ugx", "vnd", "vuv", "xaf", "xof", "xpf",
}

// Currencies Stripe charges in thousandths.
var threeDecimalCurrencies = []string{"bhd", "jod", "kwd", "omr", "tnd"}

// MinorUnitExponent is the number of decimal places between a price and the
// smallest unit the payment provider charges in.
func MinorUnitExponent(currency string) int32 {
	c := strings.ToLower(strings.TrimSpace(currency))
	switch {
	case lo.Contains(zeroDecimalCurrencies, c):
		return 0
	case lo.Contains(threeDecimalCurrencies, c):
		return 3
	default:
		return 2
	}
}

// ToMinorUnits converts an amount into the smallest unit of currency.
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(MinorUnitExponent(currency)).Round(0).IntPart()
}

// FromMinorUnits converts a provider amount back into a decimal amount.
func FromMinorUnits(units int64, currency string) decimal.Decimal {
	return decimal.New(units, -MinorUnitExponent(currency))
}

// FormatAmount renders an amount with the currency's number of decimals.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(MinorUnitExponent(currency))
}
