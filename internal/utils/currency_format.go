package utils

import "github.com/shopspring/decimal"

// DefaultExponent is the number of decimal places one display unit carries.
// Amounts are stored as integers in base units; 100 base units render as
// "1.00" with the default exponent.
const DefaultExponent = 2

// FormatBaseUnits renders a base-unit amount as a decimal string using the
// default exponent.
// Example: 12345 returns "123.45"; -50 returns "-0.50".
func FormatBaseUnits(amount int64) string {
	return FormatWithExponent(amount, DefaultExponent)
}

// FormatWithExponent renders a base-unit amount with the given exponent.
// Example: amount 12345 with exponent 0 returns "12345".
func FormatWithExponent(amount int64, exponent int32) string {
	return decimal.New(amount, -exponent).StringFixed(exponent)
}
