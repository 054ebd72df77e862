package format

import (
	"strconv"
	"time"
)

// Price formats a decimal currency amount with a dollar sign.
// Example: Price(9.99) => "$9.99"
func Price(amount float64) string {
	return "$" + Amount(amount)
}

// Amount formats a decimal currency amount to two fixed decimals without
// a symbol, as used for the cart grand total.
func Amount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

// Date formats a timestamp in a short locale-friendly form. Zero times
// render as a dash rather than the epoch.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}
