package stripe

import "math"

// MinorUnitAmount converts a course price into the minor-unit integer amount
// (e.g. cents) expected by the payment provider. The price is first divided
// by the configured exchange divisor and then scaled to minor units, with a
// single rounding step at the end so a price of 33.2 with the default
// divisor yields exactly 1000.
func MinorUnitAmount(price, divisor float64) int64 {
	if divisor <= 0 {
		divisor = DefaultExchangeDivisor
	}
	return int64(math.Round(price / divisor * 100))
}

// FromMinorUnit converts a minor-unit amount reported by the payment provider
// back into a decimal amount.
func FromMinorUnit(amount int64) float64 {
	return float64(amount) / 100
}
