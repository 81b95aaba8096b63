package utils

import "math"

// RoundToPaise rounds a rupee amount to two decimal places using
// round-half-up (0.005 rounds to 0.01). Commission payouts are computed
// with this rule, so exact half-paise amounts always round in the
// recipient's favour. Amounts are never negative in this system.
func RoundToPaise(amount float64) float64 {
	return math.Floor(amount*100+0.5) / 100
}

// CommissionAmount computes the payout for one ancestor:
// amount * percentage / 100, rounded to the paise.
func CommissionAmount(paymentAmount, percentage float64) float64 {
	return RoundToPaise(paymentAmount * percentage / 100)
}
