// Package loan holds the pure financial formulas for loan terms.
// All amounts are in cents; arithmetic runs on decimals and results are
// rounded to the nearest cent.
package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

// Default simple-interest rates by loan type, in percent. An approver may
// override the rate at approval time.
const (
	DefaultInternalRate = 20.0
	DefaultExternalRate = 30.0
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// Interest computes simple interest prorated by duration over a 12-month
// base: amount * (rate/100) * (months/12).
func Interest(amountCents int64, ratePercent float64, durationMonths int) int64 {
	amount := decimal.NewFromInt(amountCents)
	rate := decimal.NewFromFloat(ratePercent).Div(hundred)
	period := decimal.NewFromInt(int64(durationMonths)).Div(monthsInYear)
	return amount.Mul(rate).Mul(period).Round(0).IntPart()
}

// TotalRepayment is principal plus simple interest.
func TotalRepayment(amountCents int64, ratePercent float64, durationMonths int) int64 {
	return amountCents + Interest(amountCents, ratePercent, durationMonths)
}

// MonthlyPayment divides the total repayment evenly across the duration.
// A zero duration is invalid and rejected upstream; here it returns the
// total unchanged, matching the ledger's historical behaviour.
func MonthlyPayment(amountCents int64, ratePercent float64, durationMonths int) int64 {
	total := TotalRepayment(amountCents, ratePercent, durationMonths)
	if durationMonths <= 0 {
		return total
	}
	return decimal.NewFromInt(total).
		Div(decimal.NewFromInt(int64(durationMonths))).
		Round(0).IntPart()
}

// LateFee is remaining * (lateFeePercent/100), charged only once the loan has
// been overdue for longer than its grace period. Otherwise zero.
func LateFee(remainingCents int64, lateFeePercent float64, overdueSince *time.Time, gracePeriodDays int, now time.Time) int64 {
	if overdueSince == nil {
		return 0
	}
	daysOverdue := int(now.Sub(*overdueSince).Hours() / 24)
	if daysOverdue <= gracePeriodDays {
		return 0
	}
	return decimal.NewFromInt(remainingCents).
		Mul(decimal.NewFromFloat(lateFeePercent)).
		Div(hundred).
		Round(0).IntPart()
}

// DefaultRate returns the type-default interest rate for a loan.
func DefaultRate(loanType string) float64 {
	if loanType == "External" {
		return DefaultExternalRate
	}
	return DefaultInternalRate
}
