// Package money holds the HT/TTC conversions and the cent rounding policy
// shared by every amount computed by the pricing engine.
package money

import (
	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/types"
)

var (
	hundred = decimal.NewFromInt(100)

	// DefaultTaxRate is the business VAT rate in percent
	DefaultTaxRate = decimal.RequireFromString(types.DefaultTaxRate)
)

// Round rounds an amount to cent precision, half away from zero
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(types.DEFAULT_MONEY_PRECISION)
}

// HTToTTC adds taxRate percent to a tax exclusive amount
func HTToTTC(amount, taxRate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(hundred.Add(taxRate)).Div(hundred))
}

// TTCToHT removes taxRate percent from a tax inclusive amount
func TTCToHT(amount, taxRate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(hundred).Div(hundred.Add(taxRate)))
}

// Percentage returns percentage percent of amount, rounded to cents
func Percentage(amount, percentage decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(percentage).Div(hundred))
}

// CalculateDeposit returns the acompte suggested for a total
func CalculateDeposit(totalTTC, percentage decimal.Decimal) decimal.Decimal {
	if percentage.IsNegative() {
		return decimal.Zero
	}
	return Percentage(totalTTC, percentage)
}

// CautionPolicy describes how the security deposit of a service is derived.
// A fixed amount wins over a percentage.
type CautionPolicy struct {
	Percentage *decimal.Decimal
	AmountTTC  *decimal.Decimal
}

// CalculateCaution returns the security deposit for a total under policy
func CalculateCaution(totalTTC decimal.Decimal, policy CautionPolicy) decimal.Decimal {
	if policy.AmountTTC != nil {
		if policy.AmountTTC.IsNegative() {
			return decimal.Zero
		}
		return Round(*policy.AmountTTC)
	}
	if policy.Percentage != nil && policy.Percentage.IsPositive() {
		return Percentage(totalTTC, *policy.Percentage)
	}
	return decimal.Zero
}

// CalculateRemainingAmount returns max(round(total - paid), 0)
func CalculateRemainingAmount(total, paid decimal.Decimal) decimal.Decimal {
	remaining := Round(total.Sub(paid))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// PaidPercentage returns the share of total already paid, capped at 100.
// A zero total reports 0.
func PaidPercentage(total, paid decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() || !paid.IsPositive() {
		return decimal.Zero
	}
	pct := Round(paid.Mul(hundred).Div(total))
	if pct.GreaterThan(hundred) {
		return hundred
	}
	return pct
}

// Sum adds already rounded amounts and rounds the result
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round(total)
}
