package contract

import (
	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/domain/calculation"
)

// DressPriceCalculation is the working state of one dress of a contract draft
type DressPriceCalculation struct {
	DressID     string                        `json:"dress_id"`
	Calculation *calculation.PriceCalculation `json:"calculation"`
	Loading     bool                          `json:"loading"`
	Error       string                        `json:"error,omitempty"`

	// Token identifies the request that produced this state.
	// Completions carrying an older token are discarded.
	Token uint64 `json:"-"`
}

// Succeeded reports whether the entry holds a usable calculation
func (d *DressPriceCalculation) Succeeded() bool {
	return d != nil && !d.Loading && d.Error == "" && d.Calculation != nil
}

// CalculationError pairs a dress with the reason its price is unavailable
type CalculationError struct {
	DressID string `json:"dress_id"`
	Error   string `json:"error"`
}

// Addon is an optional service sold with the contract ex retouches, pressing
type Addon struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	PriceHT  decimal.Decimal `json:"price_ht"`
	PriceTTC decimal.Decimal `json:"price_ttc"`
	Quantity int             `json:"quantity"`
}

// Package is a bundle sold at a single price, it may include addons
type Package struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	PriceHT          decimal.Decimal `json:"price_ht"`
	PriceTTC         decimal.Decimal `json:"price_ttc"`
	IncludedAddonIDs []string        `json:"included_addon_ids,omitempty"`
}

// PaymentSummary is the cumulative amount recorded by the payment ledger
type PaymentSummary struct {
	AccountPaidHT  decimal.Decimal `json:"account_paid_ht"`
	AccountPaidTTC decimal.Decimal `json:"account_paid_ttc"`
	CautionPaidHT  decimal.Decimal `json:"caution_paid_ht"`
	CautionPaidTTC decimal.Decimal `json:"caution_paid_ttc"`
}

// ContractAmounts is the full money picture of a contract
type ContractAmounts struct {
	TotalPriceHT  decimal.Decimal `json:"total_price_ht"`
	TotalPriceTTC decimal.Decimal `json:"total_price_ttc"`

	// Account is what the customer owes, always equal to the total
	AccountHT      decimal.Decimal `json:"account_ht"`
	AccountTTC     decimal.Decimal `json:"account_ttc"`
	AccountPaidHT  decimal.Decimal `json:"account_paid_ht"`
	AccountPaidTTC decimal.Decimal `json:"account_paid_ttc"`

	// Deposit is the suggested acompte
	DepositHT  decimal.Decimal `json:"deposit_ht"`
	DepositTTC decimal.Decimal `json:"deposit_ttc"`

	CautionHT      decimal.Decimal `json:"caution_ht"`
	CautionTTC     decimal.Decimal `json:"caution_ttc"`
	CautionPaidHT  decimal.Decimal `json:"caution_paid_ht"`
	CautionPaidTTC decimal.Decimal `json:"caution_paid_ttc"`
}

// Balance is what remains to be collected on a contract
type Balance struct {
	RemainingAccountHT  decimal.Decimal `json:"remaining_account_ht"`
	RemainingAccountTTC decimal.Decimal `json:"remaining_account_ttc"`
	RemainingCautionHT  decimal.Decimal `json:"remaining_caution_ht"`
	RemainingCautionTTC decimal.Decimal `json:"remaining_caution_ttc"`
	PaidPercentage      decimal.Decimal `json:"paid_percentage"`
	FullyPaid           bool            `json:"fully_paid"`
}
