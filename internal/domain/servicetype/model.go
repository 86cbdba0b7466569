package servicetype

import (
	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/money"
)

// ServiceType groups rentals sharing the same deposit and caution terms
// ex "mariage", "soirée"
type ServiceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// CautionPercentage of the contract total held as security deposit
	CautionPercentage *decimal.Decimal `json:"caution_percentage,omitempty"`
	// CautionAmountTTC is a fixed security deposit, it wins over the percentage
	CautionAmountTTC *decimal.Decimal `json:"caution_amount_ttc,omitempty"`
	// DepositPercentage overrides the configured acompte percentage
	DepositPercentage *decimal.Decimal `json:"deposit_percentage,omitempty"`
}

// CautionPolicy returns the caution terms of the service type
func (s *ServiceType) CautionPolicy() money.CautionPolicy {
	if s == nil {
		return money.CautionPolicy{}
	}
	return money.CautionPolicy{
		Percentage: s.CautionPercentage,
		AmountTTC:  s.CautionAmountTTC,
	}
}
