package dto

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/contract"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/validator"
)

// ContractAmountsRequest describes a contract draft to price
type ContractAmountsRequest struct {
	Items         []CalculatePriceRequest `json:"items" validate:"required,min=1,unique=DressID,dive"`
	ServiceTypeID string                  `json:"service_type_id,omitempty"`
	Addons        []contract.Addon        `json:"addons,omitempty"`
	Package       *contract.Package       `json:"package,omitempty"`
	Payments      contract.PaymentSummary `json:"payments"`
}

func (r *ContractAmountsRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	for _, addon := range r.Addons {
		if addon.Quantity < 0 {
			return ierr.NewErrorf("addon %s has a negative quantity", addon.ID).
				WithHint("Addon quantity must not be negative").
				Mark(ierr.ErrValidation)
		}
		if addon.PriceHT.IsNegative() || addon.PriceTTC.IsNegative() {
			return ierr.NewErrorf("addon %s has a negative price", addon.ID).
				WithHint("Addon prices must not be negative").
				Mark(ierr.ErrValidation)
		}
	}

	if r.Package != nil && (r.Package.PriceHT.IsNegative() || r.Package.PriceTTC.IsNegative()) {
		return ierr.NewErrorf("package %s has a negative price", r.Package.ID).
			WithHint("Package prices must not be negative").
			Mark(ierr.ErrValidation)
	}

	payments := []decimal.Decimal{
		r.Payments.AccountPaidHT,
		r.Payments.AccountPaidTTC,
		r.Payments.CautionPaidHT,
		r.Payments.CautionPaidTTC,
	}
	if lo.SomeBy(payments, decimal.Decimal.IsNegative) {
		return ierr.NewError("payments must not be negative").
			WithHint("Recorded payments must not be negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToCalculationRequests decodes every item. An unparsable date fails the whole request,
// an inverted rental window is left to the calculator which reports it on the item.
func (r *ContractAmountsRequest) ToCalculationRequests() ([]calculation.Request, error) {
	reqs := make([]calculation.Request, 0, len(r.Items))
	for _, item := range r.Items {
		req, err := item.parse()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// ContractAmountsResponse is the priced contract draft
type ContractAmountsResponse struct {
	Calculations []contract.DressPriceCalculation `json:"calculations"`
	Errors       []contract.CalculationError      `json:"errors"`
	AllReady     bool                             `json:"all_ready"`
	Amounts      contract.ContractAmounts         `json:"amounts"`
	Balance      contract.Balance                 `json:"balance"`
}
