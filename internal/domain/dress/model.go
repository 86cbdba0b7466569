package dress

import (
	"github.com/shopspring/decimal"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/money"
	"github.com/velvena/velvena/internal/types"
)

// Dress is a rentable item of the catalog
type Dress struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DressType string `json:"dress_type"`

	// Base prices for one rental day. Either side may be missing,
	// it is then derived from the other one.
	PricePerDayHT  *decimal.Decimal `json:"price_per_day_ht,omitempty"`
	PricePerDayTTC *decimal.Decimal `json:"price_per_day_ttc,omitempty"`

	ServiceTypeID string `json:"service_type_id,omitempty"`

	types.BaseModel
}

// BasePrices returns the per day price pair, deriving the missing side at taxRate
func (d *Dress) BasePrices(taxRate decimal.Decimal) (ht decimal.Decimal, ttc decimal.Decimal, err error) {
	switch {
	case d.PricePerDayHT != nil && d.PricePerDayTTC != nil:
		return *d.PricePerDayHT, *d.PricePerDayTTC, nil
	case d.PricePerDayTTC != nil:
		return money.TTCToHT(*d.PricePerDayTTC, taxRate), *d.PricePerDayTTC, nil
	case d.PricePerDayHT != nil:
		return *d.PricePerDayHT, money.HTToTTC(*d.PricePerDayHT, taxRate), nil
	default:
		return decimal.Zero, decimal.Zero, ierr.NewErrorf("dress %s has no base price", d.ID).
			WithHint("Dress must have a price per day before it can be priced").
			WithReportableDetails(map[string]any{"dress_id": d.ID}).
			Mark(ierr.ErrValidation)
	}
}
