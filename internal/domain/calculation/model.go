package calculation

import (
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

// DateLayout is the ISO date format used on the wire
const DateLayout = "2006-01-02"

// Request asks for the price of one dress over a rental window
type Request struct {
	DressID   string
	StartDate time.Time
	EndDate   time.Time

	// PricingRuleID bypasses rule matching when set
	PricingRuleID string

	// Optional booking attributes used by rule matching
	CustomerType string
	Season       string
}

// Validate checks the request shape and the rental window
func (r Request) Validate() error {
	if r.DressID == "" {
		return ierr.NewError("dress_id is required").
			WithHint("Dress ID is required").
			Mark(ierr.ErrValidation)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ierr.NewError("start_date and end_date are required").
			WithHint("Rental start and end dates are required").
			Mark(ierr.ErrInvalidDateRange)
	}
	if !r.StartDate.Before(r.EndDate) {
		return ierr.NewErrorf("start date %s is not before end date %s",
			r.StartDate.Format(time.RFC3339), r.EndDate.Format(time.RFC3339)).
			WithHint("Rental start date must be before its end date").
			WithReportableDetails(map[string]any{
				"dress_id":   r.DressID,
				"start_date": r.StartDate.Format(DateLayout),
				"end_date":   r.EndDate.Format(DateLayout),
			}).
			Mark(ierr.ErrInvalidDateRange)
	}
	return nil
}

// ParseDate accepts an ISO date or a full RFC3339 timestamp
func ParseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("Date %q must be formatted as YYYY-MM-DD", value).
			Mark(ierr.ErrInvalidDateRange)
	}
	return t.UTC(), nil
}

// PriceCalculation is the immutable result of pricing one dress.
// Any input change produces a new calculation.
type PriceCalculation struct {
	ID            string          `json:"id"`
	DressID       string          `json:"dress_id"`
	FinalPriceHT  decimal.Decimal `json:"final_price_ht"`
	FinalPriceTTC decimal.Decimal `json:"final_price_ttc"`
	Breakdown     Breakdown       `json:"breakdown"`
	CalculatedAt  time.Time       `json:"calculated_at"`
}

// Breakdown explains which rule produced a price and with which parameters
type Breakdown struct {
	RuleID        string                `json:"rule_id"`
	RuleName      string                `json:"rule_name"`
	Strategy      types.PricingStrategy `json:"strategy"`
	DurationDays  int                   `json:"duration_days"`
	DurationHours int                   `json:"duration_hours"`

	UnitPriceHT  decimal.Decimal `json:"unit_price_ht"`
	UnitPriceTTC decimal.Decimal `json:"unit_price_ttc"`

	// Subtotals before discount and rounding
	SubtotalHT  decimal.Decimal `json:"subtotal_ht"`
	SubtotalTTC decimal.Decimal `json:"subtotal_ttc"`

	TaxRate  decimal.Decimal    `json:"tax_rate"`
	Rounding types.RoundingMode `json:"rounding,omitempty"`

	// Tiered
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	TierMinDays        *int             `json:"tier_min_days,omitempty"`
	TierMaxDays        *int             `json:"tier_max_days,omitempty"`

	// Flat rate
	Period     types.RentalPeriod `json:"period,omitempty"`
	PeriodDays *int               `json:"period_days,omitempty"`
	Periods    *int               `json:"periods,omitempty"`
	Multiplier *decimal.Decimal   `json:"multiplier,omitempty"`
}
