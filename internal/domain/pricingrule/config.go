package pricingrule

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

// CalculationConfig is the closed union of strategy configurations.
// Each variant only carries the fields its evaluator reads.
type CalculationConfig interface {
	Strategy() types.PricingStrategy
	Validate() error
}

// DecodeCalculationConfig builds the config variant of strategy from a raw payload.
// Missing fields are left empty and take their defaults at evaluation time.
func DecodeCalculationConfig(strategy types.PricingStrategy, raw map[string]interface{}) (CalculationConfig, error) {
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	switch strategy {
	case types.PRICING_STRATEGY_PER_DAY:
		cfg, err := types.ToStruct[PerDayConfig](raw)
		return &cfg, err
	case types.PRICING_STRATEGY_TIERED:
		cfg, err := types.ToStruct[TieredConfig](raw)
		return &cfg, err
	case types.PRICING_STRATEGY_FLAT_RATE:
		cfg, err := types.ToStruct[FlatRateConfig](raw)
		return &cfg, err
	default:
		cfg, err := types.ToStruct[FixedPriceConfig](raw)
		return &cfg, err
	}
}

// BasePricing holds the knobs shared by every duration based strategy
type BasePricing struct {
	// BasePriceSource selects the dress price side the rule starts from, ttc by default
	BasePriceSource types.BasePriceSource `json:"base_price_source,omitempty"`
	// ApplyTax is true by default, false means the rental is tax exempt
	ApplyTax *bool `json:"apply_tax,omitempty"`
	// TaxRate in percent, overrides the configured default rate
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
	// Rounding applies to the final total in whole currency units
	Rounding types.RoundingMode `json:"rounding,omitempty"`
}

func (b BasePricing) Source() types.BasePriceSource {
	if b.BasePriceSource == "" {
		return types.BASE_PRICE_SOURCE_TTC
	}
	return b.BasePriceSource
}

func (b BasePricing) TaxApplied() bool {
	return b.ApplyTax == nil || *b.ApplyTax
}

// EffectiveTaxRate returns the rate used for HT/TTC conversion.
// A tax exempt rule converts at 0%.
func (b BasePricing) EffectiveTaxRate(defaultRate decimal.Decimal) decimal.Decimal {
	if !b.TaxApplied() {
		return decimal.Zero
	}
	return lo.FromPtrOr(b.TaxRate, defaultRate)
}

func (b BasePricing) Validate() error {
	if err := b.Source().Validate(); err != nil {
		return err
	}
	if err := b.Rounding.Validate(); err != nil {
		return err
	}
	if b.TaxRate != nil && b.TaxRate.IsNegative() {
		return invalidField("tax_rate", "Tax rate must not be negative")
	}
	return nil
}

// PerDayConfig prices base price x days
type PerDayConfig struct {
	BasePricing
}

func (c *PerDayConfig) Strategy() types.PricingStrategy {
	return types.PRICING_STRATEGY_PER_DAY
}

func (c *PerDayConfig) Validate() error {
	return c.BasePricing.Validate()
}

// Tier is a duration band of a tiered rule
type Tier struct {
	MinDays int `json:"min_days"`
	// MaxDays is nil for the open ended last tier
	MaxDays            *int            `json:"max_days"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
}

// Contains reports whether days falls within [min_days, max_days]
func (t Tier) Contains(days int) bool {
	if days < t.MinDays {
		return false
	}
	return t.MaxDays == nil || days <= *t.MaxDays
}

// TieredConfig discounts the per day total with the first tier containing the duration
type TieredConfig struct {
	BasePricing
	Tiers []Tier `json:"tiers"`
}

func (c *TieredConfig) Strategy() types.PricingStrategy {
	return types.PRICING_STRATEGY_TIERED
}

func (c *TieredConfig) Validate() error {
	if err := c.BasePricing.Validate(); err != nil {
		return err
	}
	if len(c.Tiers) == 0 {
		return missingField("tiers")
	}
	for _, tier := range c.Tiers {
		if tier.MaxDays != nil && *tier.MaxDays < tier.MinDays {
			return invalidField("tiers", "Tier max_days must not be lower than min_days")
		}
		if tier.DiscountPercentage.IsNegative() || tier.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
			return invalidField("tiers", "Tier discount_percentage must be between 0 and 100")
		}
	}
	return nil
}

// FindTier returns the first tier containing days
func (c *TieredConfig) FindTier(days int) (Tier, bool) {
	return lo.Find(c.Tiers, func(t Tier) bool {
		return t.Contains(days)
	})
}

// FlatRateConfig charges base price x multiplier for every started period
type FlatRateConfig struct {
	BasePricing
	AppliesToPeriod types.RentalPeriod `json:"applies_to_period"`
	FixedMultiplier *decimal.Decimal   `json:"fixed_multiplier"`
	// PeriodDays overrides the default period length
	PeriodDays *int `json:"period_days,omitempty"`
}

func (c *FlatRateConfig) Strategy() types.PricingStrategy {
	return types.PRICING_STRATEGY_FLAT_RATE
}

func (c *FlatRateConfig) Validate() error {
	if err := c.BasePricing.Validate(); err != nil {
		return err
	}
	if c.AppliesToPeriod == "" {
		return missingField("applies_to_period")
	}
	if err := c.AppliesToPeriod.Validate(); err != nil {
		return err
	}
	if c.FixedMultiplier == nil {
		return missingField("fixed_multiplier")
	}
	if !c.FixedMultiplier.IsPositive() {
		return invalidField("fixed_multiplier", "Fixed multiplier must be greater than 0")
	}
	if c.PeriodDays != nil && *c.PeriodDays <= 0 {
		return invalidField("period_days", "Period days must be greater than 0")
	}
	return nil
}

// PeriodLength returns the number of days covered by one period
func (c *FlatRateConfig) PeriodLength() int {
	if c.PeriodDays != nil {
		return *c.PeriodDays
	}
	return c.AppliesToPeriod.Days()
}

// FixedPriceConfig returns the same amount whatever the duration
type FixedPriceConfig struct {
	FixedAmountHT  *decimal.Decimal `json:"fixed_amount_ht,omitempty"`
	FixedAmountTTC *decimal.Decimal `json:"fixed_amount_ttc,omitempty"`
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
}

func (c *FixedPriceConfig) Strategy() types.PricingStrategy {
	return types.PRICING_STRATEGY_FIXED_PRICE
}

func (c *FixedPriceConfig) Validate() error {
	if c.FixedAmountHT == nil && c.FixedAmountTTC == nil {
		return ierr.NewError("missing required config field fixed_amount_ttc").
			WithHint("Field fixed_amount_ht or fixed_amount_ttc is required for fixed_price").
			WithReportableDetails(map[string]any{"field": "fixed_amount_ttc"}).
			Mark(ierr.ErrInvalidRuleConfig)
	}
	if (c.FixedAmountHT != nil && c.FixedAmountHT.IsNegative()) ||
		(c.FixedAmountTTC != nil && c.FixedAmountTTC.IsNegative()) {
		return invalidField("fixed_amount", "Fixed amounts must not be negative")
	}
	if c.TaxRate != nil && c.TaxRate.IsNegative() {
		return invalidField("tax_rate", "Tax rate must not be negative")
	}
	return nil
}

func missingField(field string) error {
	return ierr.NewErrorf("missing required config field %s", field).
		WithHintf("Field %s is required for this pricing strategy", field).
		WithReportableDetails(map[string]any{"field": field}).
		Mark(ierr.ErrInvalidRuleConfig)
}

func invalidField(field, hint string) error {
	return ierr.NewErrorf("invalid config field %s", field).
		WithHint(hint).
		WithReportableDetails(map[string]any{"field": field}).
		Mark(ierr.ErrInvalidRuleConfig)
}
