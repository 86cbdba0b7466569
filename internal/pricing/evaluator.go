// Package pricing selects the pricing rule applying to a booking and evaluates it
// into an HT/TTC price pair with an auditable breakdown.
package pricing

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/money"
	"github.com/velvena/velvena/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Evaluator turns a rule and a booking into a price calculation.
// It holds no state besides its configuration and is safe for concurrent use.
type Evaluator struct {
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

func NewEvaluator(defaultTaxRate decimal.Decimal) *Evaluator {
	return &Evaluator{
		defaultTaxRate: defaultTaxRate,
		now:            time.Now,
	}
}

// WithClock replaces the clock stamping calculations
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// DefaultTaxRate returns the rate applied when a rule does not set its own
func (e *Evaluator) DefaultTaxRate() decimal.Decimal {
	return e.defaultTaxRate
}

// Evaluate prices d over the booking b with rule
func (e *Evaluator) Evaluate(rule *pricingrule.PricingRule, d *dress.Dress, b BookingContext) (*calculation.PriceCalculation, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	var (
		res *result
		err error
	)

	switch cfg := rule.Config.(type) {
	case *pricingrule.PerDayConfig:
		res, err = e.evaluatePerDay(cfg, d, b)
	case *pricingrule.TieredConfig:
		res, err = e.evaluateTiered(cfg, d, b)
	case *pricingrule.FlatRateConfig:
		res, err = e.evaluateFlatRate(cfg, d, b)
	case *pricingrule.FixedPriceConfig:
		res = e.evaluateFixedPrice(cfg)
	default:
		err = ierr.NewErrorf("unsupported calculation config %T", rule.Config).
			WithHint("Pricing rule strategy is not supported").
			Mark(ierr.ErrInvalidRuleConfig)
	}
	if err != nil {
		return nil, err
	}

	res.RuleID = rule.ID
	res.RuleName = rule.Name
	res.Strategy = rule.Strategy
	res.DurationDays = b.DurationDays
	res.DurationHours = b.DurationHours

	return &calculation.PriceCalculation{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_CALCULATION),
		DressID:       lo.FromPtr(d).ID,
		FinalPriceHT:  res.finalHT,
		FinalPriceTTC: res.finalTTC,
		Breakdown:     res.Breakdown,
		CalculatedAt:  e.now().UTC(),
	}, nil
}

// result pairs the public breakdown with the final amounts
type result struct {
	calculation.Breakdown
	finalHT  decimal.Decimal
	finalTTC decimal.Decimal
}

// unitPrices resolves the per day price pair of d under cfg.
// The dress catalog stores prices at the default rate, the side not chosen as
// source is re-derived with the rule's own rate.
func (e *Evaluator) unitPrices(cfg pricingrule.BasePricing, d *dress.Dress) (ht, ttc, rate decimal.Decimal, err error) {
	if d == nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, ierr.NewError("dress is required").
			WithHint("Dress is required to price a duration based rule").
			Mark(ierr.ErrValidation)
	}

	dressHT, dressTTC, err := d.BasePrices(e.defaultTaxRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, decimal.Zero, err
	}

	// a tax exempt rental is charged the price before tax on both sides
	if !cfg.TaxApplied() {
		return dressHT, dressHT, decimal.Zero, nil
	}

	rate = cfg.EffectiveTaxRate(e.defaultTaxRate)
	if cfg.Source() == types.BASE_PRICE_SOURCE_HT {
		return dressHT, money.HTToTTC(dressHT, rate), rate, nil
	}
	return money.TTCToHT(dressTTC, rate), dressTTC, rate, nil
}

// finalize rounds the raw source side total and derives the other side from it
func finalize(raw decimal.Decimal, cfg pricingrule.BasePricing, rate decimal.Decimal) (ht, ttc decimal.Decimal) {
	total := applyRounding(raw, cfg.Rounding)
	if cfg.Source() == types.BASE_PRICE_SOURCE_HT {
		return total, money.HTToTTC(total, rate)
	}
	return money.TTCToHT(total, rate), total
}

func applyRounding(amount decimal.Decimal, mode types.RoundingMode) decimal.Decimal {
	switch mode {
	case types.ROUND_UP:
		return amount.Ceil()
	case types.ROUND_DOWN:
		return amount.Floor()
	case types.ROUND_NEAREST:
		return amount.Round(0)
	default:
		return money.Round(amount)
	}
}

func sourceSide(cfg pricingrule.BasePricing, ht, ttc decimal.Decimal) decimal.Decimal {
	if cfg.Source() == types.BASE_PRICE_SOURCE_HT {
		return ht
	}
	return ttc
}

// durationBased prices unit x days x factor
func (e *Evaluator) durationBased(cfg pricingrule.BasePricing, d *dress.Dress, days int, factor decimal.Decimal) (*result, error) {
	unitHT, unitTTC, rate, err := e.unitPrices(cfg, d)
	if err != nil {
		return nil, err
	}

	quantity := decimal.NewFromInt(int64(days))
	raw := sourceSide(cfg, unitHT, unitTTC).Mul(quantity).Mul(factor)
	finalHT, finalTTC := finalize(raw, cfg, rate)

	return &result{
		Breakdown: calculation.Breakdown{
			UnitPriceHT:  unitHT,
			UnitPriceTTC: unitTTC,
			SubtotalHT:   money.Round(unitHT.Mul(quantity)),
			SubtotalTTC:  money.Round(unitTTC.Mul(quantity)),
			TaxRate:      rate,
			Rounding:     cfg.Rounding,
		},
		finalHT:  finalHT,
		finalTTC: finalTTC,
	}, nil
}

func (e *Evaluator) evaluatePerDay(cfg *pricingrule.PerDayConfig, d *dress.Dress, b BookingContext) (*result, error) {
	return e.durationBased(cfg.BasePricing, d, b.DurationDays, decimal.NewFromInt(1))
}

func (e *Evaluator) evaluateTiered(cfg *pricingrule.TieredConfig, d *dress.Dress, b BookingContext) (*result, error) {
	tier, ok := cfg.FindTier(b.DurationDays)
	if !ok {
		return nil, ierr.NewErrorf("no tier contains %d days", b.DurationDays).
			WithHintf("No pricing tier covers a %d day rental", b.DurationDays).
			WithReportableDetails(map[string]any{"duration_days": b.DurationDays}).
			Mark(ierr.ErrNoMatchingTier)
	}

	factor := hundred.Sub(tier.DiscountPercentage).Div(hundred)
	res, err := e.durationBased(cfg.BasePricing, d, b.DurationDays, factor)
	if err != nil {
		return nil, err
	}

	res.DiscountPercentage = lo.ToPtr(tier.DiscountPercentage)
	res.TierMinDays = lo.ToPtr(tier.MinDays)
	res.TierMaxDays = tier.MaxDays
	return res, nil
}

func (e *Evaluator) evaluateFlatRate(cfg *pricingrule.FlatRateConfig, d *dress.Dress, b BookingContext) (*result, error) {
	periodDays := cfg.PeriodLength()
	periods := (b.DurationDays + periodDays - 1) / periodDays
	if periods < 1 {
		periods = 1
	}

	unitHT, unitTTC, rate, err := e.unitPrices(cfg.BasePricing, d)
	if err != nil {
		return nil, err
	}

	multiplier := *cfg.FixedMultiplier
	raw := sourceSide(cfg.BasePricing, unitHT, unitTTC).Mul(multiplier).Mul(decimal.NewFromInt(int64(periods)))
	finalHT, finalTTC := finalize(raw, cfg.BasePricing, rate)

	days := decimal.NewFromInt(int64(b.DurationDays))
	return &result{
		Breakdown: calculation.Breakdown{
			UnitPriceHT:  unitHT,
			UnitPriceTTC: unitTTC,
			SubtotalHT:   money.Round(unitHT.Mul(days)),
			SubtotalTTC:  money.Round(unitTTC.Mul(days)),
			TaxRate:      rate,
			Rounding:     cfg.Rounding,
			Period:       cfg.AppliesToPeriod,
			PeriodDays:   lo.ToPtr(periodDays),
			Periods:      lo.ToPtr(periods),
			Multiplier:   lo.ToPtr(multiplier),
		},
		finalHT:  finalHT,
		finalTTC: finalTTC,
	}, nil
}

// evaluateFixedPrice ignores the duration. The missing side is derived.
func (e *Evaluator) evaluateFixedPrice(cfg *pricingrule.FixedPriceConfig) *result {
	rate := lo.FromPtrOr(cfg.TaxRate, e.defaultTaxRate)

	var ht, ttc decimal.Decimal
	switch {
	case cfg.FixedAmountHT != nil && cfg.FixedAmountTTC != nil:
		ht, ttc = money.Round(*cfg.FixedAmountHT), money.Round(*cfg.FixedAmountTTC)
	case cfg.FixedAmountTTC != nil:
		ttc = money.Round(*cfg.FixedAmountTTC)
		ht = money.TTCToHT(ttc, rate)
	default:
		ht = money.Round(*cfg.FixedAmountHT)
		ttc = money.HTToTTC(ht, rate)
	}

	return &result{
		Breakdown: calculation.Breakdown{
			UnitPriceHT:  ht,
			UnitPriceTTC: ttc,
			SubtotalHT:   ht,
			SubtotalTTC:  ttc,
			TaxRate:      rate,
		},
		finalHT:  ht,
		finalTTC: ttc,
	}
}
