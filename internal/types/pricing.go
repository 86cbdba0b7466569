package types

import (
	"slices"

	ierr "github.com/velvena/velvena/internal/errors"
)

// PricingStrategy is the algorithm a pricing rule uses ex per_day, tiered
type PricingStrategy string

const (
	// PRICING_STRATEGY_PER_DAY charges the dress base price for every rented day
	PRICING_STRATEGY_PER_DAY PricingStrategy = "per_day"

	// PRICING_STRATEGY_TIERED applies a duration based discount on the per day total
	// ex 1-3 days full price, 4+ days 10% off
	PRICING_STRATEGY_TIERED PricingStrategy = "tiered"

	// PRICING_STRATEGY_FLAT_RATE charges a multiple of the base price per period
	// ex a weekend costs 2.5 days
	PRICING_STRATEGY_FLAT_RATE PricingStrategy = "flat_rate"

	// PRICING_STRATEGY_FIXED_PRICE ignores duration entirely
	PRICING_STRATEGY_FIXED_PRICE PricingStrategy = "fixed_price"
)

func (s PricingStrategy) String() string {
	return string(s)
}

func (s PricingStrategy) Validate() error {
	allowed := []PricingStrategy{
		PRICING_STRATEGY_PER_DAY,
		PRICING_STRATEGY_TIERED,
		PRICING_STRATEGY_FLAT_RATE,
		PRICING_STRATEGY_FIXED_PRICE,
	}
	if !slices.Contains(allowed, s) {
		return ierr.NewErrorf("unknown pricing strategy %q", string(s)).
			WithHintf("Pricing strategy must be one of %v", allowed).
			WithReportableDetails(map[string]any{"strategy": string(s)}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RoundingMode is applied to the final total of a rule, in whole currency units
type RoundingMode string

const (
	// ROUND_NONE keeps cent precision
	ROUND_NONE RoundingMode = ""
	// ROUND_UP rounds to the ceiling value ex 1.01 -> 2.00
	ROUND_UP RoundingMode = "up"
	// ROUND_DOWN rounds to the floor value ex 1.99 -> 1.00
	ROUND_DOWN RoundingMode = "down"
	// ROUND_NEAREST rounds half away from zero ex 1.50 -> 2.00
	ROUND_NEAREST RoundingMode = "nearest"
)

func (r RoundingMode) Validate() error {
	allowed := []RoundingMode{ROUND_NONE, ROUND_UP, ROUND_DOWN, ROUND_NEAREST}
	if !slices.Contains(allowed, r) {
		return ierr.NewErrorf("unknown rounding mode %q", string(r)).
			WithHint("Rounding must be one of up, down or nearest").
			Mark(ierr.ErrInvalidRuleConfig)
	}
	return nil
}

// BasePriceSource tells which side of the dress base price a rule starts from
type BasePriceSource string

const (
	BASE_PRICE_SOURCE_TTC BasePriceSource = "ttc"
	BASE_PRICE_SOURCE_HT  BasePriceSource = "ht"
)

func (b BasePriceSource) Validate() error {
	if b != BASE_PRICE_SOURCE_TTC && b != BASE_PRICE_SOURCE_HT {
		return ierr.NewErrorf("unknown base price source %q", string(b)).
			WithHint("Base price source must be either ht or ttc").
			Mark(ierr.ErrInvalidRuleConfig)
	}
	return nil
}

// RentalPeriod is the unit a flat rate rule charges for
type RentalPeriod string

const (
	RENTAL_PERIOD_DAY     RentalPeriod = "day"
	RENTAL_PERIOD_WEEKEND RentalPeriod = "weekend"
	RENTAL_PERIOD_WEEK    RentalPeriod = "week"
	RENTAL_PERIOD_MONTH   RentalPeriod = "month"
)

var rentalPeriodDays = map[RentalPeriod]int{
	RENTAL_PERIOD_DAY:     1,
	RENTAL_PERIOD_WEEKEND: 2,
	RENTAL_PERIOD_WEEK:    7,
	RENTAL_PERIOD_MONTH:   30,
}

// Days returns the default length of the period in days
func (p RentalPeriod) Days() int {
	return rentalPeriodDays[p]
}

func (p RentalPeriod) Validate() error {
	if _, ok := rentalPeriodDays[p]; !ok {
		return ierr.NewErrorf("unknown rental period %q", string(p)).
			WithHint("Period must be one of day, weekend, week or month").
			Mark(ierr.ErrInvalidRuleConfig)
	}
	return nil
}

const (
	// DEFAULT_MONEY_PRECISION is the number of decimals kept on every amount
	DEFAULT_MONEY_PRECISION = 2
)
