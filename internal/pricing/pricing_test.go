package pricing

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func testDress() *dress.Dress {
	return &dress.Dress{
		ID:             "dress_1",
		Name:           "Robe sirène",
		DressType:      "wedding",
		PricePerDayHT:  lo.ToPtr(dec("100")),
		PricePerDayTTC: lo.ToPtr(dec("120")),
		ServiceTypeID:  "st_rental",
	}
}

func rule(id string, strategy types.PricingStrategy, cfg pricingrule.CalculationConfig) *pricingrule.PricingRule {
	return &pricingrule.PricingRule{
		ID:       id,
		Name:     id,
		Strategy: strategy,
		IsActive: true,
		Config:   cfg,
	}
}

func booking(days int) BookingContext {
	return BookingContext{
		DressType:     "wedding",
		ServiceType:   "st_rental",
		Season:        SeasonSummer,
		Weekday:       "saturday",
		DurationDays:  days,
		DurationHours: days * 24,
	}
}

func TestNewBookingContext(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		season    string
		wantDays  int
		wantHours int
		wantSeas  string
		wantDay   string
	}{
		{
			name:      "whole days",
			start:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
			wantDays:  2,
			wantHours: 48,
			wantSeas:  SeasonSummer,
			wantDay:   "saturday",
		},
		{
			name:      "started day counts as a full day",
			start:     time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC),
			end:       time.Date(2024, 1, 11, 12, 0, 0, 0, time.UTC),
			wantDays:  2,
			wantHours: 26,
			wantSeas:  SeasonWinter,
			wantDay:   "wednesday",
		},
		{
			name:      "explicit season wins",
			start:     time.Date(2024, 10, 7, 0, 0, 0, 0, time.UTC),
			end:       time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC),
			season:    "High",
			wantDays:  1,
			wantHours: 24,
			wantSeas:  "high",
			wantDay:   "monday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := calculation.Request{
				DressID:      "dress_1",
				StartDate:    tt.start,
				EndDate:      tt.end,
				Season:       tt.season,
				CustomerType: " VIP ",
			}
			b := NewBookingContext(req, testDress())
			assert.Equal(t, tt.wantDays, b.DurationDays)
			assert.Equal(t, tt.wantHours, b.DurationHours)
			assert.Equal(t, tt.wantSeas, b.Season)
			assert.Equal(t, tt.wantDay, b.Weekday)
			assert.Equal(t, "vip", b.CustomerType)
			assert.Equal(t, "wedding", b.DressType)
			assert.Equal(t, "st_rental", b.ServiceType)
		})
	}
}

func TestSeasonOf(t *testing.T) {
	assert.Equal(t, SeasonWinter, SeasonOf(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonSpring, SeasonOf(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonSummer, SeasonOf(time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, SeasonAutumn, SeasonOf(time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)))
}

func TestSelectRule(t *testing.T) {
	perDay := &pricingrule.PerDayConfig{}
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("highest priority wins", func(t *testing.T) {
		low := rule("rule_low", types.PRICING_STRATEGY_PER_DAY, perDay)
		low.Priority = 1
		high := rule("rule_high", types.PRICING_STRATEGY_PER_DAY, perDay)
		high.Priority = 5

		selected, err := SelectRule([]*pricingrule.PricingRule{low, high}, booking(2))
		require.NoError(t, err)
		assert.Equal(t, "rule_high", selected.ID)
	})

	t.Run("tie broken by most recent update", func(t *testing.T) {
		a := rule("rule_a", types.PRICING_STRATEGY_PER_DAY, perDay)
		a.UpdatedAt = older
		b := rule("rule_b", types.PRICING_STRATEGY_PER_DAY, perDay)
		b.UpdatedAt = newer

		selected, err := SelectRule([]*pricingrule.PricingRule{a, b}, booking(2))
		require.NoError(t, err)
		assert.Equal(t, "rule_b", selected.ID)
	})

	t.Run("tie broken by lowest id", func(t *testing.T) {
		b := rule("rule_b", types.PRICING_STRATEGY_PER_DAY, perDay)
		a := rule("rule_a", types.PRICING_STRATEGY_PER_DAY, perDay)

		selected, err := SelectRule([]*pricingrule.PricingRule{b, a}, booking(2))
		require.NoError(t, err)
		assert.Equal(t, "rule_a", selected.ID)

		selected, err = SelectRule([]*pricingrule.PricingRule{a, b}, booking(2))
		require.NoError(t, err)
		assert.Equal(t, "rule_a", selected.ID)
	})

	t.Run("inactive rules are skipped", func(t *testing.T) {
		inactive := rule("rule_inactive", types.PRICING_STRATEGY_PER_DAY, perDay)
		inactive.Priority = 10
		inactive.IsActive = false
		active := rule("rule_active", types.PRICING_STRATEGY_PER_DAY, perDay)

		selected, err := SelectRule([]*pricingrule.PricingRule{inactive, active}, booking(2))
		require.NoError(t, err)
		assert.Equal(t, "rule_active", selected.ID)
	})

	t.Run("no match", func(t *testing.T) {
		r := rule("rule_evening", types.PRICING_STRATEGY_PER_DAY, perDay)
		r.AppliesTo.DressTypes = []string{"evening"}

		_, err := SelectRule([]*pricingrule.PricingRule{r}, booking(2))
		require.Error(t, err)
		assert.True(t, ierr.IsNoApplicableRule(err))

		_, err = SelectRule(nil, booking(2))
		assert.True(t, ierr.IsNoApplicableRule(err))
	})
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name      string
		appliesTo pricingrule.AppliesTo
		serviceID *string
		days      int
		want      bool
	}{
		{name: "empty predicate matches everything", days: 3, want: true},
		{name: "dress type is case insensitive", appliesTo: pricingrule.AppliesTo{DressTypes: []string{"Wedding"}}, days: 1, want: true},
		{name: "dress type mismatch", appliesTo: pricingrule.AppliesTo{DressTypes: []string{"evening"}}, days: 1, want: false},
		{name: "customer type required but absent", appliesTo: pricingrule.AppliesTo{CustomerTypes: []string{"vip"}}, days: 1, want: false},
		{name: "season match", appliesTo: pricingrule.AppliesTo{Seasons: []string{"winter", "SUMMER"}}, days: 1, want: true},
		{name: "weekday mismatch", appliesTo: pricingrule.AppliesTo{Weekdays: []string{"monday"}}, days: 1, want: false},
		{name: "service types match", appliesTo: pricingrule.AppliesTo{ServiceTypes: []string{"st_rental"}}, days: 1, want: true},
		{name: "min duration inclusive", appliesTo: pricingrule.AppliesTo{MinDurationDays: lo.ToPtr(3)}, days: 3, want: true},
		{name: "below min duration", appliesTo: pricingrule.AppliesTo{MinDurationDays: lo.ToPtr(3)}, days: 2, want: false},
		{name: "max duration inclusive", appliesTo: pricingrule.AppliesTo{MaxDurationDays: lo.ToPtr(3)}, days: 3, want: true},
		{name: "above max duration", appliesTo: pricingrule.AppliesTo{MaxDurationDays: lo.ToPtr(3)}, days: 4, want: false},
		{name: "max hours", appliesTo: pricingrule.AppliesTo{MaxDurationHours: lo.ToPtr(24)}, days: 2, want: false},
		{name: "bound service type", serviceID: lo.ToPtr("st_rental"), days: 1, want: true},
		{name: "other service type", serviceID: lo.ToPtr("st_sale"), days: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rule("rule", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{})
			r.AppliesTo = tt.appliesTo
			r.ServiceTypeID = tt.serviceID
			assert.Equal(t, tt.want, Matches(r, booking(tt.days)))
		})
	}
}

func TestEvaluate(t *testing.T) {
	evaluator := NewEvaluator(dec("20"))
	tiers := []pricingrule.Tier{
		{MinDays: 1, MaxDays: lo.ToPtr(3), DiscountPercentage: dec("0")},
		{MinDays: 4, DiscountPercentage: dec("10")},
	}

	tests := []struct {
		name    string
		rule    *pricingrule.PricingRule
		dress   *dress.Dress
		days    int
		wantHT  string
		wantTTC string
	}{
		{
			name:    "per day from ttc",
			rule:    rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{}),
			days:    3,
			wantHT:  "300",
			wantTTC: "360",
		},
		{
			name: "per day from ht",
			rule: rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{
				BasePricing: pricingrule.BasePricing{BasePriceSource: types.BASE_PRICE_SOURCE_HT},
			}),
			days:    3,
			wantHT:  "300",
			wantTTC: "360",
		},
		{
			name: "per day tax exempt",
			rule: rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{
				BasePricing: pricingrule.BasePricing{ApplyTax: lo.ToPtr(false)},
			}),
			days:    2,
			wantHT:  "200",
			wantTTC: "200",
		},
		{
			name: "per day tax exempt from ht",
			rule: rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{
				BasePricing: pricingrule.BasePricing{
					BasePriceSource: types.BASE_PRICE_SOURCE_HT,
					ApplyTax:        lo.ToPtr(false),
				},
			}),
			days:    2,
			wantHT:  "200",
			wantTTC: "200",
		},
		{
			name: "per day rounded up on the total",
			rule: rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{
				BasePricing: pricingrule.BasePricing{Rounding: types.ROUND_UP},
			}),
			dress: &dress.Dress{ID: "dress_2", PricePerDayTTC: lo.ToPtr(dec("33.33"))},
			days:  1,
			// 34 / 1.2
			wantHT:  "28.33",
			wantTTC: "34",
		},
		{
			name: "per day rounded down",
			rule: rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{
				BasePricing: pricingrule.BasePricing{Rounding: types.ROUND_DOWN},
			}),
			dress:   &dress.Dress{ID: "dress_2", PricePerDayTTC: lo.ToPtr(dec("33.99"))},
			days:    2,
			wantHT:  "55.83",
			wantTTC: "67",
		},
		{
			name:    "tiered first tier",
			rule:    rule("r", types.PRICING_STRATEGY_TIERED, &pricingrule.TieredConfig{Tiers: tiers}),
			days:    2,
			wantHT:  "200",
			wantTTC: "240",
		},
		{
			name:    "tiered open ended tier",
			rule:    rule("r", types.PRICING_STRATEGY_TIERED, &pricingrule.TieredConfig{Tiers: tiers}),
			days:    5,
			wantHT:  "450",
			wantTTC: "540",
		},
		{
			name: "flat rate week with partial period",
			rule: rule("r", types.PRICING_STRATEGY_FLAT_RATE, &pricingrule.FlatRateConfig{
				AppliesToPeriod: types.RENTAL_PERIOD_WEEK,
				FixedMultiplier: lo.ToPtr(dec("5")),
			}),
			days:    10,
			wantHT:  "1000",
			wantTTC: "1200",
		},
		{
			name: "flat rate weekend",
			rule: rule("r", types.PRICING_STRATEGY_FLAT_RATE, &pricingrule.FlatRateConfig{
				AppliesToPeriod: types.RENTAL_PERIOD_WEEKEND,
				FixedMultiplier: lo.ToPtr(dec("1.5")),
			}),
			days:    2,
			wantHT:  "150",
			wantTTC: "180",
		},
		{
			name: "flat rate period override",
			rule: rule("r", types.PRICING_STRATEGY_FLAT_RATE, &pricingrule.FlatRateConfig{
				AppliesToPeriod: types.RENTAL_PERIOD_MONTH,
				FixedMultiplier: lo.ToPtr(dec("20")),
				PeriodDays:      lo.ToPtr(28),
			}),
			days:    29,
			wantHT:  "4000",
			wantTTC: "4800",
		},
		{
			name: "fixed price from ttc",
			rule: rule("r", types.PRICING_STRATEGY_FIXED_PRICE, &pricingrule.FixedPriceConfig{
				FixedAmountTTC: lo.ToPtr(dec("240")),
			}),
			days:    12,
			wantHT:  "200",
			wantTTC: "240",
		},
		{
			name: "fixed price from ht with own rate",
			rule: rule("r", types.PRICING_STRATEGY_FIXED_PRICE, &pricingrule.FixedPriceConfig{
				FixedAmountHT: lo.ToPtr(dec("100")),
				TaxRate:       lo.ToPtr(dec("5.5")),
			}),
			days:    1,
			wantHT:  "100",
			wantTTC: "105.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.dress
			if d == nil {
				d = testDress()
			}
			calc, err := evaluator.Evaluate(tt.rule, d, booking(tt.days))
			require.NoError(t, err)
			assert.True(t, dec(tt.wantHT).Equal(calc.FinalPriceHT), "ht: want %s got %s", tt.wantHT, calc.FinalPriceHT)
			assert.True(t, dec(tt.wantTTC).Equal(calc.FinalPriceTTC), "ttc: want %s got %s", tt.wantTTC, calc.FinalPriceTTC)
			assert.Equal(t, tt.rule.ID, calc.Breakdown.RuleID)
			assert.Equal(t, tt.rule.Strategy, calc.Breakdown.Strategy)
			assert.Equal(t, d.ID, calc.DressID)
			assert.NotEmpty(t, calc.ID)
		})
	}
}

func TestEvaluateBreakdown(t *testing.T) {
	fixedNow := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	evaluator := NewEvaluator(dec("20")).WithClock(func() time.Time { return fixedNow })

	r := rule("rule_tiered", types.PRICING_STRATEGY_TIERED, &pricingrule.TieredConfig{
		Tiers: []pricingrule.Tier{{MinDays: 4, DiscountPercentage: dec("10")}},
	})
	calc, err := evaluator.Evaluate(r, testDress(), booking(5))
	require.NoError(t, err)

	b := calc.Breakdown
	assert.Equal(t, fixedNow, calc.CalculatedAt)
	assert.Equal(t, 5, b.DurationDays)
	assert.True(t, dec("100").Equal(b.UnitPriceHT))
	assert.True(t, dec("120").Equal(b.UnitPriceTTC))
	assert.True(t, dec("600").Equal(b.SubtotalTTC))
	assert.True(t, dec("20").Equal(b.TaxRate))
	require.NotNil(t, b.DiscountPercentage)
	assert.True(t, dec("10").Equal(*b.DiscountPercentage))
	assert.Equal(t, 4, *b.TierMinDays)
	assert.Nil(t, b.TierMaxDays)
}

func TestEvaluateErrors(t *testing.T) {
	evaluator := NewEvaluator(dec("20"))

	t.Run("no matching tier", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_TIERED, &pricingrule.TieredConfig{
			Tiers: []pricingrule.Tier{{MinDays: 2, MaxDays: lo.ToPtr(3)}},
		})
		_, err := evaluator.Evaluate(r, testDress(), booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsNoMatchingTier(err))
	})

	t.Run("missing tiers", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_TIERED, &pricingrule.TieredConfig{})
		_, err := evaluator.Evaluate(r, testDress(), booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRuleConfig(err))
		assert.Contains(t, err.Error(), "tiers")
	})

	t.Run("missing multiplier", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_FLAT_RATE, &pricingrule.FlatRateConfig{
			AppliesToPeriod: types.RENTAL_PERIOD_WEEK,
		})
		_, err := evaluator.Evaluate(r, testDress(), booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRuleConfig(err))
		assert.Contains(t, err.Error(), "fixed_multiplier")
	})

	t.Run("missing fixed amounts", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_FIXED_PRICE, &pricingrule.FixedPriceConfig{})
		_, err := evaluator.Evaluate(r, testDress(), booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRuleConfig(err))
		assert.Contains(t, err.Error(), "fixed_amount_ttc")
	})

	t.Run("missing config", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_PER_DAY, nil)
		_, err := evaluator.Evaluate(r, testDress(), booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsInvalidRuleConfig(err))
	})

	t.Run("dress without price", func(t *testing.T) {
		r := rule("r", types.PRICING_STRATEGY_PER_DAY, &pricingrule.PerDayConfig{})
		_, err := evaluator.Evaluate(r, &dress.Dress{ID: "dress_free"}, booking(1))
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
