package testutil

import (
	"context"
	"math"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/velvena/velvena/internal/domain/calculation"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/money"
	"github.com/velvena/velvena/internal/types"
)

// FakePriceCalculator prices dresses from a fixed per day TTC price and counts calls
type FakePriceCalculator struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	errs   map[string]error
	calls  map[string]int

	// OnCalculate runs before every calculation, tests use it to block or reorder calls
	OnCalculate func(ctx context.Context, req calculation.Request)
}

func NewFakePriceCalculator() *FakePriceCalculator {
	return &FakePriceCalculator{
		prices: make(map[string]decimal.Decimal),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetPrice registers the per day TTC price of a dress
func (f *FakePriceCalculator) SetPrice(dressID string, perDayTTC decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[dressID] = perDayTTC
	delete(f.errs, dressID)
}

// SetError makes every calculation of a dress fail with err
func (f *FakePriceCalculator) SetError(dressID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[dressID] = err
}

// Calls returns how many calculations were requested for a dress
func (f *FakePriceCalculator) Calls(dressID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[dressID]
}

// TotalCalls returns how many calculations were requested overall
func (f *FakePriceCalculator) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *FakePriceCalculator) CalculatePrice(ctx context.Context, req calculation.Request) (*calculation.PriceCalculation, error) {
	f.mu.Lock()
	f.calls[req.DressID]++
	hook := f.OnCalculate
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, req)
	}

	// a cancelled call fails like an aborted request to the catalog
	if err := ctx.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Pricing catalog is unreachable").
			Mark(ierr.ErrUpstreamUnavailable)
	}

	f.mu.Lock()
	price, ok := f.prices[req.DressID]
	err := f.errs[req.DressID]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		price = decimal.Zero
	}

	days := int(math.Ceil(req.EndDate.Sub(req.StartDate).Hours() / 24))
	ttc := money.Round(price.Mul(decimal.NewFromInt(int64(days))))

	return &calculation.PriceCalculation{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRICE_CALCULATION),
		DressID:       req.DressID,
		FinalPriceHT:  money.TTCToHT(ttc, money.DefaultTaxRate),
		FinalPriceTTC: ttc,
		Breakdown: calculation.Breakdown{
			RuleID:       "rule_fake",
			Strategy:     types.PRICING_STRATEGY_PER_DAY,
			DurationDays: days,
			UnitPriceTTC: price,
		},
	}, nil
}
