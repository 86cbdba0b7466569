package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/contract"
	"github.com/velvena/velvena/internal/domain/servicetype"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/money"
	"golang.org/x/sync/singleflight"
)

// ContractOptions carries what a contract adds on top of its dresses
type ContractOptions struct {
	ServiceType *servicetype.ServiceType
	Package     *contract.Package
	Addons      []contract.Addon
	Payments    contract.PaymentSummary
}

// ContractCalculator keeps the per dress prices of one contract draft and folds
// them into contract amounts. It is safe for concurrent use.
type ContractCalculator struct {
	calculator PriceCalculator
	cache      cache.Cache
	logger     *logger.Logger

	taxRate           decimal.Decimal
	depositPercentage decimal.Decimal

	inflight singleflight.Group
	tokens   atomic.Uint64

	mu      sync.Mutex
	entries map[string]*contract.DressPriceCalculation
}

func NewContractCalculator(params ServiceParams, calculator PriceCalculator) *ContractCalculator {
	return &ContractCalculator{
		calculator:        calculator,
		cache:             params.Cache,
		logger:            params.Logger,
		taxRate:           params.Config.Pricing.DefaultTaxRate,
		depositPercentage: params.Config.Pricing.DepositPercentage,
		entries:           make(map[string]*contract.DressPriceCalculation),
	}
}

// CalculateDressPrice prices one dress and records the outcome.
// Failures are captured in the returned entry, never returned.
func (c *ContractCalculator) CalculateDressPrice(ctx context.Context, req calculation.Request) contract.DressPriceCalculation {
	token := c.tokens.Add(1)

	if err := req.Validate(); err != nil {
		return c.start(req.DressID, token, err)
	}
	c.start(req.DressID, token, nil)

	calc, err := c.calculate(ctx, req)
	return c.complete(ctx, req.DressID, token, calc, err)
}

// CalculateMultipleDresses prices every request concurrently.
// One failing dress never affects the others.
func (c *ContractCalculator) CalculateMultipleDresses(ctx context.Context, reqs []calculation.Request) []contract.DressPriceCalculation {
	results := make([]contract.DressPriceCalculation, len(reqs))

	var wg conc.WaitGroup
	for i, req := range reqs {
		wg.Go(func() {
			results[i] = c.CalculateDressPrice(ctx, req)
		})
	}
	wg.Wait()

	return results
}

// calculate reads through the cache and shares identical in flight calls
func (c *ContractCalculator) calculate(ctx context.Context, req calculation.Request) (*calculation.PriceCalculation, error) {
	key := cache.PriceCalculationKey(req.DressID, req.StartDate, req.EndDate, req.PricingRuleID)

	if cached := c.getCache(ctx, key); cached != nil {
		return cached, nil
	}

	// the shared call outlives any single caller, each caller waits on its own ctx
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		calc, err := c.calculator.CalculatePrice(context.WithoutCancel(ctx), req)
		if err != nil {
			return nil, err
		}
		if c.cache != nil {
			c.cache.Set(ctx, key, calc, 0)
		}
		return calc, nil
	})

	select {
	case <-ctx.Done():
		return nil, ierr.WithError(ctx.Err()).
			WithHint("Price calculation was cancelled").
			Mark(ierr.ErrSystem)
	case res := <-ch:
		if res.Shared {
			c.logger.WithContext(ctx).Debugw("joined in flight price calculation", "dress_id", req.DressID)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*calculation.PriceCalculation), nil
	}
}

func (c *ContractCalculator) getCache(ctx context.Context, key string) *calculation.PriceCalculation {
	if c.cache == nil {
		return nil
	}
	if value, found := c.cache.Get(ctx, key); found {
		if calc, ok := value.(*calculation.PriceCalculation); ok {
			return calc
		}
	}
	return nil
}

// start replaces the entry of a dress with the state of a new request
func (c *ContractCalculator) start(dressID string, token uint64, err error) contract.DressPriceCalculation {
	entry := &contract.DressPriceCalculation{
		DressID: dressID,
		Loading: err == nil,
		Token:   token,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.entries[dressID]; !ok || current.Token < token {
		c.entries[dressID] = entry
	}
	return *entry
}

// complete stores a result unless a newer request or a removal superseded it
func (c *ContractCalculator) complete(ctx context.Context, dressID string, token uint64, calc *calculation.PriceCalculation, err error) contract.DressPriceCalculation {
	entry := &contract.DressPriceCalculation{
		DressID:     dressID,
		Calculation: calc,
		Token:       token,
	}
	if err != nil {
		entry.Calculation = nil
		entry.Error = err.Error()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.entries[dressID]
	if !ok || current.Token != token {
		c.logger.WithContext(ctx).Debugw("discarding stale price calculation",
			"dress_id", dressID,
			"token", token,
		)
		return *entry
	}

	if err != nil {
		c.logger.WithContext(ctx).Infow("dress price calculation failed",
			"dress_id", dressID,
			"error", entry.Error,
		)
	}
	c.entries[dressID] = entry
	return *entry
}

// RemoveDress drops a dress. An in flight calculation for it is discarded on completion.
func (c *ContractCalculator) RemoveDress(dressID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, dressID)
}

// Reset drops every dress
func (c *ContractCalculator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*contract.DressPriceCalculation)
}

// Calculations returns a copy of every entry, sorted by dress id
func (c *ContractCalculator) Calculations() []contract.DressPriceCalculation {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := lo.MapToSlice(c.entries, func(_ string, e *contract.DressPriceCalculation) contract.DressPriceCalculation {
		return *e
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].DressID < out[j].DressID
	})
	return out
}

// Calculation returns the entry of a dress
func (c *ContractCalculator) Calculation(dressID string) (contract.DressPriceCalculation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[dressID]
	if !ok {
		return contract.DressPriceCalculation{}, false
	}
	return *e, true
}

// TotalPriceTTC sums the successful calculations. Loading or failed dresses count as 0.
func (c *ContractCalculator) TotalPriceTTC() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	amounts := make([]decimal.Decimal, 0, len(c.entries))
	for _, e := range c.entries {
		if e.Succeeded() {
			amounts = append(amounts, e.Calculation.FinalPriceTTC)
		}
	}
	return money.Sum(amounts...)
}

// TotalPriceHT is derived from the TTC total so that per dress rounding does not add up
func (c *ContractCalculator) TotalPriceHT() decimal.Decimal {
	return money.TTCToHT(c.TotalPriceTTC(), c.taxRate)
}

func (c *ContractCalculator) HasCalculationErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return lo.SomeBy(lo.Values(c.entries), func(e *contract.DressPriceCalculation) bool {
		return e.Error != ""
	})
}

// CalculationErrors lists the failed dresses, sorted by dress id
func (c *ContractCalculator) CalculationErrors() []contract.CalculationError {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := make([]contract.CalculationError, 0)
	for _, e := range c.entries {
		if e.Error != "" {
			errs = append(errs, contract.CalculationError{DressID: e.DressID, Error: e.Error})
		}
	}
	sort.Slice(errs, func(i, j int) bool {
		return errs[i].DressID < errs[j].DressID
	})
	return errs
}

// AllCalculationsReady is true when at least one dress is tracked and every one succeeded
func (c *ContractCalculator) AllCalculationsReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return false
	}
	return lo.EveryBy(lo.Values(c.entries), func(e *contract.DressPriceCalculation) bool {
		return e.Succeeded()
	})
}

// ContractAmounts folds dresses, package and addons into the contract money picture.
// Addons included in the package are not charged. Account always equals the total.
func (c *ContractCalculator) ContractAmounts(opts ContractOptions) contract.ContractAmounts {
	dressTTC := c.TotalPriceTTC()
	dressHT := money.TTCToHT(dressTTC, c.taxRate)

	totalHT, totalTTC := dressHT, dressTTC

	included := map[string]bool{}
	if opts.Package != nil {
		ht, ttc := c.pair(opts.Package.PriceHT, opts.Package.PriceTTC)
		totalHT = totalHT.Add(ht)
		totalTTC = totalTTC.Add(ttc)
		for _, id := range opts.Package.IncludedAddonIDs {
			included[id] = true
		}
	}

	for _, addon := range opts.Addons {
		if included[addon.ID] {
			continue
		}
		quantity := decimal.NewFromInt(int64(max(addon.Quantity, 1)))
		ht, ttc := c.pair(addon.PriceHT, addon.PriceTTC)
		totalHT = totalHT.Add(money.Round(ht.Mul(quantity)))
		totalTTC = totalTTC.Add(money.Round(ttc.Mul(quantity)))
	}

	totalHT, totalTTC = money.Round(totalHT), money.Round(totalTTC)

	depositPercentage := c.depositPercentage
	if opts.ServiceType != nil && opts.ServiceType.DepositPercentage != nil {
		depositPercentage = *opts.ServiceType.DepositPercentage
	}

	policy := opts.ServiceType.CautionPolicy()
	cautionTTC := money.CalculateCaution(totalTTC, policy)
	cautionHT := money.TTCToHT(cautionTTC, c.taxRate)
	if policy.AmountTTC == nil {
		cautionHT = money.CalculateCaution(totalHT, policy)
	}

	return contract.ContractAmounts{
		TotalPriceHT:   totalHT,
		TotalPriceTTC:  totalTTC,
		AccountHT:      totalHT,
		AccountTTC:     totalTTC,
		AccountPaidHT:  money.Round(opts.Payments.AccountPaidHT),
		AccountPaidTTC: money.Round(opts.Payments.AccountPaidTTC),
		DepositHT:      money.CalculateDeposit(totalHT, depositPercentage),
		DepositTTC:     money.CalculateDeposit(totalTTC, depositPercentage),
		CautionHT:      cautionHT,
		CautionTTC:     cautionTTC,
		CautionPaidHT:  money.Round(opts.Payments.CautionPaidHT),
		CautionPaidTTC: money.Round(opts.Payments.CautionPaidTTC),
	}
}

// pair fills the missing side of an HT/TTC price
func (c *ContractCalculator) pair(ht, ttc decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	switch {
	case ht.IsZero() && !ttc.IsZero():
		return money.TTCToHT(ttc, c.taxRate), ttc
	case ttc.IsZero() && !ht.IsZero():
		return ht, money.HTToTTC(ht, c.taxRate)
	default:
		return ht, ttc
	}
}

// Reconcile compares amounts with what was paid
func (c *ContractCalculator) Reconcile(amounts contract.ContractAmounts) contract.Balance {
	return Reconcile(amounts)
}

// Reconcile returns what remains to be collected on amounts, never negative
func Reconcile(amounts contract.ContractAmounts) contract.Balance {
	balance := contract.Balance{
		RemainingAccountHT:  money.CalculateRemainingAmount(amounts.AccountHT, amounts.AccountPaidHT),
		RemainingAccountTTC: money.CalculateRemainingAmount(amounts.AccountTTC, amounts.AccountPaidTTC),
		RemainingCautionHT:  money.CalculateRemainingAmount(amounts.CautionHT, amounts.CautionPaidHT),
		RemainingCautionTTC: money.CalculateRemainingAmount(amounts.CautionTTC, amounts.CautionPaidTTC),
		PaidPercentage:      money.PaidPercentage(amounts.AccountTTC, amounts.AccountPaidTTC),
	}
	balance.FullyPaid = balance.RemainingAccountTTC.IsZero() && balance.RemainingCautionTTC.IsZero()
	return balance
}
