package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/contract"
	"github.com/velvena/velvena/internal/domain/servicetype"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/testutil"
)

type ContractCalculatorSuite struct {
	testutil.BaseServiceTestSuite
	fake       *testutil.FakePriceCalculator
	calculator *ContractCalculator
	start      time.Time
}

func TestContractCalculator(t *testing.T) {
	suite.Run(t, new(ContractCalculatorSuite))
}

func (s *ContractCalculatorSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	s.fake = testutil.NewFakePriceCalculator()
	s.fake.SetPrice("dress_1", decimal.NewFromInt(120))
	s.fake.SetPrice("dress_2", decimal.NewFromInt(60))
	s.fake.SetPrice("dress_3", decimal.NewFromInt(90))

	s.calculator = s.newCalculator(s.GetCache())
}

func (s *ContractCalculatorSuite) newCalculator(c cache.Cache) *ContractCalculator {
	stores := s.GetStores()
	params := NewServiceParams(s.GetLogger(), s.GetConfig(), c,
		stores.PricingRuleRepo, stores.DressRepo, stores.ServiceTypeRepo)
	return NewContractCalculator(params, s.fake)
}

func (s *ContractCalculatorSuite) request(dressID string, days int) calculation.Request {
	return calculation.Request{
		DressID:   dressID,
		StartDate: s.start,
		EndDate:   s.start.AddDate(0, 0, days),
	}
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func (s *ContractCalculatorSuite) assertAmount(want string, got decimal.Decimal, field string) {
	s.True(dec(want).Equal(got), "%s: want %s got %s", field, want, got)
}

func (s *ContractCalculatorSuite) TestPartialSuccess() {
	s.fake.SetError("dress_3", ierr.NewError("catalog down").Mark(ierr.ErrUpstreamUnavailable))

	results := s.calculator.CalculateMultipleDresses(s.GetContext(), []calculation.Request{
		s.request("dress_1", 2),
		s.request("dress_2", 2),
		s.request("dress_3", 2),
	})
	s.Require().Len(results, 3)
	s.True(results[0].Succeeded())
	s.True(results[1].Succeeded())
	s.False(results[2].Succeeded())

	s.False(s.calculator.AllCalculationsReady())
	s.True(s.calculator.HasCalculationErrors())

	errs := s.calculator.CalculationErrors()
	s.Require().Len(errs, 1)
	s.Equal("dress_3", errs[0].DressID)
	s.Contains(errs[0].Error, "catalog down")

	calcs := s.calculator.Calculations()
	s.Require().Len(calcs, 3)
	s.Equal([]string{"dress_1", "dress_2", "dress_3"}, lo.Map(calcs, func(c contract.DressPriceCalculation, _ int) string {
		return c.DressID
	}))
	s.assertAmount("240", calcs[0].Calculation.FinalPriceTTC, "dress_1")
	s.assertAmount("120", calcs[1].Calculation.FinalPriceTTC, "dress_2")
	s.Nil(calcs[2].Calculation)

	s.assertAmount("360", s.calculator.TotalPriceTTC(), "total ttc")
	s.assertAmount("300", s.calculator.TotalPriceHT(), "total ht")
}

func (s *ContractCalculatorSuite) TestAllCalculationsReady() {
	s.False(s.calculator.AllCalculationsReady())

	s.calculator.CalculateMultipleDresses(s.GetContext(), []calculation.Request{
		s.request("dress_1", 1),
		s.request("dress_2", 1),
	})
	s.True(s.calculator.AllCalculationsReady())
	s.False(s.calculator.HasCalculationErrors())
	s.Empty(s.calculator.CalculationErrors())

	s.calculator.Reset()
	s.False(s.calculator.AllCalculationsReady())
	s.Empty(s.calculator.Calculations())
}

func (s *ContractCalculatorSuite) TestInvalidDateRange() {
	req := s.request("dress_1", 0)

	entry := s.calculator.CalculateDressPrice(s.GetContext(), req)
	s.False(entry.Loading)
	s.Nil(entry.Calculation)
	s.NotEmpty(entry.Error)
	s.Equal(0, s.fake.Calls("dress_1"))
	s.True(s.calculator.HasCalculationErrors())
}

func (s *ContractCalculatorSuite) TestCachedCalculationIsReused() {
	first := s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	second := s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))

	s.Equal(1, s.fake.Calls("dress_1"))
	s.Require().NotNil(second.Calculation)
	s.Equal(first.Calculation.ID, second.Calculation.ID)
	s.True(first.Calculation.FinalPriceTTC.Equal(second.Calculation.FinalPriceTTC))

	// a different window is a different key
	s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 3))
	s.Equal(2, s.fake.Calls("dress_1"))
}

func (s *ContractCalculatorSuite) TestDisabledCache() {
	calculator := s.newCalculator(cache.NewInMemoryCache(config.CacheConfig{Enabled: false}))

	calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	s.Equal(2, s.fake.Calls("dress_1"))
}

func (s *ContractCalculatorSuite) TestConcurrentIdenticalCallsShareOneUpstreamCall() {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.fake.OnCalculate = func(_ context.Context, _ calculation.Request) {
		once.Do(func() { close(entered) })
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	}()
	<-entered
	go func() {
		defer wg.Done()
		s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	}()
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal(1, s.fake.Calls("dress_1"))
	entry, ok := s.calculator.Calculation("dress_1")
	s.Require().True(ok)
	s.True(entry.Succeeded())
}

func (s *ContractCalculatorSuite) TestCancelledCallerDoesNotFailJoinedCallers() {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.fake.OnCalculate = func(_ context.Context, _ calculation.Request) {
		once.Do(func() { close(entered) })
		<-release
	}

	leaderCtx, cancel := context.WithCancel(s.GetContext())
	leaderDone := make(chan contract.DressPriceCalculation)
	go func() {
		leaderDone <- s.calculator.CalculateDressPrice(leaderCtx, s.request("dress_1", 2))
	}()
	<-entered

	joinerDone := make(chan contract.DressPriceCalculation)
	go func() {
		joinerDone <- s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	leader := <-leaderDone
	s.NotEmpty(leader.Error)

	close(release)
	joiner := <-joinerDone
	s.True(joiner.Succeeded(), joiner.Error)
	s.assertAmount("240", joiner.Calculation.FinalPriceTTC, "joiner")
	s.Equal(1, s.fake.Calls("dress_1"))

	entry, ok := s.calculator.Calculation("dress_1")
	s.Require().True(ok)
	s.True(entry.Succeeded())
}

func (s *ContractCalculatorSuite) TestTotalHTIsDerivedFromTotalTTC() {
	for _, id := range []string{"dress_1", "dress_2", "dress_3"} {
		s.fake.SetPrice(id, dec("10.01"))
	}

	results := s.calculator.CalculateMultipleDresses(s.GetContext(), []calculation.Request{
		s.request("dress_1", 1),
		s.request("dress_2", 1),
		s.request("dress_3", 1),
	})

	itemsHT := decimal.Zero
	for _, r := range results {
		s.Require().True(r.Succeeded(), r.Error)
		// 10.01 / 1.2 = 8.3416
		s.assertAmount("8.34", r.Calculation.FinalPriceHT, "item ht")
		itemsHT = itemsHT.Add(r.Calculation.FinalPriceHT)
	}
	s.assertAmount("25.02", itemsHT, "sum of item ht")

	s.assertAmount("30.03", s.calculator.TotalPriceTTC(), "total ttc")
	// 30.03 / 1.2 = 25.025
	s.assertAmount("25.03", s.calculator.TotalPriceHT(), "total ht")

	amounts := s.calculator.ContractAmounts(ContractOptions{})
	s.assertAmount("25.03", amounts.TotalPriceHT, "contract total ht")
	s.assertAmount("25.03", amounts.AccountHT, "account ht")
}

func (s *ContractCalculatorSuite) TestStaleCompletionIsDiscarded() {
	entered := make(chan struct{})
	release := make(chan struct{})
	s.fake.OnCalculate = func(_ context.Context, req calculation.Request) {
		if req.EndDate.Sub(req.StartDate) == 48*time.Hour {
			close(entered)
			<-release
		}
	}

	done := make(chan contract.DressPriceCalculation)
	go func() {
		done <- s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	}()
	<-entered

	newer := s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 3))
	s.True(newer.Succeeded())

	close(release)
	stale := <-done
	s.Require().NotNil(stale.Calculation)
	s.assertAmount("240", stale.Calculation.FinalPriceTTC, "stale")

	entry, ok := s.calculator.Calculation("dress_1")
	s.Require().True(ok)
	s.assertAmount("360", entry.Calculation.FinalPriceTTC, "current")
}

func (s *ContractCalculatorSuite) TestRemovedDressIsNotResurrected() {
	entered := make(chan struct{})
	release := make(chan struct{})
	s.fake.OnCalculate = func(_ context.Context, _ calculation.Request) {
		close(entered)
		<-release
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	}()
	<-entered

	entry, ok := s.calculator.Calculation("dress_1")
	s.Require().True(ok)
	s.True(entry.Loading)

	s.calculator.RemoveDress("dress_1")
	close(release)
	<-done

	_, ok = s.calculator.Calculation("dress_1")
	s.False(ok)
	s.assertAmount("0", s.calculator.TotalPriceTTC(), "total")
}

func (s *ContractCalculatorSuite) TestContractAmounts() {
	s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))

	amounts := s.calculator.ContractAmounts(ContractOptions{
		ServiceType: &servicetype.ServiceType{
			ID:                "st_wedding",
			CautionAmountTTC:  lo.ToPtr(dec("500")),
			DepositPercentage: lo.ToPtr(dec("30")),
		},
		Package: &contract.Package{
			ID:               "pkg_1",
			PriceTTC:         dec("100"),
			IncludedAddonIDs: []string{"addon_veil"},
		},
		Addons: []contract.Addon{
			{ID: "addon_veil", PriceTTC: dec("50"), Quantity: 1},
			{ID: "addon_pressing", PriceTTC: dec("12"), Quantity: 2},
		},
		Payments: contract.PaymentSummary{
			AccountPaidTTC: dec("100"),
			CautionPaidTTC: dec("500"),
		},
	})

	// 240 dress + 100 package + 2 x 12 pressing, the veil comes with the package
	s.assertAmount("364", amounts.TotalPriceTTC, "total ttc")
	s.assertAmount("303.33", amounts.TotalPriceHT, "total ht")
	s.True(amounts.AccountTTC.Equal(amounts.TotalPriceTTC))
	s.True(amounts.AccountHT.Equal(amounts.TotalPriceHT))
	s.assertAmount("109.2", amounts.DepositTTC, "deposit ttc")
	s.assertAmount("91", amounts.DepositHT, "deposit ht")
	s.assertAmount("500", amounts.CautionTTC, "caution ttc")
	s.assertAmount("416.67", amounts.CautionHT, "caution ht")
	s.assertAmount("100", amounts.AccountPaidTTC, "account paid")

	balance := s.calculator.Reconcile(amounts)
	s.assertAmount("264", balance.RemainingAccountTTC, "remaining account")
	s.assertAmount("0", balance.RemainingCautionTTC, "remaining caution")
	s.assertAmount("27.47", balance.PaidPercentage, "paid percentage")
	s.False(balance.FullyPaid)
}

func (s *ContractCalculatorSuite) TestContractAmountsDefaults() {
	s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_2", 1))

	amounts := s.calculator.ContractAmounts(ContractOptions{})
	s.assertAmount("60", amounts.TotalPriceTTC, "total ttc")
	s.assertAmount("50", amounts.TotalPriceHT, "total ht")
	// configured deposit percentage is 50
	s.assertAmount("30", amounts.DepositTTC, "deposit ttc")
	s.assertAmount("0", amounts.CautionTTC, "caution ttc")
	s.assertAmount("0", amounts.AccountPaidTTC, "account paid")
}

func (s *ContractCalculatorSuite) TestCautionPercentage() {
	s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 1))

	amounts := s.calculator.ContractAmounts(ContractOptions{
		ServiceType: &servicetype.ServiceType{CautionPercentage: lo.ToPtr(dec("50"))},
	})
	s.assertAmount("60", amounts.CautionTTC, "caution ttc")
	s.assertAmount("50", amounts.CautionHT, "caution ht")
}

func (s *ContractCalculatorSuite) TestReconcileNeverNegative() {
	balance := Reconcile(contract.ContractAmounts{
		AccountHT:      dec("100"),
		AccountTTC:     dec("120"),
		AccountPaidHT:  dec("150"),
		AccountPaidTTC: dec("180"),
		CautionTTC:     dec("200"),
		CautionPaidTTC: dec("200"),
	})

	s.assertAmount("0", balance.RemainingAccountHT, "remaining ht")
	s.assertAmount("0", balance.RemainingAccountTTC, "remaining ttc")
	s.assertAmount("0", balance.RemainingCautionTTC, "remaining caution")
	s.assertAmount("100", balance.PaidPercentage, "paid percentage")
	s.True(balance.FullyPaid)
}

func (s *ContractCalculatorSuite) TestErrorIsCapturedNotReturned() {
	s.fake.SetError("dress_1", errors.New("boom"))

	entry := s.calculator.CalculateDressPrice(s.GetContext(), s.request("dress_1", 2))
	s.False(entry.Loading)
	s.Equal("boom", entry.Error)
	s.Nil(entry.Calculation)
}
