package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/velvena/velvena/internal/api/dto"
	v1 "github.com/velvena/velvena/internal/api/v1"
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/catalog"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/httpclient"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/repository/snapshot"
	"github.com/velvena/velvena/internal/service"
	"github.com/velvena/velvena/internal/types"
	"github.com/velvena/velvena/internal/validator"
)

type RouterSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	validator.NewValidator()
}

func (s *RouterSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	log := logger.NewNoopLogger()

	store := snapshot.NewStore(log)
	s.Require().NoError(store.LoadFile("../repository/snapshot/testdata/catalog.json"))

	params := service.NewServiceParams(log, cfg, cache.NewInMemoryCache(cfg.Cache),
		store.PricingRules(), store.Dresses(), store.ServiceTypes())
	pricingService := service.NewPricingService(params)

	s.router = NewRouter(Handlers{
		Health:   v1.NewHealthHandler(log),
		Pricing:  v1.NewPricingHandler(pricingService, pricingService, log),
		Contract: v1.NewContractHandler(service.NewContractService(params, pricingService), log),
	}, cfg, log)
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *RouterSuite) assertAmount(want string, got decimal.Decimal, field string) {
	s.True(decimal.RequireFromString(want).Equal(got), "%s: want %s got %s", field, want, got)
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestRequestIDIsPropagated() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(types.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal("req-123", w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestListPricingRules() {
	w := s.do(http.MethodGet, "/v1/pricing-rules", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var resp dto.ListPricingRulesResponse
	s.decode(w, &resp)
	s.Len(resp.Items, 4)

	w = s.do(http.MethodGet, "/v1/pricing-rules?active_only=true&strategy=tiered", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.Require().Len(resp.Items, 1)
	s.Equal("rule_long_rental", resp.Items[0].ID)
}

func (s *RouterSuite) TestGetPricingRule() {
	w := s.do(http.MethodGet, "/v1/pricing-rules/rule_long_rental", nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var rule pricingrule.PricingRule
	s.decode(w, &rule)
	s.Equal("rule_long_rental", rule.ID)
	s.Equal(types.PRICING_STRATEGY_TIERED, rule.Strategy)

	w = s.do(http.MethodGet, "/v1/pricing-rules/rule_missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

// a catalog client pointed at this API reads and prices like the local service
func (s *RouterSuite) TestServesCatalogClient() {
	server := httptest.NewServer(s.router)
	defer server.Close()

	cfg := config.GetDefaultConfig()
	cfg.Catalog.Mode = types.CatalogModeRemote
	cfg.Catalog.BaseURL = server.URL + "/v1"
	client := catalog.NewClient(cfg,
		httpclient.NewDefaultClient(httpclient.ClientConfig{Timeout: 5 * time.Second}),
		logger.NewNoopLogger())
	ctx := types.SetRequestID(context.Background(), "req-remote")

	rules, err := client.List(ctx, types.NewActivePricingRuleFilter())
	s.Require().NoError(err)
	s.NotEmpty(rules)

	rule, err := client.Get(ctx, "rule_long_rental")
	s.Require().NoError(err)
	s.Equal("rule_long_rental", rule.ID)

	_, err = client.Get(ctx, "rule_missing")
	s.Require().Error(err)
	s.True(ierr.IsRuleNotFound(err))

	calc, err := client.CalculatePrice(ctx, calculation.Request{
		DressID:   "dress_1",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	s.Equal("rule_long_rental", calc.Breakdown.RuleID)
	s.assertAmount("240", calc.FinalPriceTTC, "final_price_ttc")
}

func (s *RouterSuite) TestListPricingRulesUnknownStrategy() {
	w := s.do(http.MethodGet, "/v1/pricing-rules?strategy=auction", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestCalculatePrice() {
	w := s.do(http.MethodPost, "/v1/pricing-rules/calculate", dto.CalculatePriceRequest{
		DressID:   "dress_1",
		StartDate: "2024-06-01",
		EndDate:   "2024-06-03",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var calc calculation.PriceCalculation
	s.decode(w, &calc)
	s.Equal("dress_1", calc.DressID)
	s.Equal("rule_long_rental", calc.Breakdown.RuleID)
	s.assertAmount("240", calc.FinalPriceTTC, "final_price_ttc")
	s.assertAmount("200", calc.FinalPriceHT, "final_price_ht")
}

func (s *RouterSuite) TestCalculatePriceFitting() {
	w := s.do(http.MethodPost, "/v1/pricing-rules/calculate", dto.CalculatePriceRequest{
		DressID:       "dress_2",
		StartDate:     "2024-06-01T10:00:00Z",
		EndDate:       "2024-06-01T13:00:00Z",
		PricingRuleID: "rule_fitting",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var calc calculation.PriceCalculation
	s.decode(w, &calc)
	s.Equal("rule_fitting", calc.Breakdown.RuleID)
	s.assertAmount("30", calc.FinalPriceTTC, "final_price_ttc")
	s.assertAmount("25", calc.FinalPriceHT, "final_price_ht")
}

func (s *RouterSuite) TestCalculatePriceErrors() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{
			name:   "malformed body",
			body:   "not an object",
			status: http.StatusBadRequest,
		},
		{
			name:   "missing dress",
			body:   dto.CalculatePriceRequest{StartDate: "2024-06-01", EndDate: "2024-06-03"},
			status: http.StatusBadRequest,
		},
		{
			name:   "inverted range",
			body:   dto.CalculatePriceRequest{DressID: "dress_1", StartDate: "2024-06-03", EndDate: "2024-06-01"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unparsable date",
			body:   dto.CalculatePriceRequest{DressID: "dress_1", StartDate: "01/06/2024", EndDate: "2024-06-03"},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown dress",
			body:   dto.CalculatePriceRequest{DressID: "dress_404", StartDate: "2024-06-01", EndDate: "2024-06-03"},
			status: http.StatusNotFound,
		},
		{
			name: "inactive explicit rule",
			body: dto.CalculatePriceRequest{
				DressID:       "dress_2",
				StartDate:     "2024-06-01",
				EndDate:       "2024-06-03",
				PricingRuleID: "rule_weekend",
			},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/v1/pricing-rules/calculate", tt.body)
			s.Equal(tt.status, w.Code, w.Body.String())

			var resp ierr.ErrorResponse
			s.decode(w, &resp)
			s.False(resp.Success)
			s.NotEmpty(resp.Error.Display)
		})
	}
}

func (s *RouterSuite) TestContractAmounts() {
	w := s.do(http.MethodPost, "/v1/contracts/amounts", map[string]any{
		"items": []dto.CalculatePriceRequest{
			{DressID: "dress_1", StartDate: "2024-06-01", EndDate: "2024-06-03"},
			{DressID: "dress_2", StartDate: "2024-06-01", EndDate: "2024-06-03"},
			{DressID: "dress_3", StartDate: "2024-06-03", EndDate: "2024-06-01"},
		},
		"service_type_id": "st_wedding",
		"payments": map[string]any{
			"account_paid_ttc": "100",
		},
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ContractAmountsResponse
	s.decode(w, &resp)

	s.Len(resp.Calculations, 3)
	s.False(resp.AllReady)
	s.Require().Len(resp.Errors, 1)
	s.Equal("dress_3", resp.Errors[0].DressID)

	s.assertAmount("360", resp.Amounts.TotalPriceTTC, "total_price_ttc")
	s.assertAmount("300", resp.Amounts.TotalPriceHT, "total_price_ht")
	s.assertAmount("108", resp.Amounts.DepositTTC, "deposit_ttc")
	s.assertAmount("500", resp.Amounts.CautionTTC, "caution_ttc")
	s.assertAmount("260", resp.Balance.RemainingAccountTTC, "remaining_account_ttc")
	s.assertAmount("27.78", resp.Balance.PaidPercentage, "paid_percentage")
	s.False(resp.Balance.FullyPaid)
}

func (s *RouterSuite) TestContractAmountsErrors() {
	tests := []struct {
		name   string
		body   map[string]any
		status int
	}{
		{
			name:   "no items",
			body:   map[string]any{"items": []any{}},
			status: http.StatusBadRequest,
		},
		{
			name: "duplicate dress",
			body: map[string]any{"items": []dto.CalculatePriceRequest{
				{DressID: "dress_1", StartDate: "2024-06-01", EndDate: "2024-06-03"},
				{DressID: "dress_1", StartDate: "2024-06-05", EndDate: "2024-06-07"},
			}},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown service type",
			body: map[string]any{
				"items": []dto.CalculatePriceRequest{
					{DressID: "dress_1", StartDate: "2024-06-01", EndDate: "2024-06-03"},
				},
				"service_type_id": "st_404",
			},
			status: http.StatusNotFound,
		},
		{
			name: "negative payment",
			body: map[string]any{
				"items": []dto.CalculatePriceRequest{
					{DressID: "dress_1", StartDate: "2024-06-01", EndDate: "2024-06-03"},
				},
				"payments": map[string]any{"account_paid_ttc": "-1"},
			},
			status: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			w := s.do(http.MethodPost, "/v1/contracts/amounts", tt.body)
			s.Equal(tt.status, w.Code, w.Body.String())
		})
	}
}
