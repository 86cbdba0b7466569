package service

import (
	"context"

	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/pricing"
	"github.com/velvena/velvena/internal/types"
)

// PriceCalculator prices a single dress over a rental window.
// It is served in process by PricingService or remotely by the catalog client.
type PriceCalculator interface {
	CalculatePrice(ctx context.Context, req calculation.Request) (*calculation.PriceCalculation, error)
}

type PricingService interface {
	PriceCalculator
	GetPricingRule(ctx context.Context, id string) (*pricingrule.PricingRule, error)
	ListPricingRules(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error)
}

type pricingService struct {
	ServiceParams
	evaluator *pricing.Evaluator
}

func NewPricingService(params ServiceParams) PricingService {
	return &pricingService{
		ServiceParams: params,
		evaluator:     pricing.NewEvaluator(params.Config.Pricing.DefaultTaxRate),
	}
}

// CalculatePrice selects the rule applying to req and evaluates it.
// An explicit rule id bypasses matching but must still reference an active rule.
func (s *pricingService) CalculatePrice(ctx context.Context, req calculation.Request) (*calculation.PriceCalculation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.DressRepo.Get(ctx, req.DressID)
	if err != nil {
		return nil, err
	}

	booking := pricing.NewBookingContext(req, d)

	rule, err := s.resolveRule(ctx, req, booking)
	if err != nil {
		return nil, err
	}

	calc, err := s.evaluator.Evaluate(rule, d, booking)
	if err != nil {
		s.Logger.WithContext(ctx).Warnw("pricing rule evaluation failed",
			"dress_id", req.DressID,
			"pricing_rule_id", rule.ID,
			"error", err,
		)
		return nil, err
	}

	s.Logger.WithContext(ctx).Debugw("price calculated",
		"calculation_id", calc.ID,
		"dress_id", calc.DressID,
		"pricing_rule_id", rule.ID,
		"strategy", rule.Strategy,
		"duration_days", booking.DurationDays,
		"final_price_ttc", calc.FinalPriceTTC.String(),
	)
	return calc, nil
}

func (s *pricingService) resolveRule(ctx context.Context, req calculation.Request, booking pricing.BookingContext) (*pricingrule.PricingRule, error) {
	if req.PricingRuleID != "" {
		rule, err := s.PricingRuleRepo.Get(ctx, req.PricingRuleID)
		if err != nil {
			if ierr.IsRuleNotFound(err) || ierr.IsNotFound(err) {
				return nil, ierr.WithError(err).
					WithHintf("Pricing rule %s was not found", req.PricingRuleID).
					WithReportableDetails(map[string]any{"pricing_rule_id": req.PricingRuleID}).
					Mark(ierr.ErrRuleNotFound)
			}
			return nil, err
		}
		if !rule.IsActive {
			return nil, ierr.NewErrorf("pricing rule %s is inactive", rule.ID).
				WithHintf("Pricing rule %s is not active", rule.ID).
				WithReportableDetails(map[string]any{"pricing_rule_id": rule.ID}).
				Mark(ierr.ErrRuleNotFound)
		}
		return rule, nil
	}

	rules, err := s.PricingRuleRepo.List(ctx, types.NewActivePricingRuleFilter())
	if err != nil {
		return nil, err
	}
	return pricing.SelectRule(rules, booking)
}

func (s *pricingService) GetPricingRule(ctx context.Context, id string) (*pricingrule.PricingRule, error) {
	if id == "" {
		return nil, ierr.NewError("pricing rule id is required").
			WithHint("Pricing rule id is required").
			Mark(ierr.ErrValidation)
	}
	return s.PricingRuleRepo.Get(ctx, id)
}

func (s *pricingService) ListPricingRules(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	if filter == nil {
		filter = types.NewPricingRuleFilter()
	}
	return s.PricingRuleRepo.List(ctx, filter)
}
