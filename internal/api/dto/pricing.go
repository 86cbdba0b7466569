package dto

import (
	"github.com/velvena/velvena/internal/domain/calculation"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/validator"
)

// CalculatePriceRequest asks for the price of one dress over a rental window
type CalculatePriceRequest struct {
	DressID       string `json:"dress_id" validate:"required"`
	StartDate     string `json:"start_date" validate:"required"`
	EndDate       string `json:"end_date" validate:"required"`
	PricingRuleID string `json:"pricing_rule_id,omitempty"`
	CustomerType  string `json:"customer_type,omitempty"`
	Season        string `json:"season,omitempty"`
}

func (r *CalculatePriceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	_, err := r.ToCalculationRequest()
	return err
}

// ToCalculationRequest parses the wire dates and checks the rental window
func (r *CalculatePriceRequest) ToCalculationRequest() (calculation.Request, error) {
	req, err := r.parse()
	if err != nil {
		return calculation.Request{}, err
	}
	if err := req.Validate(); err != nil {
		return calculation.Request{}, err
	}
	return req, nil
}

// parse only decodes the dates, the rental window is left unchecked
func (r *CalculatePriceRequest) parse() (calculation.Request, error) {
	start, err := calculation.ParseDate(r.StartDate)
	if err != nil {
		return calculation.Request{}, err
	}
	end, err := calculation.ParseDate(r.EndDate)
	if err != nil {
		return calculation.Request{}, err
	}

	return calculation.Request{
		DressID:       r.DressID,
		StartDate:     start,
		EndDate:       end,
		PricingRuleID: r.PricingRuleID,
		CustomerType:  r.CustomerType,
		Season:        r.Season,
	}, nil
}

// ListPricingRulesResponse wraps a rule listing
type ListPricingRulesResponse struct {
	Items []*pricingrule.PricingRule `json:"items"`
}

func NewListPricingRulesResponse(rules []*pricingrule.PricingRule) *ListPricingRulesResponse {
	if rules == nil {
		rules = []*pricingrule.PricingRule{}
	}
	return &ListPricingRulesResponse{Items: rules}
}
