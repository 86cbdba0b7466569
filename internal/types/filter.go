package types

// PricingRuleFilter narrows a rule catalog listing
type PricingRuleFilter struct {
	// ActiveOnly keeps only rules with is_active set
	ActiveOnly bool `form:"active_only" json:"active_only,omitempty"`
	// ServiceTypeID keeps only rules bound to the given service type
	ServiceTypeID string `form:"service_type_id" json:"service_type_id,omitempty"`
	// Strategy keeps only rules evaluated with the given strategy
	Strategy *PricingStrategy `form:"strategy" json:"strategy,omitempty"`
}

// NewPricingRuleFilter returns a filter matching every rule
func NewPricingRuleFilter() *PricingRuleFilter {
	return &PricingRuleFilter{}
}

// NewActivePricingRuleFilter returns a filter matching active rules only
func NewActivePricingRuleFilter() *PricingRuleFilter {
	return &PricingRuleFilter{ActiveOnly: true}
}
