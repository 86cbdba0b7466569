package pricingrule

import (
	"encoding/json"
	"time"

	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

// PricingRule is a catalog entry telling how to price a rental
type PricingRule struct {
	// ID identifier of the rule in the catalog
	ID string `json:"id"`

	// Name is the display name of the rule
	Name string `json:"name"`

	// ServiceTypeID optionally binds the rule to a service type
	ServiceTypeID *string `json:"service_type_id,omitempty"`

	// Strategy is the pricing algorithm evaluated for this rule
	Strategy types.PricingStrategy `json:"strategy"`

	// Priority ranks matching rules, the bigger value wins
	Priority int `json:"priority"`

	// IsActive disables the rule for matching and explicit selection when false
	IsActive bool `json:"is_active"`

	// Config is the strategy specific calculation configuration
	Config CalculationConfig `json:"calculation_config"`

	// AppliesTo restricts the bookings covered by the rule
	AppliesTo AppliesTo `json:"applies_to"`

	types.BaseModel
}

// AppliesTo is the matching predicate of a rule.
// Empty fields are wildcards. Duration bounds are inclusive.
type AppliesTo struct {
	DressTypes       []string `json:"dress_types,omitempty"`
	CustomerTypes    []string `json:"customer_types,omitempty"`
	Seasons          []string `json:"seasons,omitempty"`
	Weekdays         []string `json:"weekdays,omitempty"`
	ServiceTypes     []string `json:"service_types,omitempty"`
	MinDurationDays  *int     `json:"min_duration_days,omitempty"`
	MaxDurationDays  *int     `json:"max_duration_days,omitempty"`
	MaxDurationHours *int     `json:"max_duration_hours,omitempty"`
}

// IsZero reports whether the predicate matches every booking
func (a AppliesTo) IsZero() bool {
	return len(a.DressTypes) == 0 &&
		len(a.CustomerTypes) == 0 &&
		len(a.Seasons) == 0 &&
		len(a.Weekdays) == 0 &&
		len(a.ServiceTypes) == 0 &&
		a.MinDurationDays == nil &&
		a.MaxDurationDays == nil &&
		a.MaxDurationHours == nil
}

// UnmarshalJSON decodes calculation_config into the variant matching strategy.
// Unknown strategies are rejected here rather than at evaluation time.
func (r *PricingRule) UnmarshalJSON(data []byte) error {
	type alias PricingRule
	aux := struct {
		*alias
		Config map[string]interface{} `json:"calculation_config"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return ierr.WithError(err).
			WithHint("Pricing rule payload is malformed").
			Mark(ierr.ErrValidation)
	}

	config, err := DecodeCalculationConfig(r.Strategy, aux.Config)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Pricing rule %s has an invalid calculation config", r.ID).
			Mark(ierr.ErrValidation)
	}
	r.Config = config
	return nil
}

// Validate checks the rule and its calculation config
func (r *PricingRule) Validate() error {
	if r.ID == "" {
		return ierr.NewError("pricing rule id is required").
			WithHint("Pricing rule id is required").
			Mark(ierr.ErrValidation)
	}
	if err := r.Strategy.Validate(); err != nil {
		return err
	}
	if r.Config == nil {
		return ierr.NewErrorf("pricing rule %s has no calculation config", r.ID).
			WithHint("Field calculation_config is required").
			WithReportableDetails(map[string]any{"rule_id": r.ID, "field": "calculation_config"}).
			Mark(ierr.ErrInvalidRuleConfig)
	}
	if r.Config.Strategy() != r.Strategy {
		return ierr.NewErrorf("pricing rule %s config does not match strategy %s", r.ID, r.Strategy).
			WithHint("Calculation config shape must match the rule strategy").
			Mark(ierr.ErrInvalidRuleConfig)
	}
	return r.Config.Validate()
}

// LastChange returns the most recent of updated_at and created_at
func (r *PricingRule) LastChange() time.Time {
	if r.UpdatedAt.After(r.CreatedAt) {
		return r.UpdatedAt
	}
	return r.CreatedAt
}
