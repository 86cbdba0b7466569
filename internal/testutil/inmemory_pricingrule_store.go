package testutil

import (
	"context"

	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

// InMemoryPricingRuleStore implements pricingrule.Repository
type InMemoryPricingRuleStore struct {
	*InMemoryStore[*pricingrule.PricingRule]
}

func NewInMemoryPricingRuleStore() *InMemoryPricingRuleStore {
	return &InMemoryPricingRuleStore{
		InMemoryStore: NewInMemoryStore[*pricingrule.PricingRule](),
	}
}

// CreateRule adds a rule to the store
func (s *InMemoryPricingRuleStore) CreateRule(ctx context.Context, r *pricingrule.PricingRule) error {
	if r == nil {
		return ierr.NewError("pricing rule cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.Create(ctx, r.ID, r)
}

func (s *InMemoryPricingRuleStore) Get(ctx context.Context, id string) (*pricingrule.PricingRule, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Pricing rule %s was not found", id).
			Mark(ierr.ErrRuleNotFound)
	}
	return r, nil
}

func (s *InMemoryPricingRuleStore) List(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	return s.InMemoryStore.List(ctx, filter, pricingRuleFilterFn, pricingRuleSortFn)
}

func pricingRuleFilterFn(_ context.Context, r *pricingrule.PricingRule, filter interface{}) bool {
	f, ok := filter.(*types.PricingRuleFilter)
	if !ok || f == nil {
		return true
	}
	if f.ActiveOnly && !r.IsActive {
		return false
	}
	if f.ServiceTypeID != "" && (r.ServiceTypeID == nil || *r.ServiceTypeID != f.ServiceTypeID) {
		return false
	}
	if f.Strategy != nil && r.Strategy != *f.Strategy {
		return false
	}
	return true
}

func pricingRuleSortFn(i, j *pricingrule.PricingRule) bool {
	return i.ID < j.ID
}
