package snapshot

import (
	"context"

	"github.com/samber/lo"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/domain/servicetype"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/types"
)

type ruleRepository struct {
	store *Store
}

func (r *ruleRepository) Get(_ context.Context, id string) (*pricingrule.PricingRule, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rule, ok := r.store.rules[id]
	if !ok {
		return nil, ierr.NewErrorf("pricing rule %s not found", id).
			WithHintf("Pricing rule %s was not found", id).
			WithReportableDetails(map[string]any{"pricing_rule_id": id}).
			Mark(ierr.ErrRuleNotFound)
	}
	return rule, nil
}

func (r *ruleRepository) List(_ context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	if filter == nil {
		filter = types.NewPricingRuleFilter()
	}

	r.store.mu.RLock()
	all := sortedValues(r.store.rules, func(rule *pricingrule.PricingRule) string { return rule.ID })
	r.store.mu.RUnlock()

	return lo.Filter(all, func(rule *pricingrule.PricingRule, _ int) bool {
		if filter.ActiveOnly && !rule.IsActive {
			return false
		}
		if filter.ServiceTypeID != "" && lo.FromPtr(rule.ServiceTypeID) != filter.ServiceTypeID {
			return false
		}
		if filter.Strategy != nil && rule.Strategy != *filter.Strategy {
			return false
		}
		return true
	}), nil
}

type dressRepository struct {
	store *Store
}

func (r *dressRepository) Get(_ context.Context, id string) (*dress.Dress, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	d, ok := r.store.dresses[id]
	if !ok {
		return nil, ierr.NewErrorf("dress %s not found", id).
			WithHintf("Dress %s was not found", id).
			WithReportableDetails(map[string]any{"dress_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}

func (r *dressRepository) List(_ context.Context) ([]*dress.Dress, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return sortedValues(r.store.dresses, func(d *dress.Dress) string { return d.ID }), nil
}

type serviceTypeRepository struct {
	store *Store
}

func (r *serviceTypeRepository) Get(_ context.Context, id string) (*servicetype.ServiceType, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	st, ok := r.store.serviceTypes[id]
	if !ok {
		return nil, ierr.NewErrorf("service type %s not found", id).
			WithHintf("Service type %s was not found", id).
			WithReportableDetails(map[string]any{"service_type_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return st, nil
}
