package repository

import (
	"context"
	"time"

	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/types"
)

type cachedPricingRuleRepository struct {
	source pricingrule.Repository
	cache  cache.Cache
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedPricingRuleRepository memoizes single rule lookups of source.
// Listings always reach the source so that rule matching sees the live catalog.
func NewCachedPricingRuleRepository(source pricingrule.Repository, c cache.Cache, ttl time.Duration, log *logger.Logger) pricingrule.Repository {
	return &cachedPricingRuleRepository{
		source: source,
		cache:  c,
		ttl:    ttl,
		log:    log,
	}
}

func (r *cachedPricingRuleRepository) Get(ctx context.Context, id string) (*pricingrule.PricingRule, error) {
	if cached := r.GetCache(ctx, id); cached != nil {
		return cached, nil
	}

	r.log.WithContext(ctx).Debugw("getting pricing rule", "pricing_rule_id", id)

	rule, err := r.source.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.SetCache(ctx, rule)
	return rule, nil
}

func (r *cachedPricingRuleRepository) List(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	rules, err := r.source.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, rule := range rules {
		r.SetCache(ctx, rule)
	}
	return rules, nil
}

func (r *cachedPricingRuleRepository) SetCache(ctx context.Context, rule *pricingrule.PricingRule) {
	if r.cache == nil || rule == nil {
		return
	}
	r.cache.Set(ctx, cache.GenerateKey(cache.PrefixPricingRule, rule.ID), rule, r.ttl)
}

func (r *cachedPricingRuleRepository) GetCache(ctx context.Context, id string) *pricingrule.PricingRule {
	if r.cache == nil {
		return nil
	}
	if value, found := r.cache.Get(ctx, cache.GenerateKey(cache.PrefixPricingRule, id)); found {
		if rule, ok := value.(*pricingrule.PricingRule); ok {
			return rule
		}
	}
	return nil
}

func (r *cachedPricingRuleRepository) DeleteCache(ctx context.Context, id string) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixPricingRule, id))
}

type fallbackPricingRuleRepository struct {
	primary  pricingrule.Repository
	fallback pricingrule.Repository
}

// NewFallbackPricingRuleRepository lists rules from primary only.
// Get falls back when primary does not know the rule.
func NewFallbackPricingRuleRepository(primary, fallback pricingrule.Repository) pricingrule.Repository {
	return &fallbackPricingRuleRepository{primary: primary, fallback: fallback}
}

func (r *fallbackPricingRuleRepository) Get(ctx context.Context, id string) (*pricingrule.PricingRule, error) {
	rule, err := r.primary.Get(ctx, id)
	if err == nil || !ierr.IsRuleNotFound(err) {
		return rule, err
	}
	return r.fallback.Get(ctx, id)
}

func (r *fallbackPricingRuleRepository) List(ctx context.Context, filter *types.PricingRuleFilter) ([]*pricingrule.PricingRule, error) {
	return r.primary.List(ctx, filter)
}
