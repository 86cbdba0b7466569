package pricingrule

import (
	"context"

	"github.com/velvena/velvena/internal/types"
)

// Repository gives read access to the rule catalog snapshot
type Repository interface {
	Get(ctx context.Context, id string) (*PricingRule, error)
	List(ctx context.Context, filter *types.PricingRuleFilter) ([]*PricingRule, error)
}
