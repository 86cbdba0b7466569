package pricing

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	ierr "github.com/velvena/velvena/internal/errors"
)

// SelectRule picks the single rule applying to a booking.
// Active matching rules are ranked by priority (bigger wins), then by most recent
// update, then by lowest id so that the outcome never depends on catalog order.
func SelectRule(rules []*pricingrule.PricingRule, b BookingContext) (*pricingrule.PricingRule, error) {
	candidates := lo.Filter(rules, func(r *pricingrule.PricingRule, _ int) bool {
		return r != nil && r.IsActive && Matches(r, b)
	})

	if len(candidates) == 0 {
		return nil, ierr.NewError("no pricing rule matches the booking").
			WithHint("No active pricing rule applies to this dress and period").
			WithReportableDetails(map[string]any{
				"dress_type":    b.DressType,
				"service_type":  b.ServiceType,
				"duration_days": b.DurationDays,
			}).
			Mark(ierr.ErrNoApplicableRule)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return ranksBefore(candidates[i], candidates[j])
	})

	return candidates[0], nil
}

func ranksBefore(a, b *pricingrule.PricingRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if la, lb := a.LastChange(), b.LastChange(); !la.Equal(lb) {
		return la.After(lb)
	}
	return a.ID < b.ID
}

// Matches reports whether every populated field of the rule predicate holds for b
func Matches(r *pricingrule.PricingRule, b BookingContext) bool {
	if r.ServiceTypeID != nil && *r.ServiceTypeID != "" && !strings.EqualFold(*r.ServiceTypeID, b.ServiceType) {
		return false
	}

	a := r.AppliesTo
	if !anyFold(a.DressTypes, b.DressType) ||
		!anyFold(a.CustomerTypes, b.CustomerType) ||
		!anyFold(a.Seasons, b.Season) ||
		!anyFold(a.Weekdays, b.Weekday) ||
		!anyFold(a.ServiceTypes, b.ServiceType) {
		return false
	}

	if a.MinDurationDays != nil && b.DurationDays < *a.MinDurationDays {
		return false
	}
	if a.MaxDurationDays != nil && b.DurationDays > *a.MaxDurationDays {
		return false
	}
	if a.MaxDurationHours != nil && b.DurationHours > *a.MaxDurationHours {
		return false
	}
	return true
}

// anyFold treats an empty list as a wildcard
func anyFold(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	return lo.ContainsBy(values, func(candidate string) bool {
		return strings.EqualFold(strings.TrimSpace(candidate), v)
	})
}
