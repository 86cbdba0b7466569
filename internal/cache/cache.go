package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache defines the interface for caching operations
type Cache interface {
	// Get retrieves a value from the cache
	// Returns the value and a boolean indicating whether the key was found
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set adds a value to the cache with the specified expiration
	// If expiration is 0, the cache default ttl is used
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)

	// DeleteByPrefix removes all keys with the given prefix
	DeleteByPrefix(ctx context.Context, prefix string)

	// Flush removes all items from the cache
	Flush(ctx context.Context)
}

// Predefined cache key prefixes for different entity types
const (
	PrefixPriceCalculation = "pricecalculation:v1:"
	PrefixPricingRule      = "pricingrule:v1:"
)

// GenerateKey creates a cache key from a prefix and a set of parameters
// It joins all parameters with a colon and appends them to the prefix
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, len(params)+1)
	parts[0] = prefix

	for i, param := range params {
		parts[i+1] = fmt.Sprintf("%v", param)
	}

	return strings.Join(parts, ":")
}

// PriceCalculationKey identifies a memoized dress price.
// An empty rule id stands for automatic rule selection.
func PriceCalculationKey(dressID string, start, end time.Time, ruleID string) string {
	if ruleID == "" {
		ruleID = "auto"
	}
	return GenerateKey(PrefixPriceCalculation,
		dressID,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		ruleID,
	)
}
