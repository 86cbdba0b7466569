package types

import (
	"slices"
	"time"

	ierr "github.com/velvena/velvena/internal/errors"
)

type RunMode string

const (
	// ModeLocal is the mode for running the API server on a developer machine
	ModeLocal RunMode = "local"
	// ModeProduction is the mode for running the API server in production
	ModeProduction RunMode = "production"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// CatalogMode selects where price calculations are evaluated
type CatalogMode string

const (
	// CatalogModeLocal evaluates rules in process against a catalog snapshot
	CatalogModeLocal CatalogMode = "local"
	// CatalogModeRemote delegates calculations to the rule catalog service
	CatalogModeRemote CatalogMode = "remote"
)

func (m CatalogMode) Validate() error {
	allowed := []CatalogMode{CatalogModeLocal, CatalogModeRemote}
	if !slices.Contains(allowed, m) {
		return ierr.NewError("invalid catalog mode").
			WithHintf("Catalog mode must be one of %v", allowed).
			Mark(ierr.ErrValidation)
	}
	return nil
}

const (
	// DefaultCurrency is the 3 letter ISO code in lowercase used for every amount
	DefaultCurrency = "eur"
	// DefaultTaxRate is the VAT rate applied when a rule does not override it
	DefaultTaxRate = "20"
	// DefaultDepositPercentage is the share of the total suggested as acompte
	DefaultDepositPercentage = "50"
	// DefaultPriceCacheTTL is how long a price calculation is memoized
	DefaultPriceCacheTTL = 2 * time.Minute
)
