// Package snapshot serves the rule, dress and service type catalog from a
// point in time JSON snapshot held in memory.
package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/domain/servicetype"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/types"
)

// Catalog is the on disk layout of a snapshot
type Catalog struct {
	PricingRules []*pricingrule.PricingRule `json:"pricing_rules"`
	Dresses      []*dress.Dress             `json:"dresses"`
	ServiceTypes []*servicetype.ServiceType `json:"service_types"`
}

// Store holds a catalog snapshot. Readers always see a complete snapshot,
// Replace and Refresh swap it atomically.
type Store struct {
	mu           sync.RWMutex
	rules        map[string]*pricingrule.PricingRule
	dresses      map[string]*dress.Dress
	serviceTypes map[string]*servicetype.ServiceType
	log          *logger.Logger
}

// NewStore returns an empty store
func NewStore(log *logger.Logger) *Store {
	return &Store{
		rules:        map[string]*pricingrule.PricingRule{},
		dresses:      map[string]*dress.Dress{},
		serviceTypes: map[string]*servicetype.ServiceType{},
		log:          log,
	}
}

// LoadFile reads a JSON snapshot from path and replaces the store content
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ierr.WithError(err).
			WithHintf("Catalog snapshot %s could not be read", path).
			Mark(ierr.ErrSystem)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return ierr.WithError(err).
			WithHintf("Catalog snapshot %s is malformed", path).
			Mark(ierr.ErrValidation)
	}

	if err := s.Replace(catalog); err != nil {
		return err
	}

	s.log.Infow("catalog snapshot loaded",
		"path", path,
		"pricing_rules", len(catalog.PricingRules),
		"dresses", len(catalog.Dresses),
		"service_types", len(catalog.ServiceTypes),
	)
	return nil
}

// Replace swaps the whole snapshot. Duplicate ids are rejected.
func (s *Store) Replace(catalog Catalog) error {
	rules, err := index(catalog.PricingRules, "pricing rule", func(r *pricingrule.PricingRule) string { return r.ID })
	if err != nil {
		return err
	}
	dresses, err := index(catalog.Dresses, "dress", func(d *dress.Dress) string { return d.ID })
	if err != nil {
		return err
	}
	serviceTypes, err := index(catalog.ServiceTypes, "service type", func(st *servicetype.ServiceType) string { return st.ID })
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = rules
	s.dresses = dresses
	s.serviceTypes = serviceTypes
	return nil
}

// Refresh replaces the pricing rules with the ones listed by source
func (s *Store) Refresh(ctx context.Context, source pricingrule.Repository) error {
	list, err := source.List(ctx, types.NewPricingRuleFilter())
	if err != nil {
		return err
	}

	rules, err := index(list, "pricing rule", func(r *pricingrule.PricingRule) string { return r.ID })
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = rules
	s.mu.Unlock()

	s.log.WithContext(ctx).Infow("pricing rules refreshed", "pricing_rules", len(rules))
	return nil
}

// Snapshot returns the current content, sorted by id
func (s *Store) Snapshot() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Catalog{
		PricingRules: sortedValues(s.rules, func(r *pricingrule.PricingRule) string { return r.ID }),
		Dresses:      sortedValues(s.dresses, func(d *dress.Dress) string { return d.ID }),
		ServiceTypes: sortedValues(s.serviceTypes, func(st *servicetype.ServiceType) string { return st.ID }),
	}
}

// PricingRules exposes the rules as a pricingrule.Repository
func (s *Store) PricingRules() pricingrule.Repository {
	return &ruleRepository{store: s}
}

// Dresses exposes the dresses as a dress.Repository
func (s *Store) Dresses() dress.Repository {
	return &dressRepository{store: s}
}

// ServiceTypes exposes the service types as a servicetype.Repository
func (s *Store) ServiceTypes() servicetype.Repository {
	return &serviceTypeRepository{store: s}
}

func index[T any](items []*T, kind string, id func(*T) string) (map[string]*T, error) {
	out := make(map[string]*T, len(items))
	for i, item := range items {
		if item == nil {
			return nil, ierr.NewErrorf("%s entry is null", kind).
				WithHintf("The catalog lists a null %s", kind).
				WithReportableDetails(map[string]any{"index": i}).
				Mark(ierr.ErrValidation)
		}
		key := id(item)
		if key == "" {
			return nil, ierr.NewErrorf("%s without id", kind).
				WithHintf("Every %s of the catalog needs an id", kind).
				Mark(ierr.ErrValidation)
		}
		if _, exists := out[key]; exists {
			return nil, ierr.NewErrorf("duplicate %s %s", kind, key).
				WithHintf("The catalog lists %s %s twice", kind, key).
				WithReportableDetails(map[string]any{"id": key}).
				Mark(ierr.ErrValidation)
		}
		out[key] = item
	}
	return out, nil
}

func sortedValues[T any](items map[string]T, id func(T) string) []T {
	values := lo.Values(items)
	sort.Slice(values, func(i, j int) bool {
		return id(values[i]) < id(values[j])
	})
	return values
}
