package repository

import (
	"context"

	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/repository/snapshot"
	"github.com/velvena/velvena/internal/types"
)

// NewSnapshotStore builds the catalog store, loading the snapshot file when one is configured
func NewSnapshotStore(cfg *config.Configuration, log *logger.Logger) (*snapshot.Store, error) {
	store := snapshot.NewStore(log)
	if cfg.Catalog.SnapshotPath == "" {
		log.Warnw("no catalog snapshot configured, starting with an empty catalog")
		return store, nil
	}
	if err := store.LoadFile(cfg.Catalog.SnapshotPath); err != nil {
		return nil, err
	}
	return store, nil
}

// NewPricingRuleRepository picks the rule source matching the catalog mode.
// Rules are always served from the snapshot. In remote mode a rule missing from
// the last refresh is looked up in the remote catalog through the cache.
func NewPricingRuleRepository(
	cfg *config.Configuration,
	store *snapshot.Store,
	remote pricingrule.Repository,
	c cache.Cache,
	log *logger.Logger,
) pricingrule.Repository {
	if cfg.Catalog.Mode == types.CatalogModeRemote && remote != nil {
		return NewFallbackPricingRuleRepository(
			store.PricingRules(),
			NewCachedPricingRuleRepository(remote, c, cfg.Cache.PriceTTL, log),
		)
	}
	return store.PricingRules()
}

// RefreshSnapshot pulls the remote rules into the snapshot store
func RefreshSnapshot(ctx context.Context, store *snapshot.Store, remote pricingrule.Repository) error {
	return store.Refresh(ctx, remote)
}
