package cache

import (
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/logger"
)

// Initialize builds the price cache from configuration
func Initialize(cfg *config.Configuration, log *logger.Logger) Cache {
	log.Infow("initializing price cache",
		"enabled", cfg.Cache.Enabled,
		"ttl", cfg.Cache.PriceTTL.String(),
	)
	return NewInMemoryCache(cfg.Cache)
}
