package service

import (
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/domain/servicetype"
	"github.com/velvena/velvena/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Cache  cache.Cache

	// Repositories
	PricingRuleRepo pricingrule.Repository
	DressRepo       dress.Repository
	ServiceTypeRepo servicetype.Repository
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	cache cache.Cache,
	pricingRuleRepo pricingrule.Repository,
	dressRepo dress.Repository,
	serviceTypeRepo servicetype.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		Cache:           cache,
		PricingRuleRepo: pricingRuleRepo,
		DressRepo:       dressRepo,
		ServiceTypeRepo: serviceTypeRepo,
	}
}
