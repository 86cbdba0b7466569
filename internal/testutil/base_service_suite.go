package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/velvena/velvena/internal/cache"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/domain/dress"
	"github.com/velvena/velvena/internal/domain/pricingrule"
	"github.com/velvena/velvena/internal/domain/servicetype"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/types"
	"github.com/velvena/velvena/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PricingRuleRepo pricingrule.Repository
	DressRepo       dress.Repository
	ServiceTypeRepo servicetype.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	cache  *cache.InMemoryCache
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	// Initialize validator
	validator.NewValidator()

	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo
	s.logger = logger.NewNoopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.cache = cache.NewInMemoryCache(s.config.Cache)
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		PricingRuleRepo: NewInMemoryPricingRuleStore(),
		DressRepo:       NewInMemoryDressStore(),
		ServiceTypeRepo: NewInMemoryServiceTypeStore(),
	}
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.PricingRuleRepo.(*InMemoryPricingRuleStore).Clear()
	s.stores.DressRepo.(*InMemoryDressStore).Clear()
	s.stores.ServiceTypeRepo.(*InMemoryServiceTypeStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the per test price cache
func (s *BaseServiceTestSuite) GetCache() *cache.InMemoryCache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}

// GetUUID returns a new UUID string
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
