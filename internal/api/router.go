package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/velvena/velvena/internal/api/v1"
	"github.com/velvena/velvena/internal/config"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/rest/middleware"
	"github.com/velvena/velvena/internal/types"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Pricing  *v1.PricingHandler
	Contract *v1.ContractHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.LoggerMiddleware(logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	pricingRules := router.Group("/pricing-rules")
	{
		pricingRules.GET("", handlers.Pricing.ListPricingRules)
		pricingRules.GET("/:id", handlers.Pricing.GetPricingRule)
		pricingRules.POST("/calculate", handlers.Pricing.CalculatePrice)
	}

	contracts := router.Group("/contracts")
	{
		contracts.POST("/amounts", handlers.Contract.CalculateAmounts)
	}
}
