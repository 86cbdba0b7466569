package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velvena/velvena/internal/api/dto"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/service"
	"github.com/velvena/velvena/internal/types"
)

type PricingHandler struct {
	service    service.PricingService
	calculator service.PriceCalculator
	log        *logger.Logger
}

// NewPricingHandler serves the rule catalog from service and prices through calculator,
// which is the remote catalog in remote mode.
func NewPricingHandler(service service.PricingService, calculator service.PriceCalculator, log *logger.Logger) *PricingHandler {
	return &PricingHandler{service: service, calculator: calculator, log: log}
}

// @Summary List pricing rules
// @Description List the pricing rules of the catalog
// @Tags PricingRules
// @Produce json
// @Param filter query types.PricingRuleFilter false "Filter"
// @Success 200 {object} dto.ListPricingRulesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /pricing-rules [get]
func (h *PricingHandler) ListPricingRules(c *gin.Context) {
	var filter types.PricingRuleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if filter.Strategy != nil {
		if err := filter.Strategy.Validate(); err != nil {
			c.Error(err)
			return
		}
	}

	rules, err := h.service.ListPricingRules(c.Request.Context(), &filter)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to list pricing rules", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListPricingRulesResponse(rules))
}

// @Summary Get pricing rule
// @Description Get one pricing rule of the catalog
// @Tags PricingRules
// @Produce json
// @Param id path string true "Pricing rule ID"
// @Success 200 {object} pricingrule.PricingRule
// @Failure 404 {object} ierr.ErrorResponse
// @Router /pricing-rules/{id} [get]
func (h *PricingHandler) GetPricingRule(c *gin.Context) {
	rule, err := h.service.GetPricingRule(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// @Summary Calculate price
// @Description Price one dress over a rental window
// @Tags PricingRules
// @Accept json
// @Produce json
// @Param request body dto.CalculatePriceRequest true "Calculation request"
// @Success 200 {object} calculation.PriceCalculation
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /pricing-rules/calculate [post]
func (h *PricingHandler) CalculatePrice(c *gin.Context) {
	var req dto.CalculatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	calcReq, err := req.ToCalculationRequest()
	if err != nil {
		c.Error(err)
		return
	}

	calc, err := h.calculator.CalculatePrice(c.Request.Context(), calcReq)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Warnw("failed to calculate price",
			"dress_id", req.DressID,
			"error", err,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, calc)
}
