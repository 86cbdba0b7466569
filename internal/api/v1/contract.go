package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/velvena/velvena/internal/api/dto"
	ierr "github.com/velvena/velvena/internal/errors"
	"github.com/velvena/velvena/internal/logger"
	"github.com/velvena/velvena/internal/service"
)

type ContractHandler struct {
	service service.ContractService
	log     *logger.Logger
}

func NewContractHandler(service service.ContractService, log *logger.Logger) *ContractHandler {
	return &ContractHandler{service: service, log: log}
}

// @Summary Calculate contract amounts
// @Description Price every dress of a contract draft and fold them into totals, deposit, caution and balance
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body dto.ContractAmountsRequest true "Contract draft"
// @Success 200 {object} dto.ContractAmountsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /contracts/amounts [post]
func (h *ContractHandler) CalculateAmounts(c *gin.Context) {
	var req dto.ContractAmountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CalculateContractAmounts(c.Request.Context(), req)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("failed to calculate contract amounts", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
