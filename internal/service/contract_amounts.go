package service

import (
	"context"

	"github.com/velvena/velvena/internal/api/dto"
	"github.com/velvena/velvena/internal/domain/servicetype"
)

// ContractService prices whole contract drafts
type ContractService interface {
	CalculateContractAmounts(ctx context.Context, req dto.ContractAmountsRequest) (*dto.ContractAmountsResponse, error)
}

type contractService struct {
	ServiceParams
	calculator PriceCalculator
}

func NewContractService(params ServiceParams, calculator PriceCalculator) ContractService {
	return &contractService{
		ServiceParams: params,
		calculator:    calculator,
	}
}

// CalculateContractAmounts prices every dress of the draft on a fresh calculator.
// Per dress failures are reported in the response, only request level problems are returned.
func (s *contractService) CalculateContractAmounts(ctx context.Context, req dto.ContractAmountsRequest) (*dto.ContractAmountsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reqs, err := req.ToCalculationRequests()
	if err != nil {
		return nil, err
	}

	var st *servicetype.ServiceType
	if req.ServiceTypeID != "" {
		st, err = s.ServiceTypeRepo.Get(ctx, req.ServiceTypeID)
		if err != nil {
			return nil, err
		}
	}

	calculator := NewContractCalculator(s.ServiceParams, s.calculator)
	calculator.CalculateMultipleDresses(ctx, reqs)

	amounts := calculator.ContractAmounts(ContractOptions{
		ServiceType: st,
		Package:     req.Package,
		Addons:      req.Addons,
		Payments:    req.Payments,
	})

	resp := &dto.ContractAmountsResponse{
		Calculations: calculator.Calculations(),
		Errors:       calculator.CalculationErrors(),
		AllReady:     calculator.AllCalculationsReady(),
		Amounts:      amounts,
		Balance:      calculator.Reconcile(amounts),
	}

	s.Logger.WithContext(ctx).Infow("contract amounts calculated",
		"dresses", len(reqs),
		"errors", len(resp.Errors),
		"total_price_ttc", amounts.TotalPriceTTC.String(),
	)
	return resp, nil
}
