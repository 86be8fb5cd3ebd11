package service

import (
	"context"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/domain"
	"go.uber.org/zap"
)

// RateCardInput holds the parameters of a rate-card estimate
type RateCardInput struct {
	BaseAmount    *float64 `json:"baseAmount" validate:"omitempty,gte=0"`
	SupportItems  []string `json:"supportItems" validate:"omitempty,dive,max=200"`
	RiskUpliftPct float64  `json:"riskUpliftPct" validate:"gte=0,lte=100"`
}

// CalculatorService produces rate-card estimates from configured constants
type CalculatorService struct {
	config *config.CalculatorConfig
	logger *zap.Logger
}

// NewCalculatorService creates a new CalculatorService instance
func NewCalculatorService(cfg *config.CalculatorConfig, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{
		config: cfg,
		logger: logger,
	}
}

// RateCard computes a quick estimate: the base amount plus a flat support
// cost per support item, uplifted by the risk percentage, then taxed.
func (s *CalculatorService) RateCard(ctx context.Context, input *RateCardInput) (*domain.RateCardResultDTO, error) {
	baseAmount := s.config.BaseAmount
	if input.BaseAmount != nil {
		baseAmount = *input.BaseAmount
	}

	supportAmount := s.config.UnitSupportCost * float64(len(input.SupportItems))
	subtotal := (baseAmount + supportAmount) * (1 + input.RiskUpliftPct/100)
	taxAmount := subtotal * s.config.TaxRatePercent / 100

	result := &domain.RateCardResultDTO{
		BaseAmount:    baseAmount,
		SupportAmount: supportAmount,
		SupportItems:  input.SupportItems,
		RiskUplift:    input.RiskUpliftPct,
		Subtotal:      subtotal,
		TaxRate:       s.config.TaxRatePercent,
		TaxAmount:     taxAmount,
		Total:         subtotal + taxAmount,
	}

	s.logger.Debug("rate card computed",
		zap.Float64("baseAmount", baseAmount),
		zap.Int("supportItems", len(input.SupportItems)),
		zap.Float64("riskUpliftPct", input.RiskUpliftPct),
		zap.Float64("total", result.Total),
	)

	return result, nil
}
