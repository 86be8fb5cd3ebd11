package service_test

import (
	"context"
	"testing"

	"github.com/slcgroup/costing-api/internal/config"
	"github.com/slcgroup/costing-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCalculator() *service.CalculatorService {
	cfg := &config.CalculatorConfig{
		BaseAmount:      1000,
		UnitSupportCost: 100,
		TaxRatePercent:  10,
	}
	return service.NewCalculatorService(cfg, zap.NewNop())
}

func TestRateCard_WithSupportAndUplift(t *testing.T) {
	calc := newCalculator()

	result, err := calc.RateCard(context.Background(), &service.RateCardInput{
		SupportItems:  []string{"traffic control", "scaffolding"},
		RiskUpliftPct: 10,
	})
	require.NoError(t, err)

	// (1000 + 2*100) * 1.10 = 1320, plus 10% tax
	assert.Equal(t, 1000.0, result.BaseAmount)
	assert.Equal(t, 200.0, result.SupportAmount)
	assert.Equal(t, 10.0, result.RiskUplift)
	assert.InDelta(t, 1320.0, result.Subtotal, 0.001)
	assert.Equal(t, 10.0, result.TaxRate)
	assert.InDelta(t, 132.0, result.TaxAmount, 0.001)
	assert.InDelta(t, 1452.0, result.Total, 0.001)
	assert.Equal(t, []string{"traffic control", "scaffolding"}, result.SupportItems)
}

func TestRateCard_Defaults(t *testing.T) {
	calc := newCalculator()

	result, err := calc.RateCard(context.Background(), &service.RateCardInput{})
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.BaseAmount)
	assert.Zero(t, result.SupportAmount)
	assert.Equal(t, 1000.0, result.Subtotal)
	assert.Equal(t, 100.0, result.TaxAmount)
	assert.Equal(t, 1100.0, result.Total)
}

func TestRateCard_BaseAmountOverride(t *testing.T) {
	calc := newCalculator()

	override := 5000.0
	result, err := calc.RateCard(context.Background(), &service.RateCardInput{
		BaseAmount:    &override,
		SupportItems:  []string{"crane hire"},
		RiskUpliftPct: 20,
	})
	require.NoError(t, err)

	// (5000 + 100) * 1.20 = 6120
	assert.Equal(t, 5000.0, result.BaseAmount)
	assert.InDelta(t, 6120.0, result.Subtotal, 0.001)
	assert.InDelta(t, 612.0, result.TaxAmount, 0.001)
	assert.InDelta(t, 6732.0, result.Total, 0.001)
}

func TestRateCard_ZeroBaseOverride(t *testing.T) {
	calc := newCalculator()

	zero := 0.0
	result, err := calc.RateCard(context.Background(), &service.RateCardInput{BaseAmount: &zero})
	require.NoError(t, err)

	// An explicit zero base is honoured, not replaced by the default
	assert.Zero(t, result.BaseAmount)
	assert.Zero(t, result.Total)
}
