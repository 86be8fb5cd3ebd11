package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateLabourRateInput holds the fields for creating a labour rate
type CreateLabourRateInput struct {
	LabourType    string  `json:"labourType" validate:"required,max=100"`
	StateCode     string  `json:"stateCode" validate:"required,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	CostPerPerson float64 `json:"costPerPerson" validate:"gte=0"`
	Hours         float64 `json:"hours" validate:"gt=0"`
}

// UpdateLabourRateInput holds optional fields for a partial rate update
type UpdateLabourRateInput struct {
	CostPerPerson *float64 `json:"costPerPerson" validate:"omitempty,gte=0"`
	Hours         *float64 `json:"hours" validate:"omitempty,gt=0"`
}

// LabourRateService handles business logic for labour rates
type LabourRateService struct {
	rateRepo *repository.LabourRateRepository
	logger   *zap.Logger
}

// NewLabourRateService creates a new LabourRateService instance
func NewLabourRateService(rateRepo *repository.LabourRateRepository, logger *zap.Logger) *LabourRateService {
	return &LabourRateService{
		rateRepo: rateRepo,
		logger:   logger,
	}
}

// Create adds a labour rate. Only one rate may exist per (type, state) pair.
func (s *LabourRateService) Create(ctx context.Context, input *CreateLabourRateInput) (*domain.LabourRateDTO, error) {
	stateCode := domain.StateCode(input.StateCode)

	if _, err := s.rateRepo.GetRate(ctx, input.LabourType, stateCode); err == nil {
		return nil, ErrLabourRateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing labour rate: %w", err)
	}

	rate := &domain.LabourRate{
		LabourType:    input.LabourType,
		StateCode:     stateCode,
		CostPerPerson: input.CostPerPerson,
		Hours:         input.Hours,
	}
	if rate.Hours == 0 {
		rate.Hours = 8
	}

	if err := s.rateRepo.Create(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create labour rate: %w", err)
	}

	s.logger.Info("labour rate created",
		zap.Uint("id", rate.ID),
		zap.String("labourType", rate.LabourType),
		zap.String("stateCode", string(rate.StateCode)),
	)

	dto := mapper.ToLabourRateDTO(rate)
	return &dto, nil
}

// GetByID returns a labour rate by its numeric ID
func (s *LabourRateService) GetByID(ctx context.Context, id uint) (*domain.LabourRateDTO, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabourRateNotFound
		}
		return nil, fmt.Errorf("failed to get labour rate: %w", err)
	}

	dto := mapper.ToLabourRateDTO(rate)
	return &dto, nil
}

// Resolve looks up the effective rate for a labour type in a state.
// No fallback is applied: a missing combination is a not-found error.
func (s *LabourRateService) Resolve(ctx context.Context, labourType, stateCode string) (*domain.LabourRateDTO, error) {
	state := domain.StateCode(stateCode)
	if !state.IsValid() {
		return nil, ErrInvalidStateCode
	}

	rate, err := s.rateRepo.GetRate(ctx, labourType, state)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabourRateNotFound
		}
		return nil, fmt.Errorf("failed to resolve labour rate: %w", err)
	}

	dto := mapper.ToLabourRateDTO(rate)
	return &dto, nil
}

// List returns a filtered page of labour rates
func (s *LabourRateService) List(ctx context.Context, filter *repository.LabourRateFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	rates, total, err := s.rateRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list labour rates: %w", err)
	}

	dtos := make([]domain.LabourRateDTO, len(rates))
	for i, rate := range rates {
		dtos[i] = mapper.ToLabourRateDTO(&rate)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update applies a partial update to a labour rate
func (s *LabourRateService) Update(ctx context.Context, id uint, input *UpdateLabourRateInput) (*domain.LabourRateDTO, error) {
	rate, err := s.rateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabourRateNotFound
		}
		return nil, fmt.Errorf("failed to get labour rate: %w", err)
	}

	if input.CostPerPerson != nil {
		rate.CostPerPerson = *input.CostPerPerson
	}
	if input.Hours != nil {
		rate.Hours = *input.Hours
	}

	if err := s.rateRepo.Update(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to update labour rate: %w", err)
	}

	s.logger.Info("labour rate updated",
		zap.Uint("id", rate.ID),
		zap.String("labourType", rate.LabourType),
		zap.String("stateCode", string(rate.StateCode)),
	)

	dto := mapper.ToLabourRateDTO(rate)
	return &dto, nil
}

// Delete removes a labour rate
func (s *LabourRateService) Delete(ctx context.Context, id uint) error {
	if _, err := s.rateRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLabourRateNotFound
		}
		return fmt.Errorf("failed to get labour rate: %w", err)
	}

	if err := s.rateRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete labour rate: %w", err)
	}

	s.logger.Info("labour rate deleted", zap.Uint("id", id))
	return nil
}
