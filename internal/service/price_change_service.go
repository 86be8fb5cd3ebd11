package service

import (
	"context"
	"fmt"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
)

// PriceChangeService exposes the catalog price change history
type PriceChangeService struct {
	priceChangeRepo *repository.PriceChangeRepository
	logger          *zap.Logger
}

// NewPriceChangeService creates a new PriceChangeService instance
func NewPriceChangeService(priceChangeRepo *repository.PriceChangeRepository, logger *zap.Logger) *PriceChangeService {
	return &PriceChangeService{
		priceChangeRepo: priceChangeRepo,
		logger:          logger,
	}
}

// List returns a filtered page of price changes, newest first
func (s *PriceChangeService) List(ctx context.Context, filter *repository.PriceChangeFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	changes, total, err := s.priceChangeRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list price changes: %w", err)
	}

	dtos := make([]domain.PriceChangeLogDTO, len(changes))
	for i, change := range changes {
		dtos[i] = mapper.ToPriceChangeLogDTO(&change)
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

// History returns the recent price changes of a single catalog item
func (s *PriceChangeService) History(ctx context.Context, itemType, itemRef string, limit int) ([]domain.PriceChangeLogDTO, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	changes, err := s.priceChangeRepo.ListByItem(ctx, itemType, itemRef, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list item price history: %w", err)
	}

	dtos := make([]domain.PriceChangeLogDTO, len(changes))
	for i, change := range changes {
		dtos[i] = mapper.ToPriceChangeLogDTO(&change)
	}
	return dtos, nil
}
