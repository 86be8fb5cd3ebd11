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

// CreateEquipmentInput holds the fields for creating a catalog equipment item
type CreateEquipmentInput struct {
	EquipmentID   string  `json:"equipmentId" validate:"required,max=100"`
	EquipmentName string  `json:"equipmentName" validate:"required,max=500"`
	Category      string  `json:"category" validate:"max=100"`
	UnitCost      float64 `json:"unitCost" validate:"gte=0"`
	StateCode     string  `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Site          string  `json:"site" validate:"max=100"`
	SupplierRef   string  `json:"supplierRef" validate:"max=100"`
}

// UpdateEquipmentInput holds optional fields for a partial equipment update.
// Nil fields are left unchanged.
type UpdateEquipmentInput struct {
	EquipmentName *string  `json:"equipmentName" validate:"omitempty,max=500"`
	Category      *string  `json:"category" validate:"omitempty,max=100"`
	UnitCost      *float64 `json:"unitCost" validate:"omitempty,gte=0"`
	StateCode     *string  `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Site          *string  `json:"site" validate:"omitempty,max=100"`
	SupplierRef   *string  `json:"supplierRef" validate:"omitempty,max=100"`
}

// EquipmentService handles business logic for the equipment catalog
type EquipmentService struct {
	equipmentRepo   *repository.EquipmentRepository
	priceChangeRepo *repository.PriceChangeRepository
	logger          *zap.Logger
}

// NewEquipmentService creates a new EquipmentService instance
func NewEquipmentService(
	equipmentRepo *repository.EquipmentRepository,
	priceChangeRepo *repository.PriceChangeRepository,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepo:   equipmentRepo,
		priceChangeRepo: priceChangeRepo,
		logger:          logger,
	}
}

// Create adds an equipment item to the catalog
func (s *EquipmentService) Create(ctx context.Context, input *CreateEquipmentInput) (*domain.EquipmentDTO, error) {
	if _, err := s.equipmentRepo.GetByEquipmentID(ctx, input.EquipmentID); err == nil {
		return nil, ErrEquipmentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing equipment: %w", err)
	}

	equipment := &domain.Equipment{
		EquipmentID:   input.EquipmentID,
		EquipmentName: input.EquipmentName,
		Category:      input.Category,
		UnitCost:      input.UnitCost,
		StateCode:     domain.StateCode(input.StateCode),
		Site:          input.Site,
		SupplierRef:   input.SupplierRef,
	}

	if err := s.equipmentRepo.Create(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	s.logger.Info("equipment created",
		zap.Uint("id", equipment.ID),
		zap.String("equipmentID", equipment.EquipmentID),
	)

	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

// GetByID returns an equipment item by its numeric ID
func (s *EquipmentService) GetByID(ctx context.Context, id uint) (*domain.EquipmentDTO, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

// List returns a filtered page of catalog equipment
func (s *EquipmentService) List(ctx context.Context, filter *repository.EquipmentFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	equipment, total, err := s.equipmentRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}

	dtos := make([]domain.EquipmentDTO, len(equipment))
	for i, item := range equipment {
		dtos[i] = mapper.ToEquipmentDTO(&item)
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

// Update applies a partial update; unset fields keep their values.
// A unit cost change is recorded in the price change history.
func (s *EquipmentService) Update(ctx context.Context, id uint, input *UpdateEquipmentInput) (*domain.EquipmentDTO, error) {
	equipment, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	oldCost := equipment.UnitCost

	if input.EquipmentName != nil {
		equipment.EquipmentName = *input.EquipmentName
	}
	if input.Category != nil {
		equipment.Category = *input.Category
	}
	if input.UnitCost != nil {
		equipment.UnitCost = *input.UnitCost
	}
	if input.StateCode != nil {
		equipment.StateCode = domain.StateCode(*input.StateCode)
	}
	if input.Site != nil {
		equipment.Site = *input.Site
	}
	if input.SupplierRef != nil {
		equipment.SupplierRef = *input.SupplierRef
	}

	if err := s.equipmentRepo.Update(ctx, equipment); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	if input.UnitCost != nil && *input.UnitCost != oldCost {
		s.recordPriceChange(ctx, equipment, oldCost, *input.UnitCost)
	}

	s.logger.Info("equipment updated",
		zap.Uint("id", equipment.ID),
		zap.String("equipmentID", equipment.EquipmentID),
	)

	dto := mapper.ToEquipmentDTO(equipment)
	return &dto, nil
}

// Delete removes an equipment item from the catalog
func (s *EquipmentService) Delete(ctx context.Context, id uint) error {
	if _, err := s.equipmentRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		return fmt.Errorf("failed to get equipment: %w", err)
	}

	if err := s.equipmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	s.logger.Info("equipment deleted", zap.Uint("id", id))
	return nil
}

// Stats returns aggregate statistics for the equipment catalog
func (s *EquipmentService) Stats(ctx context.Context) (*domain.CatalogStatsDTO, error) {
	count, totalValue, distinctCategories, err := s.equipmentRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment stats: %w", err)
	}

	return &domain.CatalogStatsDTO{
		Count:          count,
		TotalValue:     totalValue,
		DistinctGroups: distinctCategories,
	}, nil
}

func (s *EquipmentService) recordPriceChange(ctx context.Context, equipment *domain.Equipment, oldPrice, newPrice float64) {
	changePct := 0.0
	if oldPrice != 0 {
		changePct = (newPrice - oldPrice) / oldPrice * 100
	}

	change := &domain.PriceChangeLog{
		ItemType:  "equipment",
		ItemRef:   equipment.EquipmentID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangePct: changePct,
		Source:    domain.PriceChangeSourceManual,
		StateCode: equipment.StateCode,
	}

	if err := s.priceChangeRepo.Create(ctx, change); err != nil {
		s.logger.Warn("failed to record price change",
			zap.String("equipmentID", equipment.EquipmentID),
			zap.Error(err),
		)
	}
}
