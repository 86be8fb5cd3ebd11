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

// CreateMaterialInput holds the fields for creating a catalog material
type CreateMaterialInput struct {
	MaterialID  string  `json:"materialId" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=500"`
	Unit        string  `json:"unit" validate:"max=50"`
	UnitCost    float64 `json:"unitCost" validate:"gte=0"`
	SalesPartNo string  `json:"salesPartNo" validate:"max=100"`
	StateCode   string  `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Site        string  `json:"site" validate:"max=100"`
	SupplierRef string  `json:"supplierRef" validate:"max=100"`
}

// UpdateMaterialInput holds optional fields for a partial material update.
// Nil fields are left unchanged.
type UpdateMaterialInput struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Unit        *string  `json:"unit" validate:"omitempty,max=50"`
	UnitCost    *float64 `json:"unitCost" validate:"omitempty,gte=0"`
	SalesPartNo *string  `json:"salesPartNo" validate:"omitempty,max=100"`
	StateCode   *string  `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Site        *string  `json:"site" validate:"omitempty,max=100"`
	SupplierRef *string  `json:"supplierRef" validate:"omitempty,max=100"`
}

// MaterialService handles business logic for the material catalog
type MaterialService struct {
	materialRepo    *repository.MaterialRepository
	priceChangeRepo *repository.PriceChangeRepository
	logger          *zap.Logger
}

// NewMaterialService creates a new MaterialService instance
func NewMaterialService(
	materialRepo *repository.MaterialRepository,
	priceChangeRepo *repository.PriceChangeRepository,
	logger *zap.Logger,
) *MaterialService {
	return &MaterialService{
		materialRepo:    materialRepo,
		priceChangeRepo: priceChangeRepo,
		logger:          logger,
	}
}

// Create adds a material to the catalog
func (s *MaterialService) Create(ctx context.Context, input *CreateMaterialInput) (*domain.MaterialDTO, error) {
	if _, err := s.materialRepo.GetByMaterialID(ctx, input.MaterialID); err == nil {
		return nil, ErrMaterialExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing material: %w", err)
	}

	material := &domain.Material{
		MaterialID:  input.MaterialID,
		Description: input.Description,
		Unit:        input.Unit,
		UnitCost:    input.UnitCost,
		SalesPartNo: input.SalesPartNo,
		StateCode:   domain.StateCode(input.StateCode),
		Site:        input.Site,
		SupplierRef: input.SupplierRef,
	}

	if err := s.materialRepo.Create(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("material created",
		zap.Uint("id", material.ID),
		zap.String("materialID", material.MaterialID),
	)

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// GetByID returns a material by its numeric ID
func (s *MaterialService) GetByID(ctx context.Context, id uint) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// List returns a filtered page of catalog materials
func (s *MaterialService) List(ctx context.Context, filter *repository.MaterialFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	materials, total, err := s.materialRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}

	dtos := make([]domain.MaterialDTO, len(materials))
	for i, material := range materials {
		dtos[i] = mapper.ToMaterialDTO(&material)
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
func (s *MaterialService) Update(ctx context.Context, id uint, input *UpdateMaterialInput) (*domain.MaterialDTO, error) {
	material, err := s.materialRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}

	oldCost := material.UnitCost

	if input.Description != nil {
		material.Description = *input.Description
	}
	if input.Unit != nil {
		material.Unit = *input.Unit
	}
	if input.UnitCost != nil {
		material.UnitCost = *input.UnitCost
	}
	if input.SalesPartNo != nil {
		material.SalesPartNo = *input.SalesPartNo
	}
	if input.StateCode != nil {
		material.StateCode = domain.StateCode(*input.StateCode)
	}
	if input.Site != nil {
		material.Site = *input.Site
	}
	if input.SupplierRef != nil {
		material.SupplierRef = *input.SupplierRef
	}

	if err := s.materialRepo.Update(ctx, material); err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}

	if input.UnitCost != nil && *input.UnitCost != oldCost {
		s.recordPriceChange(ctx, material, oldCost, *input.UnitCost)
	}

	s.logger.Info("material updated",
		zap.Uint("id", material.ID),
		zap.String("materialID", material.MaterialID),
	)

	dto := mapper.ToMaterialDTO(material)
	return &dto, nil
}

// Delete removes a material from the catalog
func (s *MaterialService) Delete(ctx context.Context, id uint) error {
	if _, err := s.materialRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("failed to get material: %w", err)
	}

	if err := s.materialRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	s.logger.Info("material deleted", zap.Uint("id", id))
	return nil
}

// Stats returns aggregate statistics for the material catalog
func (s *MaterialService) Stats(ctx context.Context) (*domain.CatalogStatsDTO, error) {
	count, totalValue, distinctSites, err := s.materialRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get material stats: %w", err)
	}

	return &domain.CatalogStatsDTO{
		Count:         count,
		TotalValue:    totalValue,
		DistinctSites: distinctSites,
	}, nil
}

func (s *MaterialService) recordPriceChange(ctx context.Context, material *domain.Material, oldPrice, newPrice float64) {
	changePct := 0.0
	if oldPrice != 0 {
		changePct = (newPrice - oldPrice) / oldPrice * 100
	}

	change := &domain.PriceChangeLog{
		ItemType:  "material",
		ItemRef:   material.MaterialID,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangePct: changePct,
		Source:    domain.PriceChangeSourceManual,
		StateCode: material.StateCode,
	}

	if err := s.priceChangeRepo.Create(ctx, change); err != nil {
		s.logger.Warn("failed to record price change",
			zap.String("materialID", material.MaterialID),
			zap.Error(err),
		)
	}
}
