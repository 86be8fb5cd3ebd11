package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/slcgroup/costing-api/internal/datawarehouse"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notification threshold: price swings at or above this percentage raise
// a high severity notification.
const significantChangePct = 10.0

// PriceSyncResult summarises one synchronization run
type PriceSyncResult struct {
	Checked   int `json:"checked"`
	Updated   int `json:"updated"`
	Unmatched int `json:"unmatched"`
	Failed    int `json:"failed"`
}

// PriceSyncService pulls current supplier prices from the data warehouse
// and applies them to the material and equipment catalogs, recording every
// change in the price history.
type PriceSyncService struct {
	warehouse        *datawarehouse.Client
	materialRepo     *repository.MaterialRepository
	equipmentRepo    *repository.EquipmentRepository
	priceChangeRepo  *repository.PriceChangeRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewPriceSyncService creates a new PriceSyncService instance
func NewPriceSyncService(
	warehouse *datawarehouse.Client,
	materialRepo *repository.MaterialRepository,
	equipmentRepo *repository.EquipmentRepository,
	priceChangeRepo *repository.PriceChangeRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *PriceSyncService {
	return &PriceSyncService{
		warehouse:        warehouse,
		materialRepo:     materialRepo,
		equipmentRepo:    equipmentRepo,
		priceChangeRepo:  priceChangeRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Sync runs a full synchronization of both catalogs. Items present in the
// warehouse but not in the catalog are counted, not created.
func (s *PriceSyncService) Sync(ctx context.Context) (*PriceSyncResult, error) {
	if s.warehouse == nil || !s.warehouse.IsEnabled() {
		return nil, ErrWarehouseDisabled
	}

	result := &PriceSyncResult{}

	if err := s.syncItemType(ctx, "material", result); err != nil {
		return result, err
	}
	if err := s.syncItemType(ctx, "equipment", result); err != nil {
		return result, err
	}

	s.logger.Info("price sync completed",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *PriceSyncService) syncItemType(ctx context.Context, itemType string, result *PriceSyncResult) error {
	prices, err := s.warehouse.GetSupplierPrices(ctx, itemType)
	if err != nil {
		return fmt.Errorf("failed to fetch %s supplier prices: %w", itemType, err)
	}

	for _, price := range prices {
		result.Checked++

		oldPrice, found, err := s.currentPrice(ctx, itemType, price.ItemRef)
		if err != nil {
			result.Failed++
			s.logger.Warn("price sync lookup failed",
				zap.String("itemType", itemType),
				zap.String("itemRef", price.ItemRef),
				zap.Error(err),
			)
			continue
		}
		if !found {
			result.Unmatched++
			continue
		}
		if oldPrice == price.UnitCost {
			continue
		}

		if err := s.applyPrice(ctx, itemType, price.ItemRef, price.UnitCost); err != nil {
			result.Failed++
			s.logger.Warn("price sync update failed",
				zap.String("itemType", itemType),
				zap.String("itemRef", price.ItemRef),
				zap.Error(err),
			)
			continue
		}

		changePct := 0.0
		if oldPrice != 0 {
			changePct = (price.UnitCost - oldPrice) / oldPrice * 100
		}

		change := &domain.PriceChangeLog{
			ItemType:  itemType,
			ItemRef:   price.ItemRef,
			OldPrice:  oldPrice,
			NewPrice:  price.UnitCost,
			ChangePct: changePct,
			Source:    domain.PriceChangeSourceWarehouseSync,
			StateCode: domain.StateCode(price.StateCode),
		}
		if err := s.priceChangeRepo.Create(ctx, change); err != nil {
			s.logger.Warn("failed to record synced price change",
				zap.String("itemRef", price.ItemRef),
				zap.Error(err),
			)
		}

		if changePct >= significantChangePct || changePct <= -significantChangePct {
			s.notifySignificantChange(ctx, itemType, price.ItemRef, oldPrice, price.UnitCost, changePct)
		}

		result.Updated++
	}
	return nil
}

func (s *PriceSyncService) currentPrice(ctx context.Context, itemType, itemRef string) (float64, bool, error) {
	switch itemType {
	case "material":
		material, err := s.materialRepo.GetByMaterialID(ctx, itemRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return material.UnitCost, true, nil
	case "equipment":
		equipment, err := s.equipmentRepo.GetByEquipmentID(ctx, itemRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return equipment.UnitCost, true, nil
	}
	return 0, false, fmt.Errorf("unknown item type %q", itemType)
}

func (s *PriceSyncService) applyPrice(ctx context.Context, itemType, itemRef string, unitCost float64) error {
	switch itemType {
	case "material":
		return s.materialRepo.UpdateUnitCost(ctx, itemRef, unitCost)
	case "equipment":
		return s.equipmentRepo.UpdateUnitCost(ctx, itemRef, unitCost)
	}
	return fmt.Errorf("unknown item type %q", itemType)
}

// notifySignificantChange broadcasts a price swing to all users.
// Failures are logged, never propagated.
func (s *PriceSyncService) notifySignificantChange(ctx context.Context, itemType, itemRef string, oldPrice, newPrice, changePct float64) {
	notification := &domain.Notification{
		Type:       domain.NotificationTypePriceChange,
		Severity:   domain.SeverityHigh,
		Title:      "Significant price change",
		Message:    fmt.Sprintf("%s %s moved from %.2f to %.2f (%.1f%%)", itemType, itemRef, oldPrice, newPrice, changePct),
		EntityType: itemType,
		EntityID:   itemRef,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create price change notification",
			zap.String("itemRef", itemRef),
			zap.Error(err),
		)
	}
}
