package repository

import (
	"context"
	"strings"

	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// EquipmentFilter represents filter options for querying the equipment catalog
type EquipmentFilter struct {
	Search    string
	Category  string
	StateCode string
	Site      string
	MinCost   *float64
	MaxCost   *float64
}

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) Create(ctx context.Context, equipment *domain.Equipment) error {
	return r.db.WithContext(ctx).Create(equipment).Error
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id uint) (*domain.Equipment, error) {
	var equipment domain.Equipment
	err := r.db.WithContext(ctx).First(&equipment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *EquipmentRepository) GetByEquipmentID(ctx context.Context, equipmentID string) (*domain.Equipment, error) {
	var equipment domain.Equipment
	err := r.db.WithContext(ctx).First(&equipment, "equipment_id = ?", equipmentID).Error
	if err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, equipment *domain.Equipment) error {
	return r.db.WithContext(ctx).Save(equipment).Error
}

func (r *EquipmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Equipment{}, "id = ?", id).Error
}

func (r *EquipmentRepository) List(ctx context.Context, filter *EquipmentFilter, page, pageSize int) ([]domain.Equipment, int64, error) {
	var equipment []domain.Equipment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Equipment{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("equipment_id ASC").Find(&equipment).Error

	return equipment, total, err
}

// Search returns catalog equipment matching the query, for global search
func (r *EquipmentRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Equipment, error) {
	var equipment []domain.Equipment
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(equipment_id) LIKE ? OR LOWER(equipment_name) LIKE ? OR LOWER(category) LIKE ?",
			searchPattern, searchPattern, searchPattern).
		Limit(limit).
		Find(&equipment).Error
	return equipment, err
}

// UpdateUnitCost updates only the unit cost of an equipment item by its business identifier
func (r *EquipmentRepository) UpdateUnitCost(ctx context.Context, equipmentID string, unitCost float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("equipment_id = ?", equipmentID).
		Update("unit_cost", unitCost).Error
}

// Stats returns catalog-level statistics for the dashboard
func (r *EquipmentRepository) Stats(ctx context.Context) (count int64, totalValue float64, distinctCategories int64, err error) {
	if err = r.db.WithContext(ctx).Model(&domain.Equipment{}).Count(&count).Error; err != nil {
		return
	}

	var sum struct {
		Total float64
	}
	if err = r.db.WithContext(ctx).Model(&domain.Equipment{}).
		Select("COALESCE(SUM(unit_cost), 0) as total").
		Scan(&sum).Error; err != nil {
		return
	}
	totalValue = sum.Total

	err = r.db.WithContext(ctx).Model(&domain.Equipment{}).
		Where("category <> ''").
		Distinct("category").
		Count(&distinctCategories).Error
	return
}

func (r *EquipmentRepository) applyFilters(query *gorm.DB, filter *EquipmentFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(equipment_id) LIKE ? OR LOWER(equipment_name) LIKE ?",
			searchPattern, searchPattern)
	}

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.StateCode != "" {
		query = query.Where("state_code = ?", filter.StateCode)
	}

	if filter.Site != "" {
		query = query.Where("site = ?", filter.Site)
	}

	// Price range bounds are inclusive
	if filter.MinCost != nil {
		query = query.Where("unit_cost >= ?", *filter.MinCost)
	}

	if filter.MaxCost != nil {
		query = query.Where("unit_cost <= ?", *filter.MaxCost)
	}

	return query
}
