package repository

import (
	"context"
	"strings"

	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// MaterialFilter represents filter options for querying the material catalog
type MaterialFilter struct {
	Search    string
	StateCode string
	Site      string
	MinCost   *float64
	MaxCost   *float64
}

type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

func (r *MaterialRepository) Create(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Create(material).Error
}

func (r *MaterialRepository) GetByID(ctx context.Context, id uint) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) GetByMaterialID(ctx context.Context, materialID string) (*domain.Material, error) {
	var material domain.Material
	err := r.db.WithContext(ctx).First(&material, "material_id = ?", materialID).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *MaterialRepository) Update(ctx context.Context, material *domain.Material) error {
	return r.db.WithContext(ctx).Save(material).Error
}

func (r *MaterialRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Material{}, "id = ?", id).Error
}

func (r *MaterialRepository) List(ctx context.Context, filter *MaterialFilter, page, pageSize int) ([]domain.Material, int64, error) {
	var materials []domain.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Material{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("material_id ASC").Find(&materials).Error

	return materials, total, err
}

// Search returns catalog materials matching the query, for global search
func (r *MaterialRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Material, error) {
	var materials []domain.Material
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(material_id) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sales_part_no) LIKE ?",
			searchPattern, searchPattern, searchPattern).
		Limit(limit).
		Find(&materials).Error
	return materials, err
}

// UpdateUnitCost updates only the unit cost of a material by its business identifier
func (r *MaterialRepository) UpdateUnitCost(ctx context.Context, materialID string, unitCost float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Material{}).
		Where("material_id = ?", materialID).
		Update("unit_cost", unitCost).Error
}

// Stats returns catalog-level statistics for the dashboard
func (r *MaterialRepository) Stats(ctx context.Context) (count int64, totalValue float64, distinctSites int64, err error) {
	if err = r.db.WithContext(ctx).Model(&domain.Material{}).Count(&count).Error; err != nil {
		return
	}

	var sum struct {
		Total float64
	}
	if err = r.db.WithContext(ctx).Model(&domain.Material{}).
		Select("COALESCE(SUM(unit_cost), 0) as total").
		Scan(&sum).Error; err != nil {
		return
	}
	totalValue = sum.Total

	err = r.db.WithContext(ctx).Model(&domain.Material{}).
		Where("site <> ''").
		Distinct("site").
		Count(&distinctSites).Error
	return
}

func (r *MaterialRepository) applyFilters(query *gorm.DB, filter *MaterialFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(material_id) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sales_part_no) LIKE ?",
			searchPattern, searchPattern, searchPattern)
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
