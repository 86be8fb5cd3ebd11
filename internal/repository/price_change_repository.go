package repository

import (
	"context"
	"time"

	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// PriceChangeFilter represents filter options for querying price change history
type PriceChangeFilter struct {
	ItemType  string
	ItemRef   string
	Source    string
	StateCode string
	StartTime *time.Time
	EndTime   *time.Time
}

type PriceChangeRepository struct {
	db *gorm.DB
}

func NewPriceChangeRepository(db *gorm.DB) *PriceChangeRepository {
	return &PriceChangeRepository{db: db}
}

func (r *PriceChangeRepository) Create(ctx context.Context, change *domain.PriceChangeLog) error {
	return r.db.WithContext(ctx).Create(change).Error
}

// CreateBatch inserts multiple price change records efficiently
func (r *PriceChangeRepository) CreateBatch(ctx context.Context, changes []*domain.PriceChangeLog) error {
	if len(changes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(changes).Error
}

func (r *PriceChangeRepository) List(ctx context.Context, filter *PriceChangeFilter, page, pageSize int) ([]domain.PriceChangeLog, int64, error) {
	var changes []domain.PriceChangeLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.PriceChangeLog{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&changes).Error

	return changes, total, err
}

// ListByItem retrieves the price history for a single catalog item
func (r *PriceChangeRepository) ListByItem(ctx context.Context, itemType, itemRef string, limit int) ([]domain.PriceChangeLog, error) {
	var changes []domain.PriceChangeLog
	err := r.db.WithContext(ctx).
		Where("item_type = ? AND item_ref = ?", itemType, itemRef).
		Order("created_at DESC").
		Limit(limit).
		Find(&changes).Error
	return changes, err
}

func (r *PriceChangeRepository) applyFilters(query *gorm.DB, filter *PriceChangeFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.ItemType != "" {
		query = query.Where("item_type = ?", filter.ItemType)
	}

	if filter.ItemRef != "" {
		query = query.Where("item_ref = ?", filter.ItemRef)
	}

	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}

	if filter.StateCode != "" {
		query = query.Where("state_code = ?", filter.StateCode)
	}

	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}

	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}

	return query
}
