package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteItemRepository struct {
	db *gorm.DB
}

func NewQuoteItemRepository(db *gorm.DB) *QuoteItemRepository {
	return &QuoteItemRepository{db: db}
}

func (r *QuoteItemRepository) Create(ctx context.Context, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *QuoteItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteItem, error) {
	var item domain.QuoteItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *QuoteItemRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("sort_order ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

func (r *QuoteItemRepository) Update(ctx context.Context, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *QuoteItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.QuoteItem{}, "id = ?", id).Error
}

// SumByQuote returns the sum of item totals and the item count for a quote
func (r *QuoteItemRepository) SumByQuote(ctx context.Context, quoteID uuid.UUID) (float64, int64, error) {
	var result struct {
		Total float64
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&domain.QuoteItem{}).
		Select("COALESCE(SUM(total_price), 0) as total, COUNT(*) as count").
		Where("quote_id = ?", quoteID).
		Scan(&result).Error
	return result.Total, result.Count, err
}
