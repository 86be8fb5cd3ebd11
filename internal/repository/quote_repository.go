package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// QuoteFilter represents filter options for querying quotes
type QuoteFilter struct {
	Search    string
	Status    string
	ProjectID *uuid.UUID
}

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// Delete removes a quote together with its items
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Items").
		Delete(&domain.Quote{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *QuoteRepository) List(ctx context.Context, filter *QuoteFilter, page, pageSize int) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotes).Error

	return quotes, total, err
}

// Search returns quotes matching the query, for global search
func (r *QuoteRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(quote_number) LIKE ? OR LOWER(client_name) LIKE ? OR LOWER(project_name) LIKE ?",
			searchPattern, searchPattern, searchPattern).
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}

func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).Count(&count).Error
	return count, err
}

// ListExpirable returns every sent quote whose validity lapsed before the cutoff
func (r *QuoteRepository) ListExpirable(ctx context.Context, cutoff time.Time) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?", domain.QuoteStatusSent, cutoff).
		Find(&quotes).Error
	return quotes, err
}

// SumTotalByStatus sums quote total amounts for the given statuses
func (r *QuoteRepository) SumTotalByStatus(ctx context.Context, statuses ...domain.QuoteStatus) (float64, error) {
	var sum struct {
		Total float64
	}
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Where("status IN ?", statuses).
		Scan(&sum).Error
	return sum.Total, err
}

// Advisory lock class for quote number allocation; the year is the second key.
const quoteNumberLockClass = 4217

// NextQuoteNumber returns the number the next stored quote would receive.
// This is a point-in-time read: the sequence only advances when a quote is
// stored, and concurrent creators are serialized inside CreateWithNumber,
// not here.
func (r *QuoteRepository) NextQuoteNumber(ctx context.Context, year int) (string, error) {
	number, err := nextQuoteNumber(r.db.WithContext(ctx), year)
	if err != nil {
		return "", err
	}
	return number, nil
}

// CreateWithNumber allocates the next Q-YYYY-NNNN number and inserts the
// quote in one transaction. A per-year advisory lock is held until commit,
// so two concurrent creators cannot read the same maximum (or both start an
// empty year at 0001).
func (r *QuoteRepository) CreateWithNumber(ctx context.Context, quote *domain.Quote, year int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?, ?)", quoteNumberLockClass, year).Error; err != nil {
			return fmt.Errorf("failed to lock quote number sequence: %w", err)
		}

		number, err := nextQuoteNumber(tx, year)
		if err != nil {
			return err
		}

		quote.QuoteNumber = number
		return tx.Create(quote).Error
	})
}

func nextQuoteNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("Q-%d-", year)

	var last domain.Quote
	result := tx.
		Where("quote_number LIKE ?", prefix+"%").
		Order("quote_number DESC").
		First(&last)

	next := 1
	if result.Error == nil {
		seq, err := strconv.Atoi(strings.TrimPrefix(last.QuoteNumber, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed quote number %q: %w", last.QuoteNumber, err)
		}
		next = seq + 1
	} else if result.Error != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("failed to read last quote number: %w", result.Error)
	}

	return fmt.Sprintf("%s%04d", prefix, next), nil
}

func (r *QuoteRepository) applyFilters(query *gorm.DB, filter *QuoteFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(quote_number) LIKE ? OR LOWER(client_name) LIKE ?", searchPattern, searchPattern)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	return query
}
