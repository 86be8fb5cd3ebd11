package repository

import (
	"context"
	"strings"

	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// LabourRateFilter represents filter options for querying labour rates
type LabourRateFilter struct {
	Search    string
	StateCode string
}

type LabourRateRepository struct {
	db *gorm.DB
}

func NewLabourRateRepository(db *gorm.DB) *LabourRateRepository {
	return &LabourRateRepository{db: db}
}

func (r *LabourRateRepository) Create(ctx context.Context, rate *domain.LabourRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *LabourRateRepository) GetByID(ctx context.Context, id uint) (*domain.LabourRate, error) {
	var rate domain.LabourRate
	err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

// GetRate resolves the effective rate for a labour type in a state.
// The (labour_type, state_code) pair is unique so at most one row matches.
func (r *LabourRateRepository) GetRate(ctx context.Context, labourType string, stateCode domain.StateCode) (*domain.LabourRate, error) {
	var rate domain.LabourRate
	err := r.db.WithContext(ctx).
		First(&rate, "labour_type = ? AND state_code = ?", labourType, stateCode).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *LabourRateRepository) Update(ctx context.Context, rate *domain.LabourRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *LabourRateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.LabourRate{}, "id = ?", id).Error
}

func (r *LabourRateRepository) List(ctx context.Context, filter *LabourRateFilter, page, pageSize int) ([]domain.LabourRate, int64, error) {
	var rates []domain.LabourRate
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.LabourRate{})

	if filter != nil {
		if filter.Search != "" {
			searchPattern := "%" + strings.ToLower(filter.Search) + "%"
			query = query.Where("LOWER(labour_type) LIKE ?", searchPattern)
		}
		if filter.StateCode != "" {
			query = query.Where("state_code = ?", filter.StateCode)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("labour_type ASC, state_code ASC").Find(&rates).Error

	return rates, total, err
}
