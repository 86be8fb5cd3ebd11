package repository

import (
	"context"

	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

type SystemConfigRepository struct {
	db *gorm.DB
}

func NewSystemConfigRepository(db *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

func (r *SystemConfigRepository) GetByKey(ctx context.Context, key string) (*domain.SystemConfig, error) {
	var cfg domain.SystemConfig
	err := r.db.WithContext(ctx).First(&cfg, "key = ?", key).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *SystemConfigRepository) List(ctx context.Context) ([]domain.SystemConfig, error) {
	var configs []domain.SystemConfig
	err := r.db.WithContext(ctx).Order("key ASC").Find(&configs).Error
	return configs, err
}

// Upsert creates the config record or updates its value if the key exists
func (r *SystemConfigRepository) Upsert(ctx context.Context, cfg *domain.SystemConfig) error {
	var existing domain.SystemConfig
	err := r.db.WithContext(ctx).Where("key = ?", cfg.Key).First(&existing).Error

	if err == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(cfg).Error
	}
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"value":      cfg.Value,
		"value_type": cfg.ValueType,
		"updated_by": cfg.UpdatedBy,
	}
	if cfg.Description != "" {
		updates["description"] = cfg.Description
	}

	if err := r.db.WithContext(ctx).Model(&domain.SystemConfig{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error; err != nil {
		return err
	}

	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	return nil
}

func (r *SystemConfigRepository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&domain.SystemConfig{}, "key = ?", key).Error
}
