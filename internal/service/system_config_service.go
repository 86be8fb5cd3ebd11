package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetConfigInput holds the fields for creating or replacing a config entry
type SetConfigInput struct {
	Key         string `json:"key" validate:"required,max=100"`
	Value       string `json:"value" validate:"required"`
	ValueType   string `json:"valueType" validate:"omitempty,oneof=string int float bool"`
	Description string `json:"description" validate:"max=500"`
}

// SystemConfigService manages admin-editable key-value configuration
type SystemConfigService struct {
	configRepo *repository.SystemConfigRepository
	logger     *zap.Logger
}

// NewSystemConfigService creates a new SystemConfigService instance
func NewSystemConfigService(configRepo *repository.SystemConfigRepository, logger *zap.Logger) *SystemConfigService {
	return &SystemConfigService{
		configRepo: configRepo,
		logger:     logger,
	}
}

// Get returns a config entry by key
func (s *SystemConfigService) Get(ctx context.Context, key string) (*domain.SystemConfigDTO, error) {
	cfg, err := s.configRepo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	dto := mapper.ToSystemConfigDTO(cfg)
	return &dto, nil
}

// List returns all config entries ordered by key
func (s *SystemConfigService) List(ctx context.Context) ([]domain.SystemConfigDTO, error) {
	configs, err := s.configRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}

	dtos := make([]domain.SystemConfigDTO, len(configs))
	for i, cfg := range configs {
		dtos[i] = mapper.ToSystemConfigDTO(&cfg)
	}
	return dtos, nil
}

// Set creates or replaces a config entry. The value must parse as the
// declared type.
func (s *SystemConfigService) Set(ctx context.Context, input *SetConfigInput) (*domain.SystemConfigDTO, error) {
	valueType := input.ValueType
	if valueType == "" {
		valueType = "string"
	}
	if err := validateConfigValue(input.Value, valueType); err != nil {
		return nil, err
	}

	cfg := &domain.SystemConfig{
		Key:         input.Key,
		Value:       input.Value,
		ValueType:   valueType,
		Description: input.Description,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		cfg.UpdatedBy = userCtx.Email
	}

	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to set config: %w", err)
	}

	s.logger.Info("config set",
		zap.String("key", cfg.Key),
		zap.String("valueType", cfg.ValueType),
		zap.String("updatedBy", cfg.UpdatedBy),
	)

	dto := mapper.ToSystemConfigDTO(cfg)
	return &dto, nil
}

// Delete removes a config entry by key
func (s *SystemConfigService) Delete(ctx context.Context, key string) error {
	if _, err := s.configRepo.GetByKey(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrConfigNotFound
		}
		return fmt.Errorf("failed to get config: %w", err)
	}

	if err := s.configRepo.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}

	s.logger.Info("config deleted", zap.String("key", key))
	return nil
}

func validateConfigValue(value, valueType string) error {
	switch valueType {
	case "int":
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrInvalidConfigValue, value)
		}
	case "float":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidConfigValue, value)
		}
	case "bool":
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidConfigValue, value)
		}
	}
	return nil
}
