package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectFilter represents filter options for querying projects
type ProjectFilter struct {
	Search    string
	Status    string
	Priority  string
	StateCode string
	ManagerID *uuid.UUID
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Manager").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDWithComponents loads a project with all of its cost components
func (r *ProjectRepository) GetByIDWithComponents(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Preload("Materials").
		Preload("Equipment").
		Preload("Labour").
		Preload("Tasks").
		Preload("ExternalCosts").
		First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete removes a project together with all of its cost components
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Select("Materials", "Equipment", "Labour", "Tasks", "ExternalCosts").
		Delete(&domain.Project{BaseModel: domain.BaseModel{ID: id}}).Error
}

func (r *ProjectRepository) List(ctx context.Context, filter *ProjectFilter, page, pageSize int) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Manager").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&projects).Error

	return projects, total, err
}

// Recent returns the most recently updated projects
func (r *ProjectRepository) Recent(ctx context.Context, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Preload("Manager").
		Order("updated_at DESC").
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

// Search returns projects matching the query, for global search
func (r *ProjectRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Project, error) {
	var projects []domain.Project
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern).
		Limit(limit).
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Project{}).Count(&count).Error
	return count, err
}

// CountByStatus counts projects grouped by status
func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int64, error) {
	type result struct {
		Status domain.ProjectStatus
		Count  int64
	}

	var results []result
	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ProjectStatus]int64)
	for _, res := range results {
		counts[res.Status] = res.Count
	}
	return counts, nil
}

// UpdateActualCost sets the cached actual cost of a project
func (r *ProjectRepository) UpdateActualCost(ctx context.Context, id uuid.UUID, actualCost float64) error {
	return r.db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("id = ?", id).
		Update("actual_cost", actualCost).Error
}

func (r *ProjectRepository) applyFilters(query *gorm.DB, filter *ProjectFilter) *gorm.DB {
	if filter == nil {
		return query
	}

	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchPattern, searchPattern)
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	if filter.StateCode != "" {
		query = query.Where("state_code = ?", filter.StateCode)
	}

	if filter.ManagerID != nil {
		query = query.Where("manager_id = ?", *filter.ManagerID)
	}

	return query
}
