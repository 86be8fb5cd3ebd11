package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"gorm.io/gorm"
)

// ProjectTotals holds the summed cost of each component category for a project
type ProjectTotals struct {
	MaterialsCost float64
	EquipmentCost float64
	LabourCost    float64
	ExternalCost  float64
}

// GrandTotal returns the combined cost across all categories
func (t *ProjectTotals) GrandTotal() float64 {
	return t.MaterialsCost + t.EquipmentCost + t.LabourCost + t.ExternalCost
}

// ProjectComponentRepository handles the cost component lines attached to projects
type ProjectComponentRepository struct {
	db *gorm.DB
}

func NewProjectComponentRepository(db *gorm.DB) *ProjectComponentRepository {
	return &ProjectComponentRepository{db: db}
}

// Materials

func (r *ProjectComponentRepository) AddMaterial(ctx context.Context, line *domain.ProjectMaterial) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *ProjectComponentRepository) GetMaterial(ctx context.Context, id uuid.UUID) (*domain.ProjectMaterial, error) {
	var line domain.ProjectMaterial
	err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *ProjectComponentRepository) ListMaterials(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMaterial, error) {
	var lines []domain.ProjectMaterial
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *ProjectComponentRepository) UpdateMaterial(ctx context.Context, line *domain.ProjectMaterial) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *ProjectComponentRepository) DeleteMaterial(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProjectMaterial{}, "id = ?", id).Error
}

// Equipment

func (r *ProjectComponentRepository) AddEquipment(ctx context.Context, line *domain.ProjectEquipment) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *ProjectComponentRepository) GetEquipment(ctx context.Context, id uuid.UUID) (*domain.ProjectEquipment, error) {
	var line domain.ProjectEquipment
	err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *ProjectComponentRepository) ListEquipment(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectEquipment, error) {
	var lines []domain.ProjectEquipment
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *ProjectComponentRepository) UpdateEquipment(ctx context.Context, line *domain.ProjectEquipment) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *ProjectComponentRepository) DeleteEquipment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProjectEquipment{}, "id = ?", id).Error
}

// Labour

func (r *ProjectComponentRepository) AddLabour(ctx context.Context, line *domain.ProjectLabour) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *ProjectComponentRepository) GetLabour(ctx context.Context, id uuid.UUID) (*domain.ProjectLabour, error) {
	var line domain.ProjectLabour
	err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *ProjectComponentRepository) ListLabour(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectLabour, error) {
	var lines []domain.ProjectLabour
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&lines).Error
	return lines, err
}

func (r *ProjectComponentRepository) UpdateLabour(ctx context.Context, line *domain.ProjectLabour) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *ProjectComponentRepository) DeleteLabour(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProjectLabour{}, "id = ?", id).Error
}

// Tasks

func (r *ProjectComponentRepository) AddTask(ctx context.Context, task *domain.ProjectTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *ProjectComponentRepository) GetTask(ctx context.Context, id uuid.UUID) (*domain.ProjectTask, error) {
	var task domain.ProjectTask
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *ProjectComponentRepository) ListTasks(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectTask, error) {
	var tasks []domain.ProjectTask
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *ProjectComponentRepository) UpdateTask(ctx context.Context, task *domain.ProjectTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *ProjectComponentRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProjectTask{}, "id = ?", id).Error
}

// External costs

func (r *ProjectComponentRepository) AddExternalCost(ctx context.Context, cost *domain.ExternalCost) error {
	return r.db.WithContext(ctx).Create(cost).Error
}

func (r *ProjectComponentRepository) GetExternalCost(ctx context.Context, id uuid.UUID) (*domain.ExternalCost, error) {
	var cost domain.ExternalCost
	err := r.db.WithContext(ctx).First(&cost, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &cost, nil
}

func (r *ProjectComponentRepository) ListExternalCosts(ctx context.Context, projectID uuid.UUID) ([]domain.ExternalCost, error) {
	var costs []domain.ExternalCost
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&costs).Error
	return costs, err
}

func (r *ProjectComponentRepository) UpdateExternalCost(ctx context.Context, cost *domain.ExternalCost) error {
	return r.db.WithContext(ctx).Save(cost).Error
}

func (r *ProjectComponentRepository) DeleteExternalCost(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ExternalCost{}, "id = ?", id).Error
}

// Totals sums the component costs for a project in the database.
// A project with no components yields all-zero totals.
func (r *ProjectComponentRepository) Totals(ctx context.Context, projectID uuid.UUID) (*ProjectTotals, error) {
	totals := &ProjectTotals{}

	type sum struct {
		Total float64
	}
	var s sum

	if err := r.db.WithContext(ctx).Model(&domain.ProjectMaterial{}).
		Select("COALESCE(SUM(total_price), 0) as total").
		Where("project_id = ?", projectID).
		Scan(&s).Error; err != nil {
		return nil, err
	}
	totals.MaterialsCost = s.Total

	if err := r.db.WithContext(ctx).Model(&domain.ProjectEquipment{}).
		Select("COALESCE(SUM(total_price), 0) as total").
		Where("project_id = ?", projectID).
		Scan(&s).Error; err != nil {
		return nil, err
	}
	totals.EquipmentCost = s.Total

	if err := r.db.WithContext(ctx).Model(&domain.ProjectLabour{}).
		Select("COALESCE(SUM(total_price), 0) as total").
		Where("project_id = ?", projectID).
		Scan(&s).Error; err != nil {
		return nil, err
	}
	totals.LabourCost = s.Total

	if err := r.db.WithContext(ctx).Model(&domain.ExternalCost{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("project_id = ?", projectID).
		Scan(&s).Error; err != nil {
		return nil, err
	}
	totals.ExternalCost = s.Total

	return totals, nil
}
