package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddProjectMaterialInput attaches a catalog material to a project.
// The unit price is snapshotted from the catalog unless overridden.
type AddProjectMaterialInput struct {
	MaterialRef string   `json:"materialRef" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Quantity    float64  `json:"quantity" validate:"gt=0"`
	UnitPrice   *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
}

// AddProjectEquipmentInput attaches catalog equipment to a project
type AddProjectEquipmentInput struct {
	EquipmentRef string   `json:"equipmentRef" validate:"required,max=100"`
	Description  string   `json:"description" validate:"max=500"`
	Quantity     float64  `json:"quantity" validate:"gt=0"`
	UnitPrice    *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
}

// AddProjectLabourInput attaches a labour line to a project.
// The rate is resolved by (labour type, state); the state defaults to the
// project's state when omitted.
type AddProjectLabourInput struct {
	LabourType string   `json:"labourType" validate:"required,max=100"`
	StateCode  string   `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Persons    int      `json:"persons" validate:"required,gt=0"`
	Hours      *float64 `json:"hours" validate:"omitempty,gt=0"`
}

// UpdateComponentLineInput holds optional fields for a partial line update
type UpdateComponentLineInput struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice   *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
}

// UpdateProjectLabourInput holds optional fields for a partial labour line update
type UpdateProjectLabourInput struct {
	Persons  *int     `json:"persons" validate:"omitempty,gt=0"`
	Hours    *float64 `json:"hours" validate:"omitempty,gt=0"`
	UnitRate *float64 `json:"unitRate" validate:"omitempty,gte=0"`
}

// CreateTaskInput holds the fields for creating a project task
type CreateTaskInput struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress completed blocked"`
	Assignee    string  `json:"assignee" validate:"max=200"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskInput holds optional fields for a partial task update
type UpdateTaskInput struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed blocked"`
	Assignee    *string `json:"assignee" validate:"omitempty,max=200"`
	DueDate     *string `json:"dueDate"`
}

// CreateExternalCostInput holds the fields for attaching an external cost
type CreateExternalCostInput struct {
	Description string  `json:"description" validate:"required,max=500"`
	Category    string  `json:"category" validate:"max=100"`
	Amount      float64 `json:"amount" validate:"gte=0"`
	Supplier    string  `json:"supplier" validate:"max=200"`
}

// UpdateExternalCostInput holds optional fields for a partial external cost update
type UpdateExternalCostInput struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Category    *string  `json:"category" validate:"omitempty,max=100"`
	Amount      *float64 `json:"amount" validate:"omitempty,gte=0"`
	Supplier    *string  `json:"supplier" validate:"omitempty,max=200"`
}

// ProjectComponentService handles the cost component lines of projects.
// Prices are snapshotted onto lines at attach time; later catalog changes
// do not alter existing lines.
type ProjectComponentService struct {
	componentRepo    *repository.ProjectComponentRepository
	projectRepo      *repository.ProjectRepository
	materialRepo     *repository.MaterialRepository
	equipmentRepo    *repository.EquipmentRepository
	labourRateRepo   *repository.LabourRateRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewProjectComponentService creates a new ProjectComponentService instance
func NewProjectComponentService(
	componentRepo *repository.ProjectComponentRepository,
	projectRepo *repository.ProjectRepository,
	materialRepo *repository.MaterialRepository,
	equipmentRepo *repository.EquipmentRepository,
	labourRateRepo *repository.LabourRateRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *ProjectComponentService {
	return &ProjectComponentService{
		componentRepo:    componentRepo,
		projectRepo:      projectRepo,
		materialRepo:     materialRepo,
		equipmentRepo:    equipmentRepo,
		labourRateRepo:   labourRateRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// AddMaterial attaches a material line to a project with a snapshotted price
func (s *ProjectComponentService) AddMaterial(ctx context.Context, projectID uuid.UUID, input *AddProjectMaterialInput) (*domain.ProjectMaterialDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	unitPrice := 0.0
	description := input.Description

	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}

	material, err := s.materialRepo.GetByMaterialID(ctx, input.MaterialRef)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up material: %w", err)
		}
		if input.UnitPrice == nil {
			return nil, ErrMaterialNotFound
		}
	} else {
		if input.UnitPrice == nil {
			unitPrice = material.UnitCost
		}
		if description == "" {
			description = material.Description
		}
	}

	line := &domain.ProjectMaterial{
		ProjectID:   projectID,
		MaterialRef: input.MaterialRef,
		Description: description,
		Quantity:    input.Quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  input.Quantity * unitPrice,
	}

	if err := s.componentRepo.AddMaterial(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add material line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	s.logger.Info("project material added",
		zap.String("projectID", projectID.String()),
		zap.String("materialRef", line.MaterialRef),
		zap.Float64("totalPrice", line.TotalPrice),
	)

	dto := mapper.ToProjectMaterialDTO(line)
	return &dto, nil
}

// ListMaterials returns the material lines of a project
func (s *ProjectComponentService) ListMaterials(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMaterialDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	lines, err := s.componentRepo.ListMaterials(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list material lines: %w", err)
	}

	dtos := make([]domain.ProjectMaterialDTO, len(lines))
	for i, line := range lines {
		dtos[i] = mapper.ToProjectMaterialDTO(&line)
	}
	return dtos, nil
}

// UpdateMaterial applies a partial update to a material line and recomputes its total
func (s *ProjectComponentService) UpdateMaterial(ctx context.Context, projectID, lineID uuid.UUID, input *UpdateComponentLineInput) (*domain.ProjectMaterialDTO, error) {
	line, err := s.componentRepo.GetMaterial(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectLineNotFound
		}
		return nil, fmt.Errorf("failed to get material line: %w", err)
	}
	if line.ProjectID != projectID {
		return nil, ErrProjectLineNotFound
	}

	if input.Description != nil {
		line.Description = *input.Description
	}
	if input.Quantity != nil {
		line.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		line.UnitPrice = *input.UnitPrice
	}
	line.TotalPrice = line.Quantity * line.UnitPrice

	if err := s.componentRepo.UpdateMaterial(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to update material line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	dto := mapper.ToProjectMaterialDTO(line)
	return &dto, nil
}

// DeleteMaterial removes a material line
func (s *ProjectComponentService) DeleteMaterial(ctx context.Context, projectID, lineID uuid.UUID) error {
	line, err := s.componentRepo.GetMaterial(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectLineNotFound
		}
		return fmt.Errorf("failed to get material line: %w", err)
	}
	if line.ProjectID != projectID {
		return ErrProjectLineNotFound
	}

	if err := s.componentRepo.DeleteMaterial(ctx, lineID); err != nil {
		return fmt.Errorf("failed to delete material line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)
	return nil
}

// AddEquipment attaches an equipment line to a project with a snapshotted price
func (s *ProjectComponentService) AddEquipment(ctx context.Context, projectID uuid.UUID, input *AddProjectEquipmentInput) (*domain.ProjectEquipmentDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	unitPrice := 0.0
	description := input.Description

	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}

	equipment, err := s.equipmentRepo.GetByEquipmentID(ctx, input.EquipmentRef)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to look up equipment: %w", err)
		}
		if input.UnitPrice == nil {
			return nil, ErrEquipmentNotFound
		}
	} else {
		if input.UnitPrice == nil {
			unitPrice = equipment.UnitCost
		}
		if description == "" {
			description = equipment.EquipmentName
		}
	}

	line := &domain.ProjectEquipment{
		ProjectID:    projectID,
		EquipmentRef: input.EquipmentRef,
		Description:  description,
		Quantity:     input.Quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   input.Quantity * unitPrice,
	}

	if err := s.componentRepo.AddEquipment(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add equipment line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	s.logger.Info("project equipment added",
		zap.String("projectID", projectID.String()),
		zap.String("equipmentRef", line.EquipmentRef),
		zap.Float64("totalPrice", line.TotalPrice),
	)

	dto := mapper.ToProjectEquipmentDTO(line)
	return &dto, nil
}

// ListEquipment returns the equipment lines of a project
func (s *ProjectComponentService) ListEquipment(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectEquipmentDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	lines, err := s.componentRepo.ListEquipment(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment lines: %w", err)
	}

	dtos := make([]domain.ProjectEquipmentDTO, len(lines))
	for i, line := range lines {
		dtos[i] = mapper.ToProjectEquipmentDTO(&line)
	}
	return dtos, nil
}

// UpdateEquipment applies a partial update to an equipment line and recomputes its total
func (s *ProjectComponentService) UpdateEquipment(ctx context.Context, projectID, lineID uuid.UUID, input *UpdateComponentLineInput) (*domain.ProjectEquipmentDTO, error) {
	line, err := s.componentRepo.GetEquipment(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectLineNotFound
		}
		return nil, fmt.Errorf("failed to get equipment line: %w", err)
	}
	if line.ProjectID != projectID {
		return nil, ErrProjectLineNotFound
	}

	if input.Description != nil {
		line.Description = *input.Description
	}
	if input.Quantity != nil {
		line.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		line.UnitPrice = *input.UnitPrice
	}
	line.TotalPrice = line.Quantity * line.UnitPrice

	if err := s.componentRepo.UpdateEquipment(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to update equipment line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	dto := mapper.ToProjectEquipmentDTO(line)
	return &dto, nil
}

// DeleteEquipment removes an equipment line
func (s *ProjectComponentService) DeleteEquipment(ctx context.Context, projectID, lineID uuid.UUID) error {
	line, err := s.componentRepo.GetEquipment(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectLineNotFound
		}
		return fmt.Errorf("failed to get equipment line: %w", err)
	}
	if line.ProjectID != projectID {
		return ErrProjectLineNotFound
	}

	if err := s.componentRepo.DeleteEquipment(ctx, lineID); err != nil {
		return fmt.Errorf("failed to delete equipment line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)
	return nil
}

// AddLabour attaches a labour line. The rate is resolved by (type, state)
// with no fallback; the hourly unit rate is the rate's cost per person
// divided by its standard hours.
func (s *ProjectComponentService) AddLabour(ctx context.Context, projectID uuid.UUID, input *AddProjectLabourInput) (*domain.ProjectLabourDTO, error) {
	project, err := s.getProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	stateCode := domain.StateCode(input.StateCode)
	if stateCode == "" {
		stateCode = project.StateCode
	}
	if !stateCode.IsValid() {
		return nil, ErrInvalidStateCode
	}

	rate, err := s.labourRateRepo.GetRate(ctx, input.LabourType, stateCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabourRateNotFound
		}
		return nil, fmt.Errorf("failed to resolve labour rate: %w", err)
	}

	hours := rate.Hours
	if input.Hours != nil {
		hours = *input.Hours
	}

	unitRate := 0.0
	if rate.Hours > 0 {
		unitRate = rate.CostPerPerson / rate.Hours
	}

	line := &domain.ProjectLabour{
		ProjectID:  projectID,
		LabourType: input.LabourType,
		StateCode:  stateCode,
		Persons:    input.Persons,
		Hours:      hours,
		UnitRate:   unitRate,
		TotalPrice: float64(input.Persons) * hours * unitRate,
	}

	if err := s.componentRepo.AddLabour(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add labour line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	s.logger.Info("project labour added",
		zap.String("projectID", projectID.String()),
		zap.String("labourType", line.LabourType),
		zap.String("stateCode", string(line.StateCode)),
		zap.Float64("totalPrice", line.TotalPrice),
	)

	dto := mapper.ToProjectLabourDTO(line)
	return &dto, nil
}

// ListLabour returns the labour lines of a project
func (s *ProjectComponentService) ListLabour(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectLabourDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	lines, err := s.componentRepo.ListLabour(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list labour lines: %w", err)
	}

	dtos := make([]domain.ProjectLabourDTO, len(lines))
	for i, line := range lines {
		dtos[i] = mapper.ToProjectLabourDTO(&line)
	}
	return dtos, nil
}

// UpdateLabour applies a partial update to a labour line and recomputes its total
func (s *ProjectComponentService) UpdateLabour(ctx context.Context, projectID, lineID uuid.UUID, input *UpdateProjectLabourInput) (*domain.ProjectLabourDTO, error) {
	line, err := s.componentRepo.GetLabour(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectLineNotFound
		}
		return nil, fmt.Errorf("failed to get labour line: %w", err)
	}
	if line.ProjectID != projectID {
		return nil, ErrProjectLineNotFound
	}

	if input.Persons != nil {
		line.Persons = *input.Persons
	}
	if input.Hours != nil {
		line.Hours = *input.Hours
	}
	if input.UnitRate != nil {
		line.UnitRate = *input.UnitRate
	}
	line.TotalPrice = float64(line.Persons) * line.Hours * line.UnitRate

	if err := s.componentRepo.UpdateLabour(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to update labour line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	dto := mapper.ToProjectLabourDTO(line)
	return &dto, nil
}

// DeleteLabour removes a labour line
func (s *ProjectComponentService) DeleteLabour(ctx context.Context, projectID, lineID uuid.UUID) error {
	line, err := s.componentRepo.GetLabour(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectLineNotFound
		}
		return fmt.Errorf("failed to get labour line: %w", err)
	}
	if line.ProjectID != projectID {
		return ErrProjectLineNotFound
	}

	if err := s.componentRepo.DeleteLabour(ctx, lineID); err != nil {
		return fmt.Errorf("failed to delete labour line: %w", err)
	}

	s.refreshActualCost(ctx, projectID)
	return nil
}

// CreateTask adds a task to a project
func (s *ProjectComponentService) CreateTask(ctx context.Context, projectID uuid.UUID, input *CreateTaskInput) (*domain.ProjectTaskDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	task := &domain.ProjectTask{
		ProjectID:   projectID,
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.TaskStatusPending,
		Assignee:    input.Assignee,
	}
	if input.Status != "" {
		task.Status = domain.TaskStatus(input.Status)
	}

	var err error
	if task.DueDate, err = parseDate(input.DueDate); err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}

	if err := s.componentRepo.AddTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if task.Assignee != "" {
		s.notifyTaskAssigned(ctx, task)
	}

	dto := mapper.ToProjectTaskDTO(task)
	return &dto, nil
}

// ListTasks returns the tasks of a project
func (s *ProjectComponentService) ListTasks(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectTaskDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.componentRepo.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	dtos := make([]domain.ProjectTaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = mapper.ToProjectTaskDTO(&task)
	}
	return dtos, nil
}

// UpdateTask applies a partial update to a task
func (s *ProjectComponentService) UpdateTask(ctx context.Context, projectID, taskID uuid.UUID, input *UpdateTaskInput) (*domain.ProjectTaskDTO, error) {
	task, err := s.componentRepo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task.ProjectID != projectID {
		return nil, ErrTaskNotFound
	}

	prevAssignee := task.Assignee

	if input.Name != nil {
		task.Name = *input.Name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = domain.TaskStatus(*input.Status)
	}
	if input.Assignee != nil {
		task.Assignee = *input.Assignee
	}
	if input.DueDate != nil {
		if task.DueDate, err = parseDate(input.DueDate); err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
	}

	if err := s.componentRepo.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if task.Assignee != "" && task.Assignee != prevAssignee {
		s.notifyTaskAssigned(ctx, task)
	}

	dto := mapper.ToProjectTaskDTO(task)
	return &dto, nil
}

// DeleteTask removes a task
func (s *ProjectComponentService) DeleteTask(ctx context.Context, projectID, taskID uuid.UUID) error {
	task, err := s.componentRepo.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to get task: %w", err)
	}
	if task.ProjectID != projectID {
		return ErrTaskNotFound
	}

	return s.componentRepo.DeleteTask(ctx, taskID)
}

// CreateExternalCost attaches an external cost to a project
func (s *ProjectComponentService) CreateExternalCost(ctx context.Context, projectID uuid.UUID, input *CreateExternalCostInput) (*domain.ExternalCostDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	cost := &domain.ExternalCost{
		ProjectID:   projectID,
		Description: input.Description,
		Category:    input.Category,
		Amount:      input.Amount,
		Supplier:    input.Supplier,
	}

	if err := s.componentRepo.AddExternalCost(ctx, cost); err != nil {
		return nil, fmt.Errorf("failed to create external cost: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	dto := mapper.ToExternalCostDTO(cost)
	return &dto, nil
}

// ListExternalCosts returns the external costs of a project
func (s *ProjectComponentService) ListExternalCosts(ctx context.Context, projectID uuid.UUID) ([]domain.ExternalCostDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	costs, err := s.componentRepo.ListExternalCosts(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list external costs: %w", err)
	}

	dtos := make([]domain.ExternalCostDTO, len(costs))
	for i, cost := range costs {
		dtos[i] = mapper.ToExternalCostDTO(&cost)
	}
	return dtos, nil
}

// UpdateExternalCost applies a partial update to an external cost
func (s *ProjectComponentService) UpdateExternalCost(ctx context.Context, projectID, costID uuid.UUID, input *UpdateExternalCostInput) (*domain.ExternalCostDTO, error) {
	cost, err := s.componentRepo.GetExternalCost(ctx, costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExternalCostNotFound
		}
		return nil, fmt.Errorf("failed to get external cost: %w", err)
	}
	if cost.ProjectID != projectID {
		return nil, ErrExternalCostNotFound
	}

	if input.Description != nil {
		cost.Description = *input.Description
	}
	if input.Category != nil {
		cost.Category = *input.Category
	}
	if input.Amount != nil {
		cost.Amount = *input.Amount
	}
	if input.Supplier != nil {
		cost.Supplier = *input.Supplier
	}

	if err := s.componentRepo.UpdateExternalCost(ctx, cost); err != nil {
		return nil, fmt.Errorf("failed to update external cost: %w", err)
	}

	s.refreshActualCost(ctx, projectID)

	dto := mapper.ToExternalCostDTO(cost)
	return &dto, nil
}

// DeleteExternalCost removes an external cost
func (s *ProjectComponentService) DeleteExternalCost(ctx context.Context, projectID, costID uuid.UUID) error {
	cost, err := s.componentRepo.GetExternalCost(ctx, costID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExternalCostNotFound
		}
		return fmt.Errorf("failed to get external cost: %w", err)
	}
	if cost.ProjectID != projectID {
		return ErrExternalCostNotFound
	}

	if err := s.componentRepo.DeleteExternalCost(ctx, costID); err != nil {
		return fmt.Errorf("failed to delete external cost: %w", err)
	}

	s.refreshActualCost(ctx, projectID)
	return nil
}

// Totals returns the summed cost per component category for a project.
// A project with no components yields all-zero totals.
func (s *ProjectComponentService) Totals(ctx context.Context, projectID uuid.UUID) (*domain.ProjectTotalsDTO, error) {
	if _, err := s.getProject(ctx, projectID); err != nil {
		return nil, err
	}

	totals, err := s.componentRepo.Totals(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute project totals: %w", err)
	}

	return &domain.ProjectTotalsDTO{
		ProjectID:     projectID,
		MaterialsCost: totals.MaterialsCost,
		EquipmentCost: totals.EquipmentCost,
		LabourCost:    totals.LabourCost,
		ExternalCost:  totals.ExternalCost,
		GrandTotal:    totals.GrandTotal(),
	}, nil
}

func (s *ProjectComponentService) getProject(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// refreshActualCost recomputes and caches the project's actual cost.
// Failures are logged, never propagated.
func (s *ProjectComponentService) refreshActualCost(ctx context.Context, projectID uuid.UUID) {
	totals, err := s.componentRepo.Totals(ctx, projectID)
	if err != nil {
		s.logger.Warn("failed to recompute project actual cost",
			zap.String("projectID", projectID.String()),
			zap.Error(err),
		)
		return
	}

	if err := s.projectRepo.UpdateActualCost(ctx, projectID, totals.GrandTotal()); err != nil {
		s.logger.Warn("failed to store project actual cost",
			zap.String("projectID", projectID.String()),
			zap.Error(err),
		)
	}
}

func (s *ProjectComponentService) notifyTaskAssigned(ctx context.Context, task *domain.ProjectTask) {
	notification := &domain.Notification{
		Type:       domain.NotificationTypeTaskAssigned,
		Severity:   domain.SeverityLow,
		Title:      "Task assigned",
		Message:    fmt.Sprintf("Task %q was assigned to %s", task.Name, task.Assignee),
		EntityType: "task",
		EntityID:   task.ID.String(),
		ProjectID:  &task.ProjectID,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		notification.UserID = &userCtx.UserID
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create task notification",
			zap.String("taskID", task.ID.String()),
			zap.Error(err),
		)
	}
}
