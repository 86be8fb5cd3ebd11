package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateFormat = "2006-01-02"

// CreateProjectInput holds the fields for creating a project
type CreateProjectInput struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Status      string   `json:"status" validate:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	StateCode   string   `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Budget      float64  `json:"budget" validate:"gte=0"`
	Progress    int      `json:"progress" validate:"gte=0,lte=100"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	ManagerID   *string  `json:"managerId" validate:"omitempty,uuid"`
	TeamMembers []string `json:"teamMembers"`
}

// UpdateProjectInput holds optional fields for a partial project update.
// Nil fields are left unchanged.
type UpdateProjectInput struct {
	Name        *string   `json:"name" validate:"omitempty,max=200"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" validate:"omitempty,oneof=planning in_progress completed on_hold cancelled"`
	Priority    *string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	StateCode   *string   `json:"stateCode" validate:"omitempty,oneof=NSW VIC QLD NT SA WA TAS ACT"`
	Budget      *float64  `json:"budget" validate:"omitempty,gte=0"`
	Progress    *int      `json:"progress" validate:"omitempty,gte=0,lte=100"`
	StartDate   *string   `json:"startDate"`
	EndDate     *string   `json:"endDate"`
	ManagerID   *string   `json:"managerId" validate:"omitempty,uuid"`
	TeamMembers *[]string `json:"teamMembers"`
}

// ProjectService handles business logic for projects
type ProjectService struct {
	projectRepo      *repository.ProjectRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewProjectService creates a new ProjectService instance
func NewProjectService(
	projectRepo *repository.ProjectRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *ProjectService {
	return &ProjectService{
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create creates a new project
func (s *ProjectService) Create(ctx context.Context, input *CreateProjectInput) (*domain.ProjectDTO, error) {
	project := &domain.Project{
		Name:        input.Name,
		Description: input.Description,
		Status:      domain.ProjectStatusPlanning,
		Priority:    domain.ProjectPriorityMedium,
		StateCode:   domain.StateCode(input.StateCode),
		Budget:      input.Budget,
		Progress:    input.Progress,
		TeamMembers: input.TeamMembers,
	}

	if input.Status != "" {
		project.Status = domain.ProjectStatus(input.Status)
	}
	if input.Priority != "" {
		project.Priority = domain.ProjectPriority(input.Priority)
	}

	var err error
	if project.StartDate, err = parseDate(input.StartDate); err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	if project.EndDate, err = parseDate(input.EndDate); err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if input.ManagerID != nil {
		managerID, err := uuid.Parse(*input.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid manager id: %w", err)
		}
		project.ManagerID = &managerID
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.logger.Info("project created",
		zap.String("projectID", project.ID.String()),
		zap.String("name", project.Name),
	)

	s.notify(ctx, project, domain.NotificationTypeProjectCreated, domain.SeverityLow,
		"Project created", fmt.Sprintf("Project %q was created", project.Name))

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// GetByID returns a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// List returns a filtered page of projects
func (s *ProjectService) List(ctx context.Context, filter *repository.ProjectFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	projects, total, err := s.projectRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = mapper.ToProjectDTO(&project)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Recent returns the most recently updated projects
func (s *ProjectService) Recent(ctx context.Context, limit int) ([]domain.ProjectDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}

	projects, err := s.projectRepo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent projects: %w", err)
	}

	dtos := make([]domain.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = mapper.ToProjectDTO(&project)
	}
	return dtos, nil
}

// Update applies a partial update; unset fields keep their values
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, input *UpdateProjectInput) (*domain.ProjectDTO, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	prevStatus := project.Status

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = domain.ProjectStatus(*input.Status)
	}
	if input.Priority != nil {
		project.Priority = domain.ProjectPriority(*input.Priority)
	}
	if input.StateCode != nil {
		project.StateCode = domain.StateCode(*input.StateCode)
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.Progress != nil {
		project.Progress = *input.Progress
	}
	if input.StartDate != nil {
		if project.StartDate, err = parseDate(input.StartDate); err != nil {
			return nil, fmt.Errorf("invalid start date: %w", err)
		}
	}
	if input.EndDate != nil {
		if project.EndDate, err = parseDate(input.EndDate); err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if input.ManagerID != nil {
		managerID, err := uuid.Parse(*input.ManagerID)
		if err != nil {
			return nil, fmt.Errorf("invalid manager id: %w", err)
		}
		project.ManagerID = &managerID
		project.Manager = nil
	}
	if input.TeamMembers != nil {
		project.TeamMembers = *input.TeamMembers
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.logger.Info("project updated",
		zap.String("projectID", project.ID.String()),
		zap.String("name", project.Name),
	)

	if prevStatus != domain.ProjectStatusCompleted && project.Status == domain.ProjectStatusCompleted {
		s.notify(ctx, project, domain.NotificationTypeProjectCompleted, domain.SeverityMedium,
			"Project completed", fmt.Sprintf("Project %q was marked completed", project.Name))
	} else {
		s.notify(ctx, project, domain.NotificationTypeProjectUpdated, domain.SeverityLow,
			"Project updated", fmt.Sprintf("Project %q was updated", project.Name))
	}

	if project.Budget > 0 && project.ActualCost > project.Budget {
		s.notify(ctx, project, domain.NotificationTypeProjectOverBudget, domain.SeverityHigh,
			"Project over budget",
			fmt.Sprintf("Project %q actual cost %.2f exceeds budget %.2f", project.Name, project.ActualCost, project.Budget))
	}

	dto := mapper.ToProjectDTO(project)
	return &dto, nil
}

// Delete removes a project and all of its cost components
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.projectRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to get project: %w", err)
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	s.logger.Info("project deleted", zap.String("projectID", id.String()))
	return nil
}

// notify writes a project event notification for the current user.
// Notification failures are logged, never propagated.
func (s *ProjectService) notify(ctx context.Context, project *domain.Project, notificationType domain.NotificationType, severity domain.NotificationSeverity, title, message string) {
	notification := &domain.Notification{
		Type:       notificationType,
		Severity:   severity,
		Title:      title,
		Message:    message,
		EntityType: "project",
		EntityID:   project.ID.String(),
		ProjectID:  &project.ID,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		notification.UserID = &userCtx.UserID
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create project notification",
			zap.String("projectID", project.ID.String()),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
	}
}

// parseDate parses an optional YYYY-MM-DD string
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
