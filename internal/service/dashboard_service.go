package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
)

// DashboardService aggregates cross-entity statistics and search
type DashboardService struct {
	projectRepo      *repository.ProjectRepository
	quoteRepo        *repository.QuoteRepository
	materialRepo     *repository.MaterialRepository
	equipmentRepo    *repository.EquipmentRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(
	projectRepo *repository.ProjectRepository,
	quoteRepo *repository.QuoteRepository,
	materialRepo *repository.MaterialRepository,
	equipmentRepo *repository.EquipmentRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		projectRepo:      projectRepo,
		quoteRepo:        quoteRepo,
		materialRepo:     materialRepo,
		equipmentRepo:    equipmentRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Stats collects the dashboard aggregates in one call
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStatsDTO, error) {
	stats := &domain.DashboardStatsDTO{}

	var err error
	if stats.TotalProjects, err = s.projectRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}
	if stats.ProjectsByStatus, err = s.projectRepo.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to count projects by status: %w", err)
	}
	if stats.TotalQuotes, err = s.quoteRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}
	if stats.ActiveQuoteValue, err = s.quoteRepo.SumTotalByStatus(ctx, domain.QuoteStatusDraft, domain.QuoteStatusSent); err != nil {
		return nil, fmt.Errorf("failed to sum active quote value: %w", err)
	}
	if stats.AcceptedQuoteValue, err = s.quoteRepo.SumTotalByStatus(ctx, domain.QuoteStatusAccepted); err != nil {
		return nil, fmt.Errorf("failed to sum accepted quote value: %w", err)
	}

	count, totalValue, distinctSites, err := s.materialRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get material stats: %w", err)
	}
	stats.MaterialStats = domain.CatalogStatsDTO{Count: count, TotalValue: totalValue, DistinctSites: distinctSites}

	count, totalValue, distinctCategories, err := s.equipmentRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment stats: %w", err)
	}
	stats.EquipmentStats = domain.CatalogStatsDTO{Count: count, TotalValue: totalValue, DistinctGroups: distinctCategories}

	if userCtx, ok := auth.FromContext(ctx); ok {
		unread, err := s.notificationRepo.CountUnread(ctx, userCtx.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to count unread notifications: %w", err)
		}
		stats.UnreadNotifications = int(unread)
	}

	return stats, nil
}

// Search runs a case-insensitive substring search across projects, quotes,
// materials and equipment. The limit applies per entity.
func (s *DashboardService) Search(ctx context.Context, query string, limit int) (*domain.SearchResultsDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.SearchResultsDTO{
			Projects:  []domain.ProjectDTO{},
			Quotes:    []domain.QuoteDTO{},
			Materials: []domain.MaterialDTO{},
			Equipment: []domain.EquipmentDTO{},
		}, nil
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	results := &domain.SearchResultsDTO{}

	projects, err := s.projectRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	results.Projects = make([]domain.ProjectDTO, len(projects))
	for i, project := range projects {
		results.Projects[i] = mapper.ToProjectDTO(&project)
	}

	quotes, err := s.quoteRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search quotes: %w", err)
	}
	results.Quotes = make([]domain.QuoteDTO, len(quotes))
	for i, quote := range quotes {
		results.Quotes[i] = mapper.ToQuoteDTO(&quote)
	}

	materials, err := s.materialRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search materials: %w", err)
	}
	results.Materials = make([]domain.MaterialDTO, len(materials))
	for i, material := range materials {
		results.Materials[i] = mapper.ToMaterialDTO(&material)
	}

	equipment, err := s.equipmentRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search equipment: %w", err)
	}
	results.Equipment = make([]domain.EquipmentDTO, len(equipment))
	for i, item := range equipment {
		results.Equipment[i] = mapper.ToEquipmentDTO(&item)
	}

	results.Total = len(results.Projects) + len(results.Quotes) + len(results.Materials) + len(results.Equipment)
	return results, nil
}
