package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/mapper"
	"github.com/slcgroup/costing-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LogEntry describes one audit event to be recorded
type LogEntry struct {
	Action     domain.AuditAction
	EntityType string
	EntityID   string
	OldValues  interface{}
	NewValues  interface{}
}

// AuditLogService exposes the append-only audit trail to admins
type AuditLogService struct {
	auditLogRepo *repository.AuditLogRepository
	logger       *zap.Logger
}

// NewAuditLogService creates a new AuditLogService instance
func NewAuditLogService(auditLogRepo *repository.AuditLogRepository, logger *zap.Logger) *AuditLogService {
	return &AuditLogService{
		auditLogRepo: auditLogRepo,
		logger:       logger,
	}
}

// Log records an audit event, attributing it to the current user and
// request. Values are serialized to JSON strings for the jsonb columns.
func (s *AuditLogService) Log(ctx context.Context, r *http.Request, entry LogEntry) error {
	record := &domain.AuditLog{
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValues:  marshalAuditValues(entry.OldValues),
		NewValues:  marshalAuditValues(entry.NewValues),
	}

	if userCtx, ok := auth.FromContext(ctx); ok && userCtx != nil {
		userID := userCtx.UserID
		record.UserID = &userID
		record.UserEmail = userCtx.Email
	}

	if r != nil {
		record.IPAddress = clientIP(r)
		record.UserAgent = r.UserAgent()
		record.Path = r.URL.Path
		record.Method = r.Method
	}

	if err := s.auditLogRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// marshalAuditValues returns a JSON string, or "null" so the jsonb column
// always receives valid JSON
func marshalAuditValues(v interface{}) string {
	if v == nil {
		return "null"
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// GetByID returns a single audit record
func (s *AuditLogService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuditLogDTO, error) {
	log, err := s.auditLogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuditLogNotFound
		}
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}

	dto := mapper.ToAuditLogDTO(log)
	return &dto, nil
}

// List returns a filtered page of audit records, newest first
func (s *AuditLogService) List(ctx context.Context, filter *repository.AuditLogFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	logs, total, err := s.auditLogRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&log)
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

// ListByEntity returns the audit history of a single entity, newest first
func (s *AuditLogService) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]domain.AuditLogDTO, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	logs, err := s.auditLogRepo.ListByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity audit logs: %w", err)
	}

	dtos := make([]domain.AuditLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToAuditLogDTO(&log)
	}
	return dtos, nil
}

// ActivitySummary returns per-action counts over a time window.
// A zero start defaults to 30 days back, a zero end to now.
func (s *AuditLogService) ActivitySummary(ctx context.Context, start, end time.Time) (map[domain.AuditAction]int64, error) {
	if end.IsZero() {
		end = time.Now().UTC()
	}
	if start.IsZero() {
		start = end.AddDate(0, 0, -30)
	}

	counts, err := s.auditLogRepo.CountByAction(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to summarise audit activity: %w", err)
	}
	return counts, nil
}

// Purge removes audit records older than the retention window
func (s *AuditLogService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	deleted, err := s.auditLogRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("audit logs purged",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
	return deleted, nil
}
