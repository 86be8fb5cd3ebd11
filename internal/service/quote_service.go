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

// CreateQuoteItemInput is a line item supplied when creating or extending a quote
type CreateQuoteItemInput struct {
	ItemType    string  `json:"itemType" validate:"required,oneof=material equipment labor task external"`
	Reference   string  `json:"reference" validate:"max=100"`
	Description string  `json:"description" validate:"required,max=500"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	SortOrder   int     `json:"sortOrder" validate:"gte=0"`
}

// CreateQuoteInput holds the fields for creating a quote.
// The quote number is generated, never supplied.
type CreateQuoteInput struct {
	ProjectID   *string                `json:"projectId" validate:"omitempty,uuid"`
	ClientName  string                 `json:"clientName" validate:"required,max=200"`
	ClientEmail string                 `json:"clientEmail" validate:"omitempty,email,max=255"`
	ClientPhone string                 `json:"clientPhone" validate:"max=50"`
	ProjectName string                 `json:"projectName" validate:"max=200"`
	Description string                 `json:"description"`
	ValidUntil  *string                `json:"validUntil"`
	TaxRate     *float64               `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
	Items       []CreateQuoteItemInput `json:"items" validate:"omitempty,dive"`
}

// UpdateQuoteInput holds optional fields for a partial quote update.
// Nil fields are left unchanged.
type UpdateQuoteInput struct {
	ClientName  *string  `json:"clientName" validate:"omitempty,max=200"`
	ClientEmail *string  `json:"clientEmail" validate:"omitempty,email,max=255"`
	ClientPhone *string  `json:"clientPhone" validate:"omitempty,max=50"`
	ProjectName *string  `json:"projectName" validate:"omitempty,max=200"`
	Description *string  `json:"description"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft sent accepted rejected expired"`
	ValidUntil  *string  `json:"validUntil"`
	TaxRate     *float64 `json:"taxRate" validate:"omitempty,gte=0,lte=100"`
}

// UpdateQuoteItemInput holds optional fields for a partial item update
type UpdateQuoteItemInput struct {
	Description *string  `json:"description" validate:"omitempty,max=500"`
	Quantity    *float64 `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice   *float64 `json:"unitPrice" validate:"omitempty,gte=0"`
	SortOrder   *int     `json:"sortOrder" validate:"omitempty,gte=0"`
}

// QuoteService handles business logic for quotes and their line items.
// Monetary totals are recomputed from items on every mutation.
type QuoteService struct {
	quoteRepo        *repository.QuoteRepository
	quoteItemRepo    *repository.QuoteItemRepository
	projectRepo      *repository.ProjectRepository
	notificationRepo *repository.NotificationRepository
	logger           *zap.Logger
}

// NewQuoteService creates a new QuoteService instance
func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	quoteItemRepo *repository.QuoteItemRepository,
	projectRepo *repository.ProjectRepository,
	notificationRepo *repository.NotificationRepository,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		quoteRepo:        quoteRepo,
		quoteItemRepo:    quoteItemRepo,
		projectRepo:      projectRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// Create creates a quote with a generated sequential number for the current year
func (s *QuoteService) Create(ctx context.Context, input *CreateQuoteInput) (*domain.QuoteDTO, error) {
	quote := &domain.Quote{
		ClientName:  input.ClientName,
		ClientEmail: input.ClientEmail,
		ClientPhone: input.ClientPhone,
		ProjectName: input.ProjectName,
		Description: input.Description,
		Status:      domain.QuoteStatusDraft,
		TaxRate:     10,
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}

	var err error
	if quote.ValidUntil, err = parseDate(input.ValidUntil); err != nil {
		return nil, fmt.Errorf("invalid valid-until date: %w", err)
	}

	if input.ProjectID != nil {
		projectID, err := uuid.Parse(*input.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id: %w", err)
		}
		project, err := s.projectRepo.GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to get project: %w", err)
		}
		quote.ProjectID = &project.ID
		if quote.ProjectName == "" {
			quote.ProjectName = project.Name
		}
	}

	if userCtx, ok := auth.FromContext(ctx); ok {
		quote.CreatedByID = &userCtx.UserID
	}

	for i, itemInput := range input.Items {
		sortOrder := itemInput.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		quote.Items = append(quote.Items, domain.QuoteItem{
			ItemType:    domain.QuoteItemType(itemInput.ItemType),
			Reference:   itemInput.Reference,
			Description: itemInput.Description,
			Quantity:    itemInput.Quantity,
			UnitPrice:   itemInput.UnitPrice,
			TotalPrice:  itemInput.Quantity * itemInput.UnitPrice,
			SortOrder:   sortOrder,
		})
	}
	applyQuoteTotals(quote)

	if err := s.quoteRepo.CreateWithNumber(ctx, quote, time.Now().UTC().Year()); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("quoteID", quote.ID.String()),
		zap.String("quoteNumber", quote.QuoteNumber),
		zap.Float64("totalAmount", quote.TotalAmount),
	)

	s.notify(ctx, quote, domain.NotificationTypeQuoteCreated, domain.SeverityLow,
		"Quote created", fmt.Sprintf("Quote %s for %s was created", quote.QuoteNumber, quote.ClientName))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// GetByID returns a quote with its items
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// List returns a filtered page of quotes
func (s *QuoteService) List(ctx context.Context, filter *repository.QuoteFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}
	if page < 1 {
		page = 1
	}

	quotes, total, err := s.quoteRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i, quote := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quote)
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

// Update applies a partial update. A status change emits the matching
// notification; the quote number is immutable.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, input *UpdateQuoteInput) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus := quote.Status

	if input.ClientName != nil {
		quote.ClientName = *input.ClientName
	}
	if input.ClientEmail != nil {
		quote.ClientEmail = *input.ClientEmail
	}
	if input.ClientPhone != nil {
		quote.ClientPhone = *input.ClientPhone
	}
	if input.ProjectName != nil {
		quote.ProjectName = *input.ProjectName
	}
	if input.Description != nil {
		quote.Description = *input.Description
	}
	if input.Status != nil {
		quote.Status = domain.QuoteStatus(*input.Status)
	}
	if input.ValidUntil != nil {
		if quote.ValidUntil, err = parseDate(input.ValidUntil); err != nil {
			return nil, fmt.Errorf("invalid valid-until date: %w", err)
		}
	}
	if input.TaxRate != nil {
		quote.TaxRate = *input.TaxRate
	}
	applyQuoteTotals(quote)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	if quote.Status != prevStatus {
		s.notifyStatusChange(ctx, quote)
	}

	s.logger.Info("quote updated",
		zap.String("quoteID", quote.ID.String()),
		zap.String("quoteNumber", quote.QuoteNumber),
		zap.String("status", string(quote.Status)),
	)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Delete removes a quote and its items
func (s *QuoteService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getQuote(ctx, id); err != nil {
		return err
	}

	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	s.logger.Info("quote deleted", zap.String("quoteID", id.String()))
	return nil
}

// AddItem appends a line item and recomputes the quote totals
func (s *QuoteService) AddItem(ctx context.Context, quoteID uuid.UUID, input *CreateQuoteItemInput) (*domain.QuoteItemDTO, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	sortOrder := input.SortOrder
	if sortOrder == 0 {
		sortOrder = len(quote.Items) + 1
	}

	item := &domain.QuoteItem{
		QuoteID:     quoteID,
		ItemType:    domain.QuoteItemType(input.ItemType),
		Reference:   input.Reference,
		Description: input.Description,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		TotalPrice:  input.Quantity * input.UnitPrice,
		SortOrder:   sortOrder,
	}

	if err := s.quoteItemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to add quote item: %w", err)
	}

	if _, err := s.Recalculate(ctx, quoteID); err != nil {
		return nil, err
	}

	dto := mapper.ToQuoteItemDTO(item)
	return &dto, nil
}

// ListItems returns the line items of a quote in display order
func (s *QuoteService) ListItems(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteItemDTO, error) {
	if _, err := s.getQuote(ctx, quoteID); err != nil {
		return nil, err
	}

	items, err := s.quoteItemRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}

	dtos := make([]domain.QuoteItemDTO, len(items))
	for i, item := range items {
		dtos[i] = mapper.ToQuoteItemDTO(&item)
	}
	return dtos, nil
}

// UpdateItem applies a partial item update and recomputes the quote totals
func (s *QuoteService) UpdateItem(ctx context.Context, quoteID, itemID uuid.UUID, input *UpdateQuoteItemInput) (*domain.QuoteItemDTO, error) {
	item, err := s.getItem(ctx, quoteID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.UnitPrice != nil {
		item.UnitPrice = *input.UnitPrice
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}
	item.TotalPrice = item.Quantity * item.UnitPrice

	if err := s.quoteItemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update quote item: %w", err)
	}

	if _, err := s.Recalculate(ctx, quoteID); err != nil {
		return nil, err
	}

	dto := mapper.ToQuoteItemDTO(item)
	return &dto, nil
}

// DeleteItem removes a line item and recomputes the quote totals
func (s *QuoteService) DeleteItem(ctx context.Context, quoteID, itemID uuid.UUID) error {
	if _, err := s.getItem(ctx, quoteID, itemID); err != nil {
		return err
	}

	if err := s.quoteItemRepo.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete quote item: %w", err)
	}

	_, err := s.Recalculate(ctx, quoteID)
	return err
}

// Recalculate recomputes the quote's monetary totals from its stored items
// and persists them. A quote with no items gets all-zero totals.
func (s *QuoteService) Recalculate(ctx context.Context, quoteID uuid.UUID) (*domain.QuoteTotalsDTO, error) {
	quote, err := s.getQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	subtotal, count, err := s.quoteItemRepo.SumByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum quote items: %w", err)
	}

	quote.Subtotal = subtotal
	quote.TaxAmount = subtotal * quote.TaxRate / 100
	quote.TotalAmount = quote.Subtotal + quote.TaxAmount

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to store quote totals: %w", err)
	}

	return &domain.QuoteTotalsDTO{
		QuoteID:     quoteID,
		ItemCount:   int(count),
		Subtotal:    quote.Subtotal,
		TaxRate:     quote.TaxRate,
		TaxAmount:   quote.TaxAmount,
		TotalAmount: quote.TotalAmount,
	}, nil
}

// ExpireOverdue marks sent quotes past their valid-until date as expired.
// Returns the number of quotes transitioned.
func (s *QuoteService) ExpireOverdue(ctx context.Context) (int, error) {
	quotes, err := s.quoteRepo.ListExpirable(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue quotes: %w", err)
	}

	expired := 0
	for i := range quotes {
		quote := &quotes[i]
		quote.Status = domain.QuoteStatusExpired
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			s.logger.Warn("failed to expire quote",
				zap.String("quoteID", quote.ID.String()),
				zap.Error(err),
			)
			continue
		}
		s.notifyStatusChange(ctx, quote)
		expired++
	}

	if expired > 0 {
		s.logger.Info("expired overdue quotes", zap.Int("count", expired))
	}
	return expired, nil
}

func (s *QuoteService) getQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

func (s *QuoteService) getItem(ctx context.Context, quoteID, itemID uuid.UUID) (*domain.QuoteItem, error) {
	item, err := s.quoteItemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteItemNotFound
		}
		return nil, fmt.Errorf("failed to get quote item: %w", err)
	}
	if item.QuoteID != quoteID {
		return nil, ErrQuoteItemNotFound
	}
	return item, nil
}

func (s *QuoteService) notifyStatusChange(ctx context.Context, quote *domain.Quote) {
	var notificationType domain.NotificationType
	severity := domain.SeverityLow
	switch quote.Status {
	case domain.QuoteStatusSent:
		notificationType = domain.NotificationTypeQuoteSent
	case domain.QuoteStatusAccepted:
		notificationType = domain.NotificationTypeQuoteAccepted
		severity = domain.SeverityMedium
	case domain.QuoteStatusRejected:
		notificationType = domain.NotificationTypeQuoteRejected
		severity = domain.SeverityMedium
	case domain.QuoteStatusExpired:
		notificationType = domain.NotificationTypeQuoteExpired
	default:
		return
	}

	s.notify(ctx, quote, notificationType, severity,
		fmt.Sprintf("Quote %s", quote.Status),
		fmt.Sprintf("Quote %s for %s is now %s", quote.QuoteNumber, quote.ClientName, quote.Status))
}

// notify writes a quote event notification. Failures are logged, never propagated.
func (s *QuoteService) notify(ctx context.Context, quote *domain.Quote, notificationType domain.NotificationType, severity domain.NotificationSeverity, title, message string) {
	notification := &domain.Notification{
		Type:       notificationType,
		Severity:   severity,
		Title:      title,
		Message:    message,
		EntityType: "quote",
		EntityID:   quote.ID.String(),
		ProjectID:  quote.ProjectID,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		notification.UserID = &userCtx.UserID
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create quote notification",
			zap.String("quoteID", quote.ID.String()),
			zap.String("type", string(notificationType)),
			zap.Error(err),
		)
	}
}

// applyQuoteTotals recomputes the monetary fields from the in-memory items
func applyQuoteTotals(quote *domain.Quote) {
	subtotal := 0.0
	for i := range quote.Items {
		subtotal += quote.Items[i].TotalPrice
	}
	quote.Subtotal = subtotal
	quote.TaxAmount = subtotal * quote.TaxRate / 100
	quote.TotalAmount = quote.Subtotal + quote.TaxAmount
}
