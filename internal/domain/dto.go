package domain

import (
	"github.com/google/uuid"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName,omitempty"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt string    `json:"createdAt"`
	UpdatedAt string    `json:"updatedAt"`
}

// TokenDTO is the login response
type TokenDTO struct {
	AccessToken string  `json:"accessToken"`
	TokenType   string  `json:"tokenType"`
	ExpiresIn   int     `json:"expiresIn"`
	User        UserDTO `json:"user"`
}

type ProjectDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Priority    ProjectPriority `json:"priority"`
	StateCode   StateCode       `json:"stateCode,omitempty"`
	Budget      float64         `json:"budget"`
	ActualCost  float64         `json:"actualCost"`
	Progress    int             `json:"progress"`
	StartDate   *string         `json:"startDate,omitempty"`
	EndDate     *string         `json:"endDate,omitempty"`
	ManagerID   *uuid.UUID      `json:"managerId,omitempty"`
	ManagerName string          `json:"managerName,omitempty"`
	TeamMembers []string        `json:"teamMembers,omitempty"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}

type MaterialDTO struct {
	ID          uint      `json:"id"`
	MaterialID  string    `json:"materialId"`
	Description string    `json:"description"`
	Unit        string    `json:"unit,omitempty"`
	UnitCost    float64   `json:"unitCost"`
	SalesPartNo string    `json:"salesPartNo,omitempty"`
	StateCode   StateCode `json:"stateCode,omitempty"`
	Site        string    `json:"site,omitempty"`
	SupplierRef string    `json:"supplierRef,omitempty"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type EquipmentDTO struct {
	ID            uint      `json:"id"`
	EquipmentID   string    `json:"equipmentId"`
	EquipmentName string    `json:"equipmentName"`
	Category      string    `json:"category,omitempty"`
	UnitCost      float64   `json:"unitCost"`
	StateCode     StateCode `json:"stateCode,omitempty"`
	Site          string    `json:"site,omitempty"`
	SupplierRef   string    `json:"supplierRef,omitempty"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

type LabourRateDTO struct {
	ID            uint      `json:"id"`
	LabourType    string    `json:"labourType"`
	StateCode     StateCode `json:"stateCode"`
	CostPerPerson float64   `json:"costPerPerson"`
	Hours         float64   `json:"hours"`
	CreatedAt     string    `json:"createdAt"`
	UpdatedAt     string    `json:"updatedAt"`
}

type ProjectMaterialDTO struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	MaterialRef string    `json:"materialRef"`
	Description string    `json:"description,omitempty"`
	Quantity    float64   `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	TotalPrice  float64   `json:"totalPrice"`
	CreatedAt   string    `json:"createdAt"`
}

type ProjectEquipmentDTO struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"projectId"`
	EquipmentRef string    `json:"equipmentRef"`
	Description  string    `json:"description,omitempty"`
	Quantity     float64   `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
	TotalPrice   float64   `json:"totalPrice"`
	CreatedAt    string    `json:"createdAt"`
}

type ProjectLabourDTO struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"projectId"`
	LabourType string    `json:"labourType"`
	StateCode  StateCode `json:"stateCode,omitempty"`
	Persons    int       `json:"persons"`
	Hours      float64   `json:"hours"`
	UnitRate   float64   `json:"unitRate"`
	TotalPrice float64   `json:"totalPrice"`
	CreatedAt  string    `json:"createdAt"`
}

type ProjectTaskDTO struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Assignee    string     `json:"assignee,omitempty"`
	DueDate     *string    `json:"dueDate,omitempty"`
	CreatedAt   string     `json:"createdAt"`
	UpdatedAt   string     `json:"updatedAt"`
}

type ExternalCostDTO struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	Supplier    string    `json:"supplier,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

// ProjectTotalsDTO is the cost rollup for a project, grouped by category
type ProjectTotalsDTO struct {
	ProjectID     uuid.UUID `json:"projectId"`
	MaterialsCost float64   `json:"materialsCost"`
	EquipmentCost float64   `json:"equipmentCost"`
	LabourCost    float64   `json:"labourCost"`
	ExternalCost  float64   `json:"externalCost"`
	GrandTotal    float64   `json:"grandTotal"`
}

type QuoteDTO struct {
	ID          uuid.UUID      `json:"id"`
	QuoteNumber string         `json:"quoteNumber"`
	ProjectID   *uuid.UUID     `json:"projectId,omitempty"`
	ClientName  string         `json:"clientName"`
	ClientEmail string         `json:"clientEmail,omitempty"`
	ClientPhone string         `json:"clientPhone,omitempty"`
	ProjectName string         `json:"projectName,omitempty"`
	Description string         `json:"description,omitempty"`
	Status      QuoteStatus    `json:"status"`
	ValidUntil  *string        `json:"validUntil,omitempty"`
	Subtotal    float64        `json:"subtotal"`
	TaxRate     float64        `json:"taxRate"`
	TaxAmount   float64        `json:"taxAmount"`
	TotalAmount float64        `json:"totalAmount"`
	CreatedByID *uuid.UUID     `json:"createdById,omitempty"`
	Items       []QuoteItemDTO `json:"items,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
}

type QuoteItemDTO struct {
	ID          uuid.UUID     `json:"id"`
	QuoteID     uuid.UUID     `json:"quoteId"`
	ItemType    QuoteItemType `json:"itemType"`
	Reference   string        `json:"reference,omitempty"`
	Description string        `json:"description"`
	Quantity    float64       `json:"quantity"`
	UnitPrice   float64       `json:"unitPrice"`
	TotalPrice  float64       `json:"totalPrice"`
	SortOrder   int           `json:"sortOrder"`
}

// QuoteTotalsDTO is the recomputed rollup for a quote
type QuoteTotalsDTO struct {
	QuoteID     uuid.UUID `json:"quoteId"`
	ItemCount   int       `json:"itemCount"`
	Subtotal    float64   `json:"subtotal"`
	TaxRate     float64   `json:"taxRate"`
	TaxAmount   float64   `json:"taxAmount"`
	TotalAmount float64   `json:"totalAmount"`
}

type NotificationDTO struct {
	ID         uuid.UUID            `json:"id"`
	UserID     *uuid.UUID           `json:"userId,omitempty"`
	Type       NotificationType     `json:"type"`
	Severity   NotificationSeverity `json:"severity"`
	Title      string               `json:"title"`
	Message    string               `json:"message,omitempty"`
	EntityType string               `json:"entityType,omitempty"`
	EntityID   string               `json:"entityId,omitempty"`
	ProjectID  *uuid.UUID           `json:"projectId,omitempty"`
	IsRead     bool                 `json:"isRead"`
	ReadAt     *string              `json:"readAt,omitempty"`
	CreatedAt  string               `json:"createdAt"`
}

// UnreadCountDTO holds the unread notification count
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// MarkAllReadDTO reports how many notifications a bulk mark-read touched
type MarkAllReadDTO struct {
	Updated int64 `json:"updated"`
}

type AuditLogDTO struct {
	ID         uuid.UUID   `json:"id"`
	UserID     *uuid.UUID  `json:"userId,omitempty"`
	UserEmail  string      `json:"userEmail,omitempty"`
	Action     AuditAction `json:"action"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId,omitempty"`
	OldValues  interface{} `json:"oldValues,omitempty"`
	NewValues  interface{} `json:"newValues,omitempty"`
	IPAddress  string      `json:"ipAddress,omitempty"`
	Path       string      `json:"path,omitempty"`
	Method     string      `json:"method,omitempty"`
	CreatedAt  string      `json:"createdAt"`
}

type SystemConfigDTO struct {
	ID          uuid.UUID `json:"id"`
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	ValueType   string    `json:"valueType"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   string    `json:"updatedBy,omitempty"`
	UpdatedAt   string    `json:"updatedAt"`
}

type PriceChangeLogDTO struct {
	ID        uuid.UUID         `json:"id"`
	ItemType  string            `json:"itemType"`
	ItemRef   string            `json:"itemRef"`
	OldPrice  float64           `json:"oldPrice"`
	NewPrice  float64           `json:"newPrice"`
	ChangePct float64           `json:"changePct"`
	Source    PriceChangeSource `json:"source"`
	StateCode StateCode         `json:"stateCode,omitempty"`
	CreatedAt string            `json:"createdAt"`
}

// RateCardResultDTO is the output of the rate-card calculator
type RateCardResultDTO struct {
	BaseAmount    float64  `json:"baseAmount"`
	SupportAmount float64  `json:"supportAmount"`
	SupportItems  []string `json:"supportItems"`
	RiskUplift    float64  `json:"riskUplift"`
	Subtotal      float64  `json:"subtotal"`
	TaxRate       float64  `json:"taxRate"`
	TaxAmount     float64  `json:"taxAmount"`
	Total         float64  `json:"total"`
}

// CatalogStatsDTO holds aggregate statistics for a catalog
type CatalogStatsDTO struct {
	Count          int64   `json:"count"`
	TotalValue     float64 `json:"totalValue"`
	DistinctSites  int64   `json:"distinctSites,omitempty"`
	DistinctGroups int64   `json:"distinctGroups,omitempty"`
}

// DashboardStatsDTO aggregates counts and values for the dashboard
type DashboardStatsDTO struct {
	TotalProjects       int64                   `json:"totalProjects"`
	ProjectsByStatus    map[ProjectStatus]int64 `json:"projectsByStatus"`
	TotalQuotes         int64                   `json:"totalQuotes"`
	ActiveQuoteValue    float64                 `json:"activeQuoteValue"`
	AcceptedQuoteValue  float64                 `json:"acceptedQuoteValue"`
	MaterialStats       CatalogStatsDTO         `json:"materialStats"`
	EquipmentStats      CatalogStatsDTO         `json:"equipmentStats"`
	UnreadNotifications int                     `json:"unreadNotifications"`
}

// SearchResultsDTO is the cross-entity search response
type SearchResultsDTO struct {
	Projects  []ProjectDTO   `json:"projects"`
	Quotes    []QuoteDTO     `json:"quotes"`
	Materials []MaterialDTO  `json:"materials"`
	Equipment []EquipmentDTO `json:"equipment"`
	Total     int            `json:"total"`
}

// ImportResultDTO reports per-row outcomes of a bulk import
type ImportResultDTO struct {
	Imported int      `json:"imported"`
	Updated  int      `json:"updated"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// ExportResultDTO describes a generated export artifact
type ExportResultDTO struct {
	Entity      string `json:"entity"`
	StoragePath string `json:"storagePath"`
	SizeBytes   int64  `json:"sizeBytes"`
	RowCount    int    `json:"rowCount"`
	ContentType string `json:"contentType"`
}

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
