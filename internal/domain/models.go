package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// StateCode represents an Australian state or territory
type StateCode string

const (
	StateNSW StateCode = "NSW"
	StateVIC StateCode = "VIC"
	StateQLD StateCode = "QLD"
	StateNT  StateCode = "NT"
	StateSA  StateCode = "SA"
	StateWA  StateCode = "WA"
	StateTAS StateCode = "TAS"
	StateACT StateCode = "ACT"
)

// IsValid checks if the StateCode is a valid enum value
func (s StateCode) IsValid() bool {
	switch s {
	case StateNSW, StateVIC, StateQLD, StateNT, StateSA, StateWA, StateTAS, StateACT:
		return true
	}
	return false
}

// UserRole represents the role of an application user
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleManager   UserRole = "manager"
	RoleEstimator UserRole = "estimator"
	RoleViewer    UserRole = "viewer"
)

// IsValid checks if the UserRole is a valid enum value
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEstimator, RoleViewer:
		return true
	}
	return false
}

// User represents an application user account
type User struct {
	BaseModel
	Email          string   `gorm:"type:varchar(255);not null;uniqueIndex"`
	Username       string   `gorm:"type:varchar(100);not null;uniqueIndex"`
	HashedPassword string   `gorm:"type:varchar(255);not null;column:hashed_password"`
	FullName       string   `gorm:"type:varchar(200);column:full_name"`
	Role           UserRole `gorm:"type:varchar(50);not null;default:'viewer'"`
	IsActive       bool     `gorm:"not null;default:true;column:is_active"`
}

// ProjectStatus represents the status of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "planning"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusOnHold     ProjectStatus = "on_hold"
	ProjectStatusCancelled  ProjectStatus = "cancelled"
)

// IsValid checks if the ProjectStatus is a valid enum value
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// ProjectPriority represents the priority of a project
type ProjectPriority string

const (
	ProjectPriorityLow    ProjectPriority = "low"
	ProjectPriorityMedium ProjectPriority = "medium"
	ProjectPriorityHigh   ProjectPriority = "high"
	ProjectPriorityUrgent ProjectPriority = "urgent"
)

// IsValid checks if the ProjectPriority is a valid enum value
func (p ProjectPriority) IsValid() bool {
	switch p {
	case ProjectPriorityLow, ProjectPriorityMedium, ProjectPriorityHigh, ProjectPriorityUrgent:
		return true
	}
	return false
}

// Project represents a costed delivery project
type Project struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;index"`
	Description   string          `gorm:"type:text"`
	Status        ProjectStatus   `gorm:"type:varchar(50);not null;default:'planning';index"`
	Priority      ProjectPriority `gorm:"type:varchar(50);not null;default:'medium';index"`
	StateCode     StateCode       `gorm:"type:varchar(10);column:state_code;index"`
	Budget        float64         `gorm:"type:decimal(15,2);not null;default:0"`
	ActualCost    float64         `gorm:"type:decimal(15,2);not null;default:0;column:actual_cost"`
	Progress      int             `gorm:"type:int;not null;default:0"`
	StartDate     *time.Time      `gorm:"type:date;column:start_date"`
	EndDate       *time.Time      `gorm:"type:date;column:end_date"`
	ManagerID     *uuid.UUID      `gorm:"type:uuid;column:manager_id;index"`
	Manager       *User           `gorm:"foreignKey:ManagerID"`
	TeamMembers   pq.StringArray  `gorm:"type:text[];column:team_members"`
	Materials     []ProjectMaterial  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Equipment     []ProjectEquipment `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Labour        []ProjectLabour    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Tasks         []ProjectTask      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	ExternalCosts []ExternalCost     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
}

// Material represents a catalog material priced per unit
type Material struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	MaterialID  string    `gorm:"type:varchar(100);not null;uniqueIndex;column:material_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Unit        string    `gorm:"type:varchar(50)"`
	UnitCost    float64   `gorm:"type:decimal(15,4);not null;default:0;column:unit_cost"`
	SalesPartNo string    `gorm:"type:varchar(100);column:sales_part_no;index"`
	StateCode   StateCode `gorm:"type:varchar(10);column:state_code;index"`
	Site        string    `gorm:"type:varchar(100)"`
	SupplierRef string    `gorm:"type:varchar(100);column:supplier_ref"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Equipment represents a catalog equipment item priced per unit
type Equipment struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	EquipmentID   string    `gorm:"type:varchar(100);not null;uniqueIndex;column:equipment_id"`
	EquipmentName string    `gorm:"type:varchar(500);not null;column:equipment_name"`
	Category      string    `gorm:"type:varchar(100);index"`
	UnitCost      float64   `gorm:"type:decimal(15,4);not null;default:0;column:unit_cost"`
	StateCode     StateCode `gorm:"type:varchar(10);column:state_code;index"`
	Site          string    `gorm:"type:varchar(100)"`
	SupplierRef   string    `gorm:"type:varchar(100);column:supplier_ref"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// LabourRate represents the cost per person for a labour type in a state.
/// (labour_type, state_code) is unique: one effective rate per combination.
type LabourRate struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	LabourType    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_labour_type_state;column:labour_type"`
	StateCode     StateCode `gorm:"type:varchar(10);not null;uniqueIndex:idx_labour_type_state;column:state_code"`
	CostPerPerson float64   `gorm:"type:decimal(15,2);not null;default:0;column:cost_per_person"`
	Hours         float64   `gorm:"type:decimal(10,2);not null;default:8"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ProjectMaterial is a material line attached to a project.
// UnitPrice and TotalPrice are snapshots taken when the line is created or
// updated; later catalog price changes do not alter them.
type ProjectMaterial struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	MaterialRef string    `gorm:"type:varchar(100);not null;column:material_ref"`
	Description string    `gorm:"type:varchar(500)"`
	Quantity    float64   `gorm:"type:decimal(15,4);not null;default:0"`
	UnitPrice   float64   `gorm:"type:decimal(15,4);not null;default:0;column:unit_price"`
	TotalPrice  float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
}

// ProjectEquipment is an equipment line attached to a project
type ProjectEquipment struct {
	BaseModel
	ProjectID    uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	EquipmentRef string    `gorm:"type:varchar(100);not null;column:equipment_ref"`
	Description  string    `gorm:"type:varchar(500)"`
	Quantity     float64   `gorm:"type:decimal(15,4);not null;default:0"`
	UnitPrice    float64   `gorm:"type:decimal(15,4);not null;default:0;column:unit_price"`
	TotalPrice   float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
}

// ProjectLabour is a labour line attached to a project.
// TotalPrice = Persons x Hours x UnitRate, snapshotted at attach time.
type ProjectLabour struct {
	BaseModel
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	LabourType string    `gorm:"type:varchar(100);not null;column:labour_type"`
	StateCode  StateCode `gorm:"type:varchar(10);column:state_code"`
	Persons    int       `gorm:"type:int;not null;default:1"`
	Hours      float64   `gorm:"type:decimal(10,2);not null;default:0"`
	UnitRate   float64   `gorm:"type:decimal(15,2);not null;default:0;column:unit_rate"`
	TotalPrice float64   `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
}

// TaskStatus represents the status of a project task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// IsValid checks if the TaskStatus is a valid enum value
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked:
		return true
	}
	return false
}

// ProjectTask is a work item tracked against a project
type ProjectTask struct {
	BaseModel
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index;column:project_id"`
	Name        string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	Status      TaskStatus `gorm:"type:varchar(50);not null;default:'pending'"`
	Assignee    string     `gorm:"type:varchar(200)"`
	DueDate     *time.Time `gorm:"type:date;column:due_date"`
}

// ExternalCost is a non-catalog cost attached to a project
type ExternalCost struct {
	BaseModel
	ProjectID   uuid.UUID `gorm:"type:uuid;not null;index;column:project_id"`
	Description string    `gorm:"type:varchar(500);not null"`
	Category    string    `gorm:"type:varchar(100)"`
	Amount      float64   `gorm:"type:decimal(15,2);not null;default:0"`
	Supplier    string    `gorm:"type:varchar(200)"`
}

// QuoteStatus represents the lifecycle status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// IsValid checks if the QuoteStatus is a valid enum value
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// Quote represents a client quote with priced line items
type Quote struct {
	BaseModel
	QuoteNumber string      `gorm:"type:varchar(50);not null;uniqueIndex;column:quote_number"`
	ProjectID   *uuid.UUID  `gorm:"type:uuid;column:project_id;index"`
	Project     *Project    `gorm:"foreignKey:ProjectID"`
	ClientName  string      `gorm:"type:varchar(200);not null;column:client_name"`
	ClientEmail string      `gorm:"type:varchar(255);column:client_email"`
	ClientPhone string      `gorm:"type:varchar(50);column:client_phone"`
	ProjectName string      `gorm:"type:varchar(200);column:project_name"`
	Description string      `gorm:"type:text"`
	Status      QuoteStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	ValidUntil  *time.Time  `gorm:"type:date;column:valid_until"`
	Subtotal    float64     `gorm:"type:decimal(15,2);not null;default:0"`
	TaxRate     float64     `gorm:"type:decimal(5,2);not null;default:10;column:tax_rate"`
	TaxAmount   float64     `gorm:"type:decimal(15,2);not null;default:0;column:tax_amount"`
	TotalAmount float64     `gorm:"type:decimal(15,2);not null;default:0;column:total_amount"`
	CreatedByID *uuid.UUID  `gorm:"type:uuid;column:created_by_id"`
	CreatedBy   *User       `gorm:"foreignKey:CreatedByID"`
	Items       []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
}

// QuoteItemType classifies a quote line item
type QuoteItemType string

const (
	QuoteItemTypeMaterial  QuoteItemType = "material"
	QuoteItemTypeEquipment QuoteItemType = "equipment"
	QuoteItemTypeLabour    QuoteItemType = "labor"
	QuoteItemTypeTask      QuoteItemType = "task"
	QuoteItemTypeExternal  QuoteItemType = "external"
)

// IsValid checks if the QuoteItemType is a valid enum value
func (t QuoteItemType) IsValid() bool {
	switch t {
	case QuoteItemTypeMaterial, QuoteItemTypeEquipment, QuoteItemTypeLabour, QuoteItemTypeTask, QuoteItemTypeExternal:
		return true
	}
	return false
}

// QuoteItem is a priced line entry on a quote.
// SortOrder controls display ordering only.
type QuoteItem struct {
	BaseModel
	QuoteID     uuid.UUID     `gorm:"type:uuid;not null;index;column:quote_id"`
	ItemType    QuoteItemType `gorm:"type:varchar(50);not null;column:item_type"`
	Reference   string        `gorm:"type:varchar(100)"`
	Description string        `gorm:"type:varchar(500);not null"`
	Quantity    float64       `gorm:"type:decimal(15,4);not null;default:1"`
	UnitPrice   float64       `gorm:"type:decimal(15,4);not null;default:0;column:unit_price"`
	TotalPrice  float64       `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	SortOrder   int           `gorm:"type:int;not null;default:0;column:sort_order"`
}

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationTypePriceChange       NotificationType = "price_change"
	NotificationTypeQuoteCreated      NotificationType = "quote_created"
	NotificationTypeQuoteSent         NotificationType = "quote_sent"
	NotificationTypeQuoteAccepted     NotificationType = "quote_accepted"
	NotificationTypeQuoteRejected     NotificationType = "quote_rejected"
	NotificationTypeQuoteExpired      NotificationType = "quote_expired"
	NotificationTypeProjectCreated    NotificationType = "project_created"
	NotificationTypeProjectUpdated    NotificationType = "project_updated"
	NotificationTypeProjectCompleted  NotificationType = "project_completed"
	NotificationTypeProjectOverBudget NotificationType = "project_overbudget"
	NotificationTypeTaskAssigned      NotificationType = "task_assigned"
	NotificationTypeTaskOverdue       NotificationType = "task_overdue"
	NotificationTypeImportCompleted   NotificationType = "import_completed"
	NotificationTypeExportCompleted   NotificationType = "export_completed"
	NotificationTypeSystem            NotificationType = "system"
)

// IsValid checks if the NotificationType is a valid enum value
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationTypePriceChange, NotificationTypeQuoteCreated, NotificationTypeQuoteSent,
		NotificationTypeQuoteAccepted, NotificationTypeQuoteRejected, NotificationTypeQuoteExpired,
		NotificationTypeProjectCreated, NotificationTypeProjectUpdated, NotificationTypeProjectCompleted,
		NotificationTypeProjectOverBudget, NotificationTypeTaskAssigned, NotificationTypeTaskOverdue,
		NotificationTypeImportCompleted, NotificationTypeExportCompleted, NotificationTypeSystem:
		return true
	}
	return false
}

// NotificationSeverity represents the severity of a notification
type NotificationSeverity string

const (
	SeverityLow      NotificationSeverity = "low"
	SeverityMedium   NotificationSeverity = "medium"
	SeverityHigh     NotificationSeverity = "high"
	SeverityCritical NotificationSeverity = "critical"
)

// IsValid checks if the NotificationSeverity is a valid enum value
func (s NotificationSeverity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Notification represents a user-facing event record.
// The only state transition is unread to read.
type Notification struct {
	BaseModel
	UserID     *uuid.UUID           `gorm:"type:uuid;column:user_id;index"`
	Type       NotificationType     `gorm:"type:varchar(50);not null;index"`
	Severity   NotificationSeverity `gorm:"type:varchar(50);not null;default:'low'"`
	Title      string               `gorm:"type:varchar(200);not null"`
	Message    string               `gorm:"type:text"`
	EntityType string               `gorm:"type:varchar(50);column:entity_type"`
	EntityID   string               `gorm:"type:varchar(100);column:entity_id"`
	ProjectID  *uuid.UUID           `gorm:"type:uuid;column:project_id;index"`
	IsRead     bool                 `gorm:"not null;default:false;column:is_read;index"`
	ReadAt     *time.Time           `gorm:"column:read_at"`
}

// AuditAction represents the type of action recorded in the audit log
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
	AuditActionExport AuditAction = "export"
	AuditActionImport AuditAction = "import"
)

// AuditLog is an append-only record of a mutating action
type AuditLog struct {
	ID         uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     *uuid.UUID  `gorm:"type:uuid;column:user_id;index"`
	UserEmail  string      `gorm:"type:varchar(255);column:user_email"`
	Action     AuditAction `gorm:"type:varchar(50);not null;index"`
	EntityType string      `gorm:"type:varchar(50);not null;column:entity_type;index"`
	EntityID   string      `gorm:"type:varchar(100);column:entity_id"`
	OldValues  string      `gorm:"type:jsonb;column:old_values"`
	NewValues  string      `gorm:"type:jsonb;column:new_values"`
	IPAddress  string      `gorm:"type:varchar(50);column:ip_address"`
	UserAgent  string      `gorm:"type:varchar(500);column:user_agent"`
	Path       string      `gorm:"type:varchar(500)"`
	Method     string      `gorm:"type:varchar(10)"`
	CreatedAt  time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

// SystemConfig is a key-value configuration record editable by admins
type SystemConfig struct {
	BaseModel
	Key         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value       string `gorm:"type:text;not null"`
	ValueType   string `gorm:"type:varchar(20);not null;default:'string';column:value_type"`
	Description string `gorm:"type:varchar(500)"`
	UpdatedBy   string `gorm:"type:varchar(255);column:updated_by"`
}

// PriceChangeSource identifies where a catalog price change came from
type PriceChangeSource string

const (
	PriceChangeSourceManual        PriceChangeSource = "manual"
	PriceChangeSourceWarehouseSync PriceChangeSource = "warehouse_sync"
	PriceChangeSourceBulkImport    PriceChangeSource = "bulk_import"
)

// PriceChangeLog records a change to a catalog item's unit cost
type PriceChangeLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ItemType  string            `gorm:"type:varchar(50);not null;column:item_type;index"`
	ItemRef   string            `gorm:"type:varchar(100);not null;column:item_ref;index"`
	OldPrice  float64           `gorm:"type:decimal(15,4);not null;column:old_price"`
	NewPrice  float64           `gorm:"type:decimal(15,4);not null;column:new_price"`
	ChangePct float64           `gorm:"type:decimal(10,4);not null;column:change_pct"`
	Source    PriceChangeSource `gorm:"type:varchar(50);not null;default:'manual'"`
	StateCode StateCode         `gorm:"type:varchar(10);column:state_code"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}
