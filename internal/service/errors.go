package service

import "errors"

// Sentinel errors returned by services. Handlers map these to HTTP statuses.
var (
	ErrUserContextRequired = errors.New("user context required")

	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")

	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectLineNotFound  = errors.New("project line not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrExternalCostNotFound = errors.New("external cost not found")

	ErrMaterialNotFound  = errors.New("material not found")
	ErrMaterialExists    = errors.New("material with this identifier already exists")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrEquipmentExists   = errors.New("equipment with this identifier already exists")

	ErrLabourRateNotFound = errors.New("labour rate not found")
	ErrLabourRateExists   = errors.New("labour rate for this type and state already exists")

	ErrQuoteNotFound     = errors.New("quote not found")
	ErrQuoteItemNotFound = errors.New("quote item not found")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotificationNotOwned = errors.New("notification does not belong to current user")

	ErrConfigNotFound     = errors.New("config entry not found")
	ErrInvalidConfigValue = errors.New("config value does not match declared type")

	ErrAuditLogNotFound = errors.New("audit log not found")

	ErrWarehouseDisabled = errors.New("data warehouse is not configured")

	ErrInvalidStateCode = errors.New("invalid state code")
)
