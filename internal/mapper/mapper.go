package mapper

import (
	"encoding/json"
	"time"

	"github.com/slcgroup/costing-api/internal/domain"
)

const isoFormat = "2006-01-02T15:04:05Z"

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(isoFormat)
	return &s
}

// ToUserDTO converts User to UserDTO
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(isoFormat),
		UpdatedAt: user.UpdatedAt.Format(isoFormat),
	}
}

// ToProjectDTO converts Project to ProjectDTO
func ToProjectDTO(project *domain.Project) domain.ProjectDTO {
	dto := domain.ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Priority:    project.Priority,
		StateCode:   project.StateCode,
		Budget:      project.Budget,
		ActualCost:  project.ActualCost,
		Progress:    project.Progress,
		StartDate:   formatDate(project.StartDate),
		EndDate:     formatDate(project.EndDate),
		ManagerID:   project.ManagerID,
		TeamMembers: project.TeamMembers,
		CreatedAt:   project.CreatedAt.Format(isoFormat),
		UpdatedAt:   project.UpdatedAt.Format(isoFormat),
	}

	if project.Manager != nil {
		dto.ManagerName = project.Manager.FullName
	}

	return dto
}

// ToMaterialDTO converts Material to MaterialDTO
func ToMaterialDTO(m *domain.Material) domain.MaterialDTO {
	return domain.MaterialDTO{
		ID:          m.ID,
		MaterialID:  m.MaterialID,
		Description: m.Description,
		Unit:        m.Unit,
		UnitCost:    m.UnitCost,
		SalesPartNo: m.SalesPartNo,
		StateCode:   m.StateCode,
		Site:        m.Site,
		SupplierRef: m.SupplierRef,
		CreatedAt:   m.CreatedAt.Format(isoFormat),
		UpdatedAt:   m.UpdatedAt.Format(isoFormat),
	}
}

// ToEquipmentDTO converts Equipment to EquipmentDTO
func ToEquipmentDTO(e *domain.Equipment) domain.EquipmentDTO {
	return domain.EquipmentDTO{
		ID:            e.ID,
		EquipmentID:   e.EquipmentID,
		EquipmentName: e.EquipmentName,
		Category:      e.Category,
		UnitCost:      e.UnitCost,
		StateCode:     e.StateCode,
		Site:          e.Site,
		SupplierRef:   e.SupplierRef,
		CreatedAt:     e.CreatedAt.Format(isoFormat),
		UpdatedAt:     e.UpdatedAt.Format(isoFormat),
	}
}

// ToLabourRateDTO converts LabourRate to LabourRateDTO
func ToLabourRateDTO(lr *domain.LabourRate) domain.LabourRateDTO {
	return domain.LabourRateDTO{
		ID:            lr.ID,
		LabourType:    lr.LabourType,
		StateCode:     lr.StateCode,
		CostPerPerson: lr.CostPerPerson,
		Hours:         lr.Hours,
		CreatedAt:     lr.CreatedAt.Format(isoFormat),
		UpdatedAt:     lr.UpdatedAt.Format(isoFormat),
	}
}

// ToProjectMaterialDTO converts ProjectMaterial to ProjectMaterialDTO
func ToProjectMaterialDTO(pm *domain.ProjectMaterial) domain.ProjectMaterialDTO {
	return domain.ProjectMaterialDTO{
		ID:          pm.ID,
		ProjectID:   pm.ProjectID,
		MaterialRef: pm.MaterialRef,
		Description: pm.Description,
		Quantity:    pm.Quantity,
		UnitPrice:   pm.UnitPrice,
		TotalPrice:  pm.TotalPrice,
		CreatedAt:   pm.CreatedAt.Format(isoFormat),
	}
}

// ToProjectEquipmentDTO converts ProjectEquipment to ProjectEquipmentDTO
func ToProjectEquipmentDTO(pe *domain.ProjectEquipment) domain.ProjectEquipmentDTO {
	return domain.ProjectEquipmentDTO{
		ID:           pe.ID,
		ProjectID:    pe.ProjectID,
		EquipmentRef: pe.EquipmentRef,
		Description:  pe.Description,
		Quantity:     pe.Quantity,
		UnitPrice:    pe.UnitPrice,
		TotalPrice:   pe.TotalPrice,
		CreatedAt:    pe.CreatedAt.Format(isoFormat),
	}
}

// ToProjectLabourDTO converts ProjectLabour to ProjectLabourDTO
func ToProjectLabourDTO(pl *domain.ProjectLabour) domain.ProjectLabourDTO {
	return domain.ProjectLabourDTO{
		ID:         pl.ID,
		ProjectID:  pl.ProjectID,
		LabourType: pl.LabourType,
		StateCode:  pl.StateCode,
		Persons:    pl.Persons,
		Hours:      pl.Hours,
		UnitRate:   pl.UnitRate,
		TotalPrice: pl.TotalPrice,
		CreatedAt:  pl.CreatedAt.Format(isoFormat),
	}
}

// ToProjectTaskDTO converts ProjectTask to ProjectTaskDTO
func ToProjectTaskDTO(pt *domain.ProjectTask) domain.ProjectTaskDTO {
	return domain.ProjectTaskDTO{
		ID:          pt.ID,
		ProjectID:   pt.ProjectID,
		Name:        pt.Name,
		Description: pt.Description,
		Status:      pt.Status,
		Assignee:    pt.Assignee,
		DueDate:     formatDate(pt.DueDate),
		CreatedAt:   pt.CreatedAt.Format(isoFormat),
		UpdatedAt:   pt.UpdatedAt.Format(isoFormat),
	}
}

// ToExternalCostDTO converts ExternalCost to ExternalCostDTO
func ToExternalCostDTO(ec *domain.ExternalCost) domain.ExternalCostDTO {
	return domain.ExternalCostDTO{
		ID:          ec.ID,
		ProjectID:   ec.ProjectID,
		Description: ec.Description,
		Category:    ec.Category,
		Amount:      ec.Amount,
		Supplier:    ec.Supplier,
		CreatedAt:   ec.CreatedAt.Format(isoFormat),
	}
}

// ToQuoteDTO converts Quote to QuoteDTO, including its items when loaded
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	var items []domain.QuoteItemDTO
	if len(quote.Items) > 0 {
		items = make([]domain.QuoteItemDTO, len(quote.Items))
		for i, item := range quote.Items {
			items[i] = ToQuoteItemDTO(&item)
		}
	}

	return domain.QuoteDTO{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		ProjectID:   quote.ProjectID,
		ClientName:  quote.ClientName,
		ClientEmail: quote.ClientEmail,
		ClientPhone: quote.ClientPhone,
		ProjectName: quote.ProjectName,
		Description: quote.Description,
		Status:      quote.Status,
		ValidUntil:  formatDate(quote.ValidUntil),
		Subtotal:    quote.Subtotal,
		TaxRate:     quote.TaxRate,
		TaxAmount:   quote.TaxAmount,
		TotalAmount: quote.TotalAmount,
		CreatedByID: quote.CreatedByID,
		Items:       items,
		CreatedAt:   quote.CreatedAt.Format(isoFormat),
		UpdatedAt:   quote.UpdatedAt.Format(isoFormat),
	}
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	return domain.QuoteItemDTO{
		ID:          item.ID,
		QuoteID:     item.QuoteID,
		ItemType:    item.ItemType,
		Reference:   item.Reference,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice,
		SortOrder:   item.SortOrder,
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(n *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         n.ID,
		UserID:     n.UserID,
		Type:       n.Type,
		Severity:   n.Severity,
		Title:      n.Title,
		Message:    n.Message,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		ProjectID:  n.ProjectID,
		IsRead:     n.IsRead,
		ReadAt:     formatDate(n.ReadAt),
		CreatedAt:  n.CreatedAt.Format(isoFormat),
	}
}

// ToAuditLogDTO converts AuditLog to AuditLogDTO, decoding the stored JSON values
func ToAuditLogDTO(a *domain.AuditLog) domain.AuditLogDTO {
	dto := domain.AuditLogDTO{
		ID:         a.ID,
		UserID:     a.UserID,
		UserEmail:  a.UserEmail,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		IPAddress:  a.IPAddress,
		Path:       a.Path,
		Method:     a.Method,
		CreatedAt:  a.CreatedAt.Format(isoFormat),
	}

	if a.OldValues != "" {
		var old interface{}
		if err := json.Unmarshal([]byte(a.OldValues), &old); err == nil {
			dto.OldValues = old
		}
	}
	if a.NewValues != "" {
		var newVals interface{}
		if err := json.Unmarshal([]byte(a.NewValues), &newVals); err == nil {
			dto.NewValues = newVals
		}
	}

	return dto
}

// ToSystemConfigDTO converts SystemConfig to SystemConfigDTO
func ToSystemConfigDTO(c *domain.SystemConfig) domain.SystemConfigDTO {
	return domain.SystemConfigDTO{
		ID:          c.ID,
		Key:         c.Key,
		Value:       c.Value,
		ValueType:   c.ValueType,
		Description: c.Description,
		UpdatedBy:   c.UpdatedBy,
		UpdatedAt:   c.UpdatedAt.Format(isoFormat),
	}
}

// ToPriceChangeLogDTO converts PriceChangeLog to PriceChangeLogDTO
func ToPriceChangeLogDTO(p *domain.PriceChangeLog) domain.PriceChangeLogDTO {
	return domain.PriceChangeLogDTO{
		ID:        p.ID,
		ItemType:  p.ItemType,
		ItemRef:   p.ItemRef,
		OldPrice:  p.OldPrice,
		NewPrice:  p.NewPrice,
		ChangePct: p.ChangePct,
		Source:    p.Source,
		StateCode: p.StateCode,
		CreatedAt: p.CreatedAt.Format(isoFormat),
	}
}
