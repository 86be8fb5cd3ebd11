package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/slcgroup/costing-api/internal/auth"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	csvContentType  = "text/csv"
	maxImportErrors = 50
	exportPageSize  = 200
)

// ErrUnknownBulkEntity is returned for an unsupported import or export target
var ErrUnknownBulkEntity = errors.New("unknown bulk entity")

// BulkService handles CSV import and export of the catalogs. Exports are
// written to the configured file storage; imports upsert by business key.
type BulkService struct {
	materialRepo     *repository.MaterialRepository
	equipmentRepo    *repository.EquipmentRepository
	labourRateRepo   *repository.LabourRateRepository
	priceChangeRepo  *repository.PriceChangeRepository
	notificationRepo *repository.NotificationRepository
	store            storage.Storage
	logger           *zap.Logger
}

// NewBulkService creates a new BulkService instance
func NewBulkService(
	materialRepo *repository.MaterialRepository,
	equipmentRepo *repository.EquipmentRepository,
	labourRateRepo *repository.LabourRateRepository,
	priceChangeRepo *repository.PriceChangeRepository,
	notificationRepo *repository.NotificationRepository,
	store storage.Storage,
	logger *zap.Logger,
) *BulkService {
	return &BulkService{
		materialRepo:     materialRepo,
		equipmentRepo:    equipmentRepo,
		labourRateRepo:   labourRateRepo,
		priceChangeRepo:  priceChangeRepo,
		notificationRepo: notificationRepo,
		store:            store,
		logger:           logger,
	}
}

// Import reads CSV rows for the given entity and upserts them.
// Row failures are collected; the import continues past them.
func (s *BulkService) Import(ctx context.Context, entity string, data io.Reader) (*domain.ImportResultDTO, error) {
	reader := csv.NewReader(data)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rowFn func(ctx context.Context, row map[string]string) (created bool, err error)
	switch entity {
	case "materials":
		rowFn = s.importMaterialRow
	case "equipment":
		rowFn = s.importEquipmentRow
	case "labour-rates":
		rowFn = s.importLabourRateRow
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBulkEntity, entity)
	}

	result := &domain.ImportResultDTO{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Failed++
			result.Errors = appendImportError(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}

		created, err := rowFn(ctx, row)
		if err != nil {
			result.Failed++
			result.Errors = appendImportError(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if created {
			result.Imported++
		} else {
			result.Updated++
		}
	}

	s.logger.Info("bulk import completed",
		zap.String("entity", entity),
		zap.Int("imported", result.Imported),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)

	s.notify(ctx, domain.NotificationTypeImportCompleted,
		fmt.Sprintf("Import of %s completed", entity),
		fmt.Sprintf("%d created, %d updated, %d failed", result.Imported, result.Updated, result.Failed))

	return result, nil
}

// Export writes all rows of the given entity as CSV into file storage
// and describes the stored artifact
func (s *BulkService) Export(ctx context.Context, entity string) (*domain.ExportResultDTO, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	var rowCount int
	var err error
	switch entity {
	case "materials":
		rowCount, err = s.exportMaterials(ctx, writer)
	case "equipment":
		rowCount, err = s.exportEquipment(ctx, writer)
	case "labour-rates":
		rowCount, err = s.exportLabourRates(ctx, writer)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBulkEntity, entity)
	}
	if err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}

	filename := fmt.Sprintf("%s-%s.csv", entity, time.Now().UTC().Format("20060102-150405"))
	storagePath, size, err := s.store.Upload(ctx, filename, csvContentType, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	s.logger.Info("bulk export completed",
		zap.String("entity", entity),
		zap.String("storagePath", storagePath),
		zap.Int("rows", rowCount),
	)

	s.notify(ctx, domain.NotificationTypeExportCompleted,
		fmt.Sprintf("Export of %s completed", entity),
		fmt.Sprintf("%d rows written to %s", rowCount, storagePath))

	return &domain.ExportResultDTO{
		Entity:      entity,
		StoragePath: storagePath,
		SizeBytes:   size,
		RowCount:    rowCount,
		ContentType: csvContentType,
	}, nil
}

// DownloadExport streams a previously stored export artifact
func (s *BulkService) DownloadExport(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	return s.store.Download(ctx, storagePath)
}

func (s *BulkService) importMaterialRow(ctx context.Context, row map[string]string) (bool, error) {
	materialID := row["material_id"]
	if materialID == "" {
		return false, errors.New("material_id is required")
	}

	unitCost, err := parseCSVFloat(row["unit_cost"])
	if err != nil {
		return false, fmt.Errorf("invalid unit_cost: %w", err)
	}

	stateCode := domain.StateCode(row["state_code"])
	if stateCode != "" && !stateCode.IsValid() {
		return false, fmt.Errorf("invalid state_code %q", stateCode)
	}

	existing, err := s.materialRepo.GetByMaterialID(ctx, materialID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if existing == nil {
		material := &domain.Material{
			MaterialID:  materialID,
			Description: row["description"],
			Unit:        row["unit"],
			UnitCost:    unitCost,
			SalesPartNo: row["sales_part_no"],
			StateCode:   stateCode,
			Site:        row["site"],
			SupplierRef: row["supplier_ref"],
		}
		if material.Description == "" {
			return false, errors.New("description is required")
		}
		return true, s.materialRepo.Create(ctx, material)
	}

	oldCost := existing.UnitCost
	if v := row["description"]; v != "" {
		existing.Description = v
	}
	if v := row["unit"]; v != "" {
		existing.Unit = v
	}
	existing.UnitCost = unitCost
	if v := row["sales_part_no"]; v != "" {
		existing.SalesPartNo = v
	}
	if stateCode != "" {
		existing.StateCode = stateCode
	}
	if v := row["site"]; v != "" {
		existing.Site = v
	}
	if v := row["supplier_ref"]; v != "" {
		existing.SupplierRef = v
	}

	if err := s.materialRepo.Update(ctx, existing); err != nil {
		return false, err
	}
	if unitCost != oldCost {
		s.recordImportPriceChange(ctx, "material", materialID, oldCost, unitCost, existing.StateCode)
	}
	return false, nil
}

func (s *BulkService) importEquipmentRow(ctx context.Context, row map[string]string) (bool, error) {
	equipmentID := row["equipment_id"]
	if equipmentID == "" {
		return false, errors.New("equipment_id is required")
	}

	unitCost, err := parseCSVFloat(row["unit_cost"])
	if err != nil {
		return false, fmt.Errorf("invalid unit_cost: %w", err)
	}

	stateCode := domain.StateCode(row["state_code"])
	if stateCode != "" && !stateCode.IsValid() {
		return false, fmt.Errorf("invalid state_code %q", stateCode)
	}

	existing, err := s.equipmentRepo.GetByEquipmentID(ctx, equipmentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if existing == nil {
		equipment := &domain.Equipment{
			EquipmentID:   equipmentID,
			EquipmentName: row["equipment_name"],
			Category:      row["category"],
			UnitCost:      unitCost,
			StateCode:     stateCode,
			Site:          row["site"],
			SupplierRef:   row["supplier_ref"],
		}
		if equipment.EquipmentName == "" {
			return false, errors.New("equipment_name is required")
		}
		return true, s.equipmentRepo.Create(ctx, equipment)
	}

	oldCost := existing.UnitCost
	if v := row["equipment_name"]; v != "" {
		existing.EquipmentName = v
	}
	if v := row["category"]; v != "" {
		existing.Category = v
	}
	existing.UnitCost = unitCost
	if stateCode != "" {
		existing.StateCode = stateCode
	}
	if v := row["site"]; v != "" {
		existing.Site = v
	}
	if v := row["supplier_ref"]; v != "" {
		existing.SupplierRef = v
	}

	if err := s.equipmentRepo.Update(ctx, existing); err != nil {
		return false, err
	}
	if unitCost != oldCost {
		s.recordImportPriceChange(ctx, "equipment", equipmentID, oldCost, unitCost, existing.StateCode)
	}
	return false, nil
}

func (s *BulkService) importLabourRateRow(ctx context.Context, row map[string]string) (bool, error) {
	labourType := row["labour_type"]
	if labourType == "" {
		return false, errors.New("labour_type is required")
	}

	stateCode := domain.StateCode(row["state_code"])
	if !stateCode.IsValid() {
		return false, fmt.Errorf("invalid state_code %q", stateCode)
	}

	costPerPerson, err := parseCSVFloat(row["cost_per_person"])
	if err != nil {
		return false, fmt.Errorf("invalid cost_per_person: %w", err)
	}
	hours, err := parseCSVFloat(row["hours"])
	if err != nil {
		return false, fmt.Errorf("invalid hours: %w", err)
	}
	if hours == 0 {
		hours = 8
	}

	existing, err := s.labourRateRepo.GetRate(ctx, labourType, stateCode)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if existing == nil {
		rate := &domain.LabourRate{
			LabourType:    labourType,
			StateCode:     stateCode,
			CostPerPerson: costPerPerson,
			Hours:         hours,
		}
		return true, s.labourRateRepo.Create(ctx, rate)
	}

	existing.CostPerPerson = costPerPerson
	existing.Hours = hours
	return false, s.labourRateRepo.Update(ctx, existing)
}

func (s *BulkService) exportMaterials(ctx context.Context, writer *csv.Writer) (int, error) {
	if err := writer.Write([]string{"material_id", "description", "unit", "unit_cost", "sales_part_no", "state_code", "site", "supplier_ref"}); err != nil {
		return 0, err
	}

	rows := 0
	for page := 1; ; page++ {
		materials, _, err := s.materialRepo.List(ctx, &repository.MaterialFilter{}, page, exportPageSize)
		if err != nil {
			return rows, fmt.Errorf("failed to list materials: %w", err)
		}
		if len(materials) == 0 {
			break
		}
		for _, m := range materials {
			record := []string{m.MaterialID, m.Description, m.Unit, formatCSVFloat(m.UnitCost), m.SalesPartNo, string(m.StateCode), m.Site, m.SupplierRef}
			if err := writer.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
		if len(materials) < exportPageSize {
			break
		}
	}
	return rows, nil
}

func (s *BulkService) exportEquipment(ctx context.Context, writer *csv.Writer) (int, error) {
	if err := writer.Write([]string{"equipment_id", "equipment_name", "category", "unit_cost", "state_code", "site", "supplier_ref"}); err != nil {
		return 0, err
	}

	rows := 0
	for page := 1; ; page++ {
		equipment, _, err := s.equipmentRepo.List(ctx, &repository.EquipmentFilter{}, page, exportPageSize)
		if err != nil {
			return rows, fmt.Errorf("failed to list equipment: %w", err)
		}
		if len(equipment) == 0 {
			break
		}
		for _, e := range equipment {
			record := []string{e.EquipmentID, e.EquipmentName, e.Category, formatCSVFloat(e.UnitCost), string(e.StateCode), e.Site, e.SupplierRef}
			if err := writer.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
		if len(equipment) < exportPageSize {
			break
		}
	}
	return rows, nil
}

func (s *BulkService) exportLabourRates(ctx context.Context, writer *csv.Writer) (int, error) {
	if err := writer.Write([]string{"labour_type", "state_code", "cost_per_person", "hours"}); err != nil {
		return 0, err
	}

	rows := 0
	for page := 1; ; page++ {
		rates, _, err := s.labourRateRepo.List(ctx, &repository.LabourRateFilter{}, page, exportPageSize)
		if err != nil {
			return rows, fmt.Errorf("failed to list labour rates: %w", err)
		}
		if len(rates) == 0 {
			break
		}
		for _, r := range rates {
			record := []string{r.LabourType, string(r.StateCode), formatCSVFloat(r.CostPerPerson), formatCSVFloat(r.Hours)}
			if err := writer.Write(record); err != nil {
				return rows, err
			}
			rows++
		}
		if len(rates) < exportPageSize {
			break
		}
	}
	return rows, nil
}

func (s *BulkService) recordImportPriceChange(ctx context.Context, itemType, itemRef string, oldPrice, newPrice float64, stateCode domain.StateCode) {
	changePct := 0.0
	if oldPrice != 0 {
		changePct = (newPrice - oldPrice) / oldPrice * 100
	}

	change := &domain.PriceChangeLog{
		ItemType:  itemType,
		ItemRef:   itemRef,
		OldPrice:  oldPrice,
		NewPrice:  newPrice,
		ChangePct: changePct,
		Source:    domain.PriceChangeSourceBulkImport,
		StateCode: stateCode,
	}

	if err := s.priceChangeRepo.Create(ctx, change); err != nil {
		s.logger.Warn("failed to record imported price change",
			zap.String("itemRef", itemRef),
			zap.Error(err),
		)
	}
}

// notify writes a bulk operation notification for the current user.
// Failures are logged, never propagated.
func (s *BulkService) notify(ctx context.Context, notificationType domain.NotificationType, title, message string) {
	notification := &domain.Notification{
		Type:     notificationType,
		Severity: domain.SeverityLow,
		Title:    title,
		Message:  message,
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		notification.UserID = &userCtx.UserID
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to create bulk operation notification", zap.Error(err))
	}
}

func appendImportError(errs []string, msg string) []string {
	if len(errs) >= maxImportErrors {
		return errs
	}
	return append(errs, msg)
}

func parseCSVFloat(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func formatCSVFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
