package handler

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

// 20 MB cap on uploaded CSV files
const maxImportBodyBytes = 20 << 20

type BulkHandler struct {
	bulkService *service.BulkService
	logger      *zap.Logger
}

func NewBulkHandler(bulkService *service.BulkService, logger *zap.Logger) *BulkHandler {
	return &BulkHandler{
		bulkService: bulkService,
		logger:      logger,
	}
}

// importBody returns the CSV payload, accepting either a multipart upload
// with a "file" part or a raw CSV request body.
func importBody(r *http.Request) (io.ReadCloser, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportBodyBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, err
		}
		return file, nil
	}
	return http.MaxBytesReader(nil, r.Body, maxImportBodyBytes), nil
}

// Import godoc
// @Summary Bulk import catalog data
// @Description Import materials, equipment or labour rates from a CSV file. Existing rows matched by their business key are updated. Row errors are collected, not fatal.
// @Tags Bulk
// @Accept mpfd
// @Produce json
// @Param entity path string true "Entity to import" Enums(materials, equipment, labour-rates)
// @Param file formData file true "CSV file"
// @Success 200 {object} domain.ImportResultDTO
// @Failure 400 {object} domain.ErrorResponse "Unknown entity or unreadable CSV"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/bulk/import/{entity} [post]
func (h *BulkHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := importBody(r)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Could not read uploaded file",
		})
		return
	}
	defer body.Close()

	result, err := h.bulkService.Import(r.Context(), chi.URLParam(r, "entity"), body)
	if err != nil {
		if errors.Is(err, service.ErrUnknownBulkEntity) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Unknown import entity; expected materials, equipment or labour-rates",
			})
			return
		}
		h.logger.Error("failed to import", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to import data",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Export godoc
// @Summary Bulk export catalog data
// @Description Export a full catalog to CSV, upload the file to object storage and return its location
// @Tags Bulk
// @Produce json
// @Param entity path string true "Entity to export" Enums(materials, equipment, labour-rates)
// @Success 200 {object} domain.ExportResultDTO
// @Failure 400 {object} domain.ErrorResponse "Unknown entity"
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/bulk/export/{entity} [post]
func (h *BulkHandler) Export(w http.ResponseWriter, r *http.Request) {
	result, err := h.bulkService.Export(r.Context(), chi.URLParam(r, "entity"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownBulkEntity) {
			respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
				Error:   "Bad Request",
				Message: "Unknown export entity; expected materials, equipment or labour-rates",
			})
			return
		}
		h.logger.Error("failed to export", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to export data",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Download godoc
// @Summary Download export file
// @Description Stream a previously generated export file from object storage
// @Tags Bulk
// @Produce text/csv
// @Param path query string true "Storage path returned by the export operation"
// @Success 200 {file} file
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /admin/bulk/export/download [get]
func (h *BulkHandler) Download(w http.ResponseWriter, r *http.Request) {
	storagePath := r.URL.Query().Get("path")
	if storagePath == "" || strings.Contains(storagePath, "..") {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Query parameter 'path' is required",
		})
		return
	}

	reader, err := h.bulkService.DownloadExport(r.Context(), storagePath)
	if err != nil {
		h.logger.Error("failed to download export", zap.Error(err), zap.String("storagePath", storagePath))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to download export file",
		})
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(storagePath)+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream export file", zap.Error(err))
	}
}
