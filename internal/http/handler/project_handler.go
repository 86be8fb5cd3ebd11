package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService   *service.ProjectService
	componentService *service.ProjectComponentService
	logger           *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, componentService *service.ProjectComponentService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService:   projectService,
		componentService: componentService,
		logger:           logger,
	}
}

// parsePathUUID extracts and validates a UUID path parameter, writing a 400
// response on failure
func parsePathUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid " + label + " format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondComponentError maps component service errors to HTTP responses
func (h *ProjectHandler) respondComponentError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Project not found"})
	case errors.Is(err, service.ErrProjectLineNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Project line not found"})
	case errors.Is(err, service.ErrTaskNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Task not found"})
	case errors.Is(err, service.ErrExternalCostNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "External cost not found"})
	case errors.Is(err, service.ErrMaterialNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Material not found in catalog"})
	case errors.Is(err, service.ErrEquipmentNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "Equipment not found in catalog"})
	case errors.Is(err, service.ErrLabourRateNotFound):
		respondJSON(w, http.StatusNotFound, domain.ErrorResponse{Error: "Not Found", Message: "No labour rate for this type and state"})
	case errors.Is(err, service.ErrInvalidStateCode):
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid state code"})
	default:
		h.logger.Error("failed to "+action, zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to " + action,
		})
	}
}

// List godoc
// @Summary List projects
// @Description Get paginated list of projects with optional filters
// @Tags Projects
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name or description"
// @Param status query string false "Filter by status" Enums(planning, in_progress, completed, on_hold, cancelled)
// @Param priority query string false "Filter by priority" Enums(low, medium, high, urgent)
// @Param stateCode query string false "Filter by state" Enums(NSW, VIC, QLD, NT, SA, WA, TAS, ACT)
// @Param managerId query string false "Filter by manager" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProjectDTO}
// @Failure 401 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	filter := &repository.ProjectFilter{
		Search:    r.URL.Query().Get("search"),
		Status:    r.URL.Query().Get("status"),
		Priority:  r.URL.Query().Get("priority"),
		StateCode: r.URL.Query().Get("stateCode"),
	}
	if v := r.URL.Query().Get("managerId"); v != "" {
		if managerID, err := uuid.Parse(v); err == nil {
			filter.ManagerID = &managerID
		}
	}

	result, err := h.projectService.List(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list projects",
		})
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Recent godoc
// @Summary Recently updated projects
// @Tags Projects
// @Produce json
// @Param limit query int false "Maximum rows (max 50)" default(10)
// @Success 200 {array} domain.ProjectDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/recent [get]
func (h *ProjectHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	projects, err := h.projectService.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list recent projects", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to list recent projects",
		})
		return
	}

	respondJSON(w, http.StatusOK, projects)
}

// GetByID godoc
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Project not found",
			})
			return
		}
		h.logger.Error("failed to get project", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to get project",
		})
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body service.CreateProjectInput true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create project", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to create project",
		})
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// Update godoc
// @Summary Update project
// @Description Partially update a project; omitted fields keep their values
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.UpdateProjectInput true "Fields to update"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [patch]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.UpdateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid request body",
		})
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	project, err := h.projectService.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Project not found",
			})
			return
		}
		h.logger.Error("failed to update project", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to update project",
		})
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Description Delete a project and all of its cost components
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	if err := h.projectService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondJSON(w, http.StatusNotFound, domain.ErrorResponse{
				Error:   "Not Found",
				Message: "Project not found",
			})
			return
		}
		h.logger.Error("failed to delete project", zap.Error(err))
		respondJSON(w, http.StatusInternalServerError, domain.ErrorResponse{
			Error:   "Internal Server Error",
			Message: "Failed to delete project",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Totals godoc
// @Summary Project cost totals
// @Description Get the summed cost per component category. A project with no components yields zero totals.
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {object} domain.ProjectTotalsDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/totals [get]
func (h *ProjectHandler) Totals(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	totals, err := h.componentService.Totals(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "compute project totals")
		return
	}

	respondJSON(w, http.StatusOK, totals)
}

// AddMaterial attaches a material line. The unit price is snapshotted from
// the catalog unless supplied.
// @Summary Add project material line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.AddProjectMaterialInput true "Line data"
// @Success 201 {object} domain.ProjectMaterialDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials [post]
func (h *ProjectHandler) AddMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.AddProjectMaterialInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.AddMaterial(r.Context(), id, &req)
	if err != nil {
		h.respondComponentError(w, err, "add material line")
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

// ListMaterials returns the material lines of a project
// @Summary List project material lines
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ProjectMaterialDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials [get]
func (h *ProjectHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	lines, err := h.componentService.ListMaterials(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "list material lines")
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// UpdateMaterial updates a material line and recomputes its total
// @Summary Update project material line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Param request body service.UpdateComponentLineInput true "Fields to update"
// @Success 200 {object} domain.ProjectMaterialDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials/{lineId} [patch]
func (h *ProjectHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	var req service.UpdateComponentLineInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.UpdateMaterial(r.Context(), id, lineID, &req)
	if err != nil {
		h.respondComponentError(w, err, "update material line")
		return
	}

	respondJSON(w, http.StatusOK, line)
}

// DeleteMaterial removes a material line
// @Summary Delete project material line
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/materials/{lineId} [delete]
func (h *ProjectHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	if err := h.componentService.DeleteMaterial(r.Context(), id, lineID); err != nil {
		h.respondComponentError(w, err, "delete material line")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddEquipment attaches an equipment line with a snapshotted price
// @Summary Add project equipment line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.AddProjectEquipmentInput true "Line data"
// @Success 201 {object} domain.ProjectEquipmentDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/equipment [post]
func (h *ProjectHandler) AddEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.AddProjectEquipmentInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.AddEquipment(r.Context(), id, &req)
	if err != nil {
		h.respondComponentError(w, err, "add equipment line")
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

// ListEquipment returns the equipment lines of a project
// @Summary List project equipment lines
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ProjectEquipmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/equipment [get]
func (h *ProjectHandler) ListEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	lines, err := h.componentService.ListEquipment(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "list equipment lines")
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// UpdateEquipment updates an equipment line and recomputes its total
// @Summary Update project equipment line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Param request body service.UpdateComponentLineInput true "Fields to update"
// @Success 200 {object} domain.ProjectEquipmentDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/equipment/{lineId} [patch]
func (h *ProjectHandler) UpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	var req service.UpdateComponentLineInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.UpdateEquipment(r.Context(), id, lineID, &req)
	if err != nil {
		h.respondComponentError(w, err, "update equipment line")
		return
	}

	respondJSON(w, http.StatusOK, line)
}

// DeleteEquipment removes an equipment line
// @Summary Delete project equipment line
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/equipment/{lineId} [delete]
func (h *ProjectHandler) DeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	if err := h.componentService.DeleteEquipment(r.Context(), id, lineID); err != nil {
		h.respondComponentError(w, err, "delete equipment line")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddLabour attaches a labour line. The rate is resolved by labour type and
// state; a missing combination is 404.
// @Summary Add project labour line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.AddProjectLabourInput true "Line data"
// @Success 201 {object} domain.ProjectLabourDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Failure 404 {object} domain.ErrorResponse "Project or labour rate not found"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/labour [post]
func (h *ProjectHandler) AddLabour(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.AddProjectLabourInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.AddLabour(r.Context(), id, &req)
	if err != nil {
		h.respondComponentError(w, err, "add labour line")
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

// ListLabour returns the labour lines of a project
// @Summary List project labour lines
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ProjectLabourDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/labour [get]
func (h *ProjectHandler) ListLabour(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	lines, err := h.componentService.ListLabour(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "list labour lines")
		return
	}

	respondJSON(w, http.StatusOK, lines)
}

// UpdateLabour updates a labour line and recomputes its total
// @Summary Update project labour line
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Param request body service.UpdateProjectLabourInput true "Fields to update"
// @Success 200 {object} domain.ProjectLabourDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/labour/{lineId} [patch]
func (h *ProjectHandler) UpdateLabour(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	var req service.UpdateProjectLabourInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.componentService.UpdateLabour(r.Context(), id, lineID, &req)
	if err != nil {
		h.respondComponentError(w, err, "update labour line")
		return
	}

	respondJSON(w, http.StatusOK, line)
}

// DeleteLabour removes a labour line
// @Summary Delete project labour line
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param lineId path string true "Line ID" format(uuid)
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/labour/{lineId} [delete]
func (h *ProjectHandler) DeleteLabour(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	lineID, ok := parsePathUUID(w, r, "lineId", "line ID")
	if !ok {
		return
	}

	if err := h.componentService.DeleteLabour(r.Context(), id, lineID); err != nil {
		h.respondComponentError(w, err, "delete labour line")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateTask adds a task to a project
// @Summary Create project task
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.CreateTaskInput true "Task data"
// @Success 201 {object} domain.ProjectTaskDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [post]
func (h *ProjectHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.componentService.CreateTask(r.Context(), id, &req)
	if err != nil {
		h.respondComponentError(w, err, "create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// ListTasks returns the tasks of a project
// @Summary List project tasks
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ProjectTaskDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks [get]
func (h *ProjectHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	tasks, err := h.componentService.ListTasks(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "list tasks")
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// UpdateTask updates a task
// @Summary Update project task
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Param request body service.UpdateTaskInput true "Fields to update"
// @Success 200 {object} domain.ProjectTaskDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId} [patch]
func (h *ProjectHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	taskID, ok := parsePathUUID(w, r, "taskId", "task ID")
	if !ok {
		return
	}

	var req service.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.componentService.UpdateTask(r.Context(), id, taskID, &req)
	if err != nil {
		h.respondComponentError(w, err, "update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task
// @Summary Delete project task
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param taskId path string true "Task ID" format(uuid)
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/tasks/{taskId} [delete]
func (h *ProjectHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	taskID, ok := parsePathUUID(w, r, "taskId", "task ID")
	if !ok {
		return
	}

	if err := h.componentService.DeleteTask(r.Context(), id, taskID); err != nil {
		h.respondComponentError(w, err, "delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateExternalCost attaches an external cost
// @Summary Create project external cost
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param request body service.CreateExternalCostInput true "External cost data"
// @Success 201 {object} domain.ExternalCostDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/external-costs [post]
func (h *ProjectHandler) CreateExternalCost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	var req service.CreateExternalCostInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cost, err := h.componentService.CreateExternalCost(r.Context(), id, &req)
	if err != nil {
		h.respondComponentError(w, err, "create external cost")
		return
	}

	respondJSON(w, http.StatusCreated, cost)
}

// ListExternalCosts returns the external costs of a project
// @Summary List project external costs
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Success 200 {array} domain.ExternalCostDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/external-costs [get]
func (h *ProjectHandler) ListExternalCosts(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}

	costs, err := h.componentService.ListExternalCosts(r.Context(), id)
	if err != nil {
		h.respondComponentError(w, err, "list external costs")
		return
	}

	respondJSON(w, http.StatusOK, costs)
}

// UpdateExternalCost updates an external cost
// @Summary Update project external cost
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID" format(uuid)
// @Param costId path string true "External cost ID" format(uuid)
// @Param request body service.UpdateExternalCostInput true "Fields to update"
// @Success 200 {object} domain.ExternalCostDTO
// @Failure 422 {object} domain.APIError "Field validation failure"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/external-costs/{costId} [patch]
func (h *ProjectHandler) UpdateExternalCost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	costID, ok := parsePathUUID(w, r, "costId", "external cost ID")
	if !ok {
		return
	}

	var req service.UpdateExternalCostInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, domain.ErrorResponse{Error: "Bad Request", Message: "Invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cost, err := h.componentService.UpdateExternalCost(r.Context(), id, costID, &req)
	if err != nil {
		h.respondComponentError(w, err, "update external cost")
		return
	}

	respondJSON(w, http.StatusOK, cost)
}

// DeleteExternalCost removes an external cost
// @Summary Delete project external cost
// @Tags Projects
// @Param id path string true "Project ID" format(uuid)
// @Param costId path string true "External cost ID" format(uuid)
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /projects/{id}/external-costs/{costId} [delete]
func (h *ProjectHandler) DeleteExternalCost(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePathUUID(w, r, "id", "project ID")
	if !ok {
		return
	}
	costID, ok := parsePathUUID(w, r, "costId", "external cost ID")
	if !ok {
		return
	}

	if err := h.componentService.DeleteExternalCost(r.Context(), id, costID); err != nil {
		h.respondComponentError(w, err, "delete external cost")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
