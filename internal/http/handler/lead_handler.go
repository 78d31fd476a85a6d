package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	workflowService *service.WorkflowService
	importService   *service.ImportService
	logger          *zap.Logger
	maxUploadBytes  int64
}

func NewLeadHandler(workflowService *service.WorkflowService, importService *service.ImportService, maxUploadMB int64, logger *zap.Logger) *LeadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &LeadHandler{
		workflowService: workflowService,
		importService:   importService,
		logger:          logger,
		maxUploadBytes:  maxUploadMB << 20,
	}
}

// @Summary Create lead
// @Description Create a lead and assign it to the next agent in rotation
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.workflowService.CreateAndAssign(r.Context(), &req, domain.IntakeChannelManual)
	if err != nil {
		h.respondServiceError(w, err, "failed to create lead")
		return
	}

	respondJSON(w, http.StatusCreated, lead)
}

// @Summary List leads
// @Description List leads with optional filters
// @Tags Leads
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(50)
// @Param status query string false "Filter by status (lead, qualified, won, lost)"
// @Param substatus query string false "Filter by substatus (hot, warm, cif)"
// @Param centreId query string false "Filter by centre ID"
// @Param ownerId query string false "Filter by owner ID"
// @Param search query string false "Search name, email or phone"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads [get]
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 50
	}

	filter := &domain.ListLeadsFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.LeadStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		filter.Status = &status
	}
	if s := r.URL.Query().Get("substatus"); s != "" {
		substatus := domain.LeadSubstatus(s)
		if !substatus.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid substatus filter")
			return
		}
		filter.Substatus = &substatus
	}
	if cid := r.URL.Query().Get("centreId"); cid != "" {
		if id, err := uuid.Parse(cid); err == nil {
			filter.CentreID = &id
		}
	}
	if oid := r.URL.Query().Get("ownerId"); oid != "" {
		if id, err := uuid.Parse(oid); err == nil {
			filter.OwnerID = &id
		}
	}

	leads, total, err := h.workflowService.List(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, err, "failed to list leads")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       leads,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// @Summary List unassigned leads
// @Description List leads with no owner, for manual escalation
// @Tags Leads
// @Produce json
// @Param limit query int false "Maximum results" default(50)
// @Success 200 {array} domain.LeadDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/unassigned [get]
func (h *LeadHandler) ListUnassigned(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}

	leads, err := h.workflowService.ListUnassigned(r.Context(), limit)
	if err != nil {
		h.respondServiceError(w, err, "failed to list unassigned leads")
		return
	}

	respondJSON(w, http.StatusOK, leads)
}

// @Summary Get lead
// @Description Get a single lead by ID
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	lead, err := h.workflowService.GetByID(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Get workflow status
// @Description Get a lead together with its 10 most recent activity entries
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.WorkflowStatusDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/workflow [get]
func (h *LeadHandler) GetWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	status, err := h.workflowService.GetWorkflowStatus(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "failed to get workflow status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// @Summary Qualify lead
// @Description Qualify a lead and hand it off to the sales team. Value tier, centre and language must be provided together.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param qualification body domain.QualifyLeadRequest true "Qualification data"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/qualify [post]
func (h *LeadHandler) Qualify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.QualifyLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.workflowService.Qualify(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to qualify lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Record call outcome
// @Description Log a contact attempt and apply the resulting workflow transition
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param outcome body domain.RecordCallOutcomeRequest true "Call outcome data"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/call-outcomes [post]
func (h *LeadHandler) RecordCallOutcome(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.RecordCallOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.workflowService.RecordCallOutcome(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to record call outcome")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Evaluate language comfort
// @Description Record the lead's preferred language and reassign within the owning team when the current owner does not support it
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param comfort body domain.LanguageComfortRequest true "Language comfort data"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id}/language-comfort [post]
func (h *LeadHandler) EvaluateLanguageComfort(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req domain.LanguageComfortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.workflowService.EvaluateLanguageComfort(r.Context(), id, &req)
	if err != nil {
		h.respondServiceError(w, err, "failed to evaluate language comfort")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Archive lead
// @Description Soft-delete a lead
// @Tags Leads
// @Param id path string true "Lead ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/{id} [delete]
func (h *LeadHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.workflowService.Archive(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to archive lead")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Import leads
// @Description Import leads from a CSV file. Expected header: name,email,phone,source,language,centre,value_tier,notes
// @Tags Leads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} domain.ImportResultDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /leads/import [post]
func (h *LeadHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "File too large or malformed form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportCSV(r.Context(), header.Filename, file)
	if err != nil {
		h.respondServiceError(w, err, "failed to import leads")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *LeadHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid lead ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *LeadHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrIncompleteQualificationData):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
