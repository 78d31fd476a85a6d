package handler

import (
	"net/http"

	"github.com/veridian-estates/pipeline-api/internal/service"
	"go.uber.org/zap"
)

// ReferenceHandler serves the lookup tables backing intake forms
type ReferenceHandler struct {
	referenceService *service.ReferenceService
	logger           *zap.Logger
}

func NewReferenceHandler(referenceService *service.ReferenceService, logger *zap.Logger) *ReferenceHandler {
	return &ReferenceHandler{
		referenceService: referenceService,
		logger:           logger,
	}
}

// @Summary List centres
// @Tags Reference
// @Produce json
// @Success 200 {array} domain.CentreDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /centres [get]
func (h *ReferenceHandler) ListCentres(w http.ResponseWriter, r *http.Request) {
	centres, err := h.referenceService.ListCentres(r.Context())
	if err != nil {
		h.logger.Error("failed to list centres", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, centres)
}

// @Summary List languages
// @Tags Reference
// @Produce json
// @Success 200 {array} domain.LanguageDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /languages [get]
func (h *ReferenceHandler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.referenceService.ListLanguages(r.Context())
	if err != nil {
		h.logger.Error("failed to list languages", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, languages)
}

// @Summary List lead sources
// @Tags Reference
// @Produce json
// @Success 200 {array} domain.LeadSourceDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /lead-sources [get]
func (h *ReferenceHandler) ListLeadSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.referenceService.ListLeadSources(r.Context())
	if err != nil {
		h.logger.Error("failed to list lead sources", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, sources)
}

// @Summary List statuses
// @Description List status reference records, optionally filtered by type
// @Tags Reference
// @Produce json
// @Param type query string false "Status type (lead_status, lead_substatus)"
// @Success 200 {array} domain.StatusDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /statuses [get]
func (h *ReferenceHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.referenceService.ListStatuses(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.logger.Error("failed to list statuses", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondJSON(w, http.StatusOK, statuses)
}
