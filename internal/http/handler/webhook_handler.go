package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"go.uber.org/zap"
)

// WebhookHandler accepts lead intake from external campaign platforms.
// The route is protected by API key, not by a user session.
type WebhookHandler struct {
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

func NewWebhookHandler(workflowService *service.WorkflowService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		workflowService: workflowService,
		logger:          logger,
	}
}

// @Summary Webhook lead intake
// @Description Create a lead from an external campaign platform
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param lead body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Failure 400 {object} domain.APIError
// @Security ApiKeyAuth
// @Router /webhooks/leads [post]
func (h *WebhookHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	lead, err := h.workflowService.CreateAndAssign(r.Context(), &req, domain.IntakeChannelWebhook)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("webhook lead intake failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, lead)
}
