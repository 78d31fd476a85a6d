package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/service"
	"go.uber.org/zap"
)

type AgentHandler struct {
	agentService *service.AgentService
	logger       *zap.Logger
}

func NewAgentHandler(agentService *service.AgentService, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		agentService: agentService,
		logger:       logger,
	}
}

// @Summary List agents
// @Description List agents, optionally narrowed to one team
// @Tags Agents
// @Produce json
// @Param team query string false "Filter by team (presales, sales)"
// @Success 200 {array} domain.AgentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /agents [get]
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	var team *domain.Team
	if t := r.URL.Query().Get("team"); t != "" {
		parsed := domain.Team(t)
		team = &parsed
	}

	agents, err := h.agentService.List(r.Context(), team)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list agents", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, agents)
}

// @Summary Get agent
// @Description Get a single agent by ID
// @Tags Agents
// @Produce json
// @Param id path string true "Agent ID"
// @Success 200 {object} domain.AgentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /agents/{id} [get]
func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent ID")
		return
	}

	agent, err := h.agentService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to get agent", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, agent)
}

type setAgentActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// @Summary Set agent availability
// @Description Toggle an agent in or out of the assignment rotation
// @Tags Agents
// @Accept json
// @Produce json
// @Param id path string true "Agent ID"
// @Param body body handler.setAgentActiveRequest true "Availability"
// @Success 200 {object} domain.AgentDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /agents/{id}/active [patch]
func (h *AgentHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent ID")
		return
	}

	var req setAgentActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	agent, err := h.agentService.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to update agent availability", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, agent)
}
