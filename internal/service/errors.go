package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/veridian-estates/pipeline-api/internal/domain"
	"github.com/veridian-estates/pipeline-api/internal/repository"
)

// Common service errors
var (
	// ErrNotFound is returned when a referenced lead, agent, status or
	// reference record is absent
	ErrNotFound = errors.New("resource not found")

	// ErrValidation marks input errors; wrap it so handlers can map the
	// whole family with errors.Is
	ErrValidation = errors.New("validation error")

	// ErrIncompleteQualificationData is returned when a qualification
	// payload supplies only part of valueTier, centre and language.
	// The operation aborts before any mutation.
	ErrIncompleteQualificationData = fmt.Errorf("%w: qualification requires value tier, centre and language together", ErrValidation)

	// ErrForbidden is returned when the caller may not act on the resource
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when user context is missing
	ErrUnauthorized = errors.New("unauthorized")
)

// NoEligibleAgentError is returned by the assignment engine when the
// filtered candidate set is empty. It carries the team and filters so the
// caller can widen the search or escalate without inspecting internal state.
type NoEligibleAgentError struct {
	Team    domain.Team
	Filters repository.AgentFilters
}

func (e *NoEligibleAgentError) Error() string {
	return fmt.Sprintf("no eligible agent for team %q (centre=%s language=%s valueTier=%s)",
		e.Team,
		uuidOrAny(e.Filters.CentreID),
		uuidOrAny(e.Filters.LanguageID),
		tierOrAny(e.Filters.ValueTier),
	)
}

func uuidOrAny(id *uuid.UUID) string {
	if id == nil {
		return "any"
	}
	return id.String()
}

func tierOrAny(t *domain.ValueTier) string {
	if t == nil {
		return "any"
	}
	return string(*t)
}

// IsNoEligibleAgent reports whether err is a NoEligibleAgentError
func IsNoEligibleAgent(err error) bool {
	var target *NoEligibleAgentError
	return errors.As(err, &target)
}
