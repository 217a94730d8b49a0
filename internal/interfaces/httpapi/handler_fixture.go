package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/usecase"
)

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixture")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	f, err := h.fixtureService.GetByID(ctx, principal, orgID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture failed", "org_id", orgID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(f))
}

func (h *Handler) ListFixturesByDivision(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixturesByDivision")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	divisionID := strings.TrimSpace(r.PathValue("divisionID"))

	fixtures, err := h.fixtureService.ListByDivision(ctx, principal, orgID, divisionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "org_id", orgID, "division_id", divisionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, fixtureToDTO(f))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListFixtureEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtureEvents")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	events, err := h.ledgerService.ListEvents(ctx, principal, orgID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixture events failed", "org_id", orgID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchEventsToDTOs(events))
}

func (h *Handler) AppendFixtureEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AppendFixtureEvent")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req appendEventRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	event, err := h.ledgerService.AppendEvent(ctx, principal, usecase.AppendEventInput{
		OrgID:            orgID,
		FixtureID:        fixtureID,
		Type:             matchevent.EventType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Payload:          req.Payload,
		TeamID:           req.TeamID,
		ActorPlayerID:    req.ActorPlayerID,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "append fixture event failed", "org_id", orgID, "fixture_id", fixtureID, "type", req.Type, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, matchEventToDTO(event))
}

func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req submitResultRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.workflowService.SubmitResult(ctx, principal, usecase.SubmitResultInput{
		OrgID:            orgID,
		FixtureID:        fixtureID,
		TeamID:           req.TeamID,
		ActorPlayerID:    req.ActorPlayerID,
		HomeFrames:       req.HomeFrames,
		AwayFrames:       req.AwayFrames,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit result failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, appendResultDTO{Events: matchEventsToDTOs(events)})
}

func (h *Handler) ApproveResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req reviewResultRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.workflowService.ApproveResult(ctx, principal, usecase.ReviewResultInput{
		OrgID:            orgID,
		FixtureID:        fixtureID,
		TeamID:           req.TeamID,
		ActorPlayerID:    req.ActorPlayerID,
		Reason:           req.Reason,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "approve result failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, appendResultDTO{Events: matchEventsToDTOs(events)})
}

func (h *Handler) RejectResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectResult")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req reviewResultRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.workflowService.RejectResult(ctx, principal, usecase.ReviewResultInput{
		OrgID:            orgID,
		FixtureID:        fixtureID,
		TeamID:           req.TeamID,
		ActorPlayerID:    req.ActorPlayerID,
		Reason:           req.Reason,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "reject result failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, appendResultDTO{Events: matchEventsToDTOs(events)})
}

func (h *Handler) CompleteFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteFixture")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req completeOverrideRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.workflowService.CompleteOverride(ctx, principal, usecase.CompleteOverrideInput{
		OrgID:            orgID,
		FixtureID:        fixtureID,
		HomeFrames:       req.HomeFrames,
		AwayFrames:       req.AwayFrames,
		Reason:           req.Reason,
		ExpectedRevision: req.ExpectedRevision,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "complete fixture failed", "org_id", orgID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, appendResultDTO{Events: matchEventsToDTOs(events)})
}
