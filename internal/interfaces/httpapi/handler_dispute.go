package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/frameleague/internal/usecase"
)

func (h *Handler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDisputes")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	disputes, err := h.disputeService.ListByFixture(ctx, principal, orgID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "list disputes failed", "org_id", orgID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]disputeDTO, 0, len(disputes))
	for _, d := range disputes {
		items = append(items, disputeToDTO(d))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenDispute")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req openDisputeRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	d, err := h.disputeService.Open(ctx, principal, usecase.OpenDisputeInput{
		OrgID:         orgID,
		FixtureID:     fixtureID,
		TeamID:        req.TeamID,
		ActorPlayerID: req.ActorPlayerID,
		Reason:        req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "open dispute failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, disputeToDTO(d))
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveDispute")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))
	disputeID := strings.TrimSpace(r.PathValue("disputeID"))

	var req resolveDisputeRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	d, err := h.disputeService.Resolve(ctx, principal, usecase.ResolveDisputeInput{
		OrgID:     orgID,
		FixtureID: fixtureID,
		DisputeID: disputeID,
		Status:    req.Status,
		Outcome:   req.Outcome,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "resolve dispute failed", "org_id", orgID, "fixture_id", fixtureID, "dispute_id", disputeID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, disputeToDTO(d))
}
