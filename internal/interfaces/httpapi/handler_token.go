package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/frameleague/internal/usecase"
)

func (h *Handler) ListControlTokens(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListControlTokens")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	tokens, err := h.tokenService.ListByFixture(ctx, principal, orgID, fixtureID)
	if err != nil {
		h.logger.WarnContext(ctx, "list control tokens failed", "org_id", orgID, "fixture_id", fixtureID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]controlTokenDTO, 0, len(tokens))
	for _, t := range tokens {
		items = append(items, controlTokenToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) IssueControlToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IssueControlToken")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req issueTokenRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.tokenService.Issue(ctx, principal, usecase.IssueTokenInput{
		OrgID:          orgID,
		FixtureID:      fixtureID,
		TeamID:         req.TeamID,
		HolderPlayerID: req.HolderPlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "issue control token failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, controlTokenToDTO(token))
}

func (h *Handler) TransferControlToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TransferControlToken")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req transferTokenRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.tokenService.Transfer(ctx, principal, usecase.TransferTokenInput{
		OrgID:         orgID,
		FixtureID:     fixtureID,
		TeamID:        req.TeamID,
		ActorPlayerID: req.ActorPlayerID,
		ToPlayerID:    req.ToPlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer control token failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, controlTokenToDTO(token))
}

func (h *Handler) AcceptControlToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AcceptControlToken")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	fixtureID := strings.TrimSpace(r.PathValue("fixtureID"))

	var req acceptTokenRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.tokenService.Accept(ctx, principal, usecase.AcceptTokenInput{
		OrgID:     orgID,
		FixtureID: fixtureID,
		TeamID:    req.TeamID,
		PlayerID:  req.PlayerID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "accept control token failed", "org_id", orgID, "fixture_id", fixtureID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, controlTokenToDTO(token))
}
