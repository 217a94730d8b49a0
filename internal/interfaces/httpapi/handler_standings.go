package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/frameleague/internal/usecase"
)

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	divisionID := strings.TrimSpace(r.PathValue("divisionID"))

	snapshot, err := h.standingsService.Latest(ctx, orgID, divisionID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "org_id", orgID, "division_id", divisionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsSnapshotToDTO(snapshot))
}

func (h *Handler) ListStandingsHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandingsHistory")
	defer span.End()

	if _, ok := principalFromContext(ctx); !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}
	orgID := strings.TrimSpace(r.PathValue("orgID"))
	divisionID := strings.TrimSpace(r.PathValue("divisionID"))

	snapshots, err := h.standingsService.History(ctx, orgID, divisionID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings history failed", "org_id", orgID, "division_id", divisionID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]standingsSnapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, standingsSnapshotToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecomputeAllStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecomputeAllStandings")
	defer span.End()

	orgID := strings.TrimSpace(r.PathValue("orgID"))

	result, err := h.standingsService.RecomputeAll(ctx, orgID, h.recomputeWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute standings failed", "org_id", orgID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "standings recompute finished",
		"org_id", orgID,
		"divisions", result.DivisionCount,
		"failed", result.FailedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, recomputeAllDTO(result))
}
