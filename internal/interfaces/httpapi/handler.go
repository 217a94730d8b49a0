package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
	"github.com/riskibarqy/frameleague/internal/usecase"
)

// ReadinessProbe reports whether backing stores are reachable. A nil probe
// means the API has no external dependencies to wait for.
type ReadinessProbe func(ctx context.Context) error

type Handler struct {
	fixtureService  *usecase.FixtureService
	workflowService *usecase.MatchWorkflowService
	ledgerService   *usecase.LedgerService
	tokenService    *usecase.TokenService
	disputeService  *usecase.DisputeService
	standingsService *usecase.StandingsService
	recomputeWorkers int
	readiness        ReadinessProbe
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	fixtureService *usecase.FixtureService,
	workflowService *usecase.MatchWorkflowService,
	ledgerService *usecase.LedgerService,
	tokenService *usecase.TokenService,
	disputeService *usecase.DisputeService,
	standingsService *usecase.StandingsService,
	recomputeWorkers int,
	readiness ReadinessProbe,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		fixtureService:   fixtureService,
		workflowService:  workflowService,
		ledgerService:    ledgerService,
		tokenService:     tokenService,
		disputeService:   disputeService,
		standingsService: standingsService,
		recomputeWorkers: recomputeWorkers,
		readiness:        readiness,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if h.readiness != nil {
		if err := h.readiness(ctx); err != nil {
			h.logger.WarnContext(ctx, "readiness probe failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) decodeBody(ctx context.Context, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}
