package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/riskibarqy/frameleague/external/notifier"
	"github.com/riskibarqy/frameleague/internal/config"
	"github.com/riskibarqy/frameleague/internal/domain/dispute"
	"github.com/riskibarqy/frameleague/internal/domain/division"
	"github.com/riskibarqy/frameleague/internal/domain/fixture"
	"github.com/riskibarqy/frameleague/internal/domain/matchevent"
	"github.com/riskibarqy/frameleague/internal/domain/matchtoken"
	"github.com/riskibarqy/frameleague/internal/domain/ruleset"
	"github.com/riskibarqy/frameleague/internal/domain/standings"
	"github.com/riskibarqy/frameleague/internal/domain/team"
	"github.com/riskibarqy/frameleague/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/frameleague/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/frameleague/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/frameleague/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/frameleague/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/frameleague/internal/platform/cache"
	idgen "github.com/riskibarqy/frameleague/internal/platform/id"
	"github.com/riskibarqy/frameleague/internal/platform/logging"
	"github.com/riskibarqy/frameleague/internal/platform/resilience"
	"github.com/riskibarqy/frameleague/internal/usecase"
)

const referenceDataCacheTTL = 30 * time.Second

type repositories struct {
	fixtures  fixture.Repository
	events    matchevent.Repository
	teams     team.Repository
	tokens    matchtoken.Repository
	disputes  dispute.Repository
	divisions division.Repository
	rulesets  ruleset.Repository
	snapshots standings.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned cleanup closes the database handle when one was opened; it is
// safe to call after the server has shut down.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, readiness, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ids := idgen.NewRandomGenerator()

	var eventNotifier usecase.EventNotifier
	if cfg.WebhookEnabled {
		eventNotifier = notifier.NewWebhookPublisher(notifier.WebhookPublisherConfig{
			Endpoint:     cfg.WebhookEndpoint,
			SigningToken: cfg.WebhookSigningToken,
			Timeout:      cfg.WebhookTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenMax,
			},
		}, logger)
	}

	standingsSvc := usecase.NewStandingsService(
		repos.divisions,
		repos.teams,
		repos.fixtures,
		repos.events,
		repos.rulesets,
		repos.snapshots,
		ids,
		logger,
	)
	fixtureSvc := usecase.NewFixtureService(repos.fixtures, logger)
	workflowSvc := usecase.NewMatchWorkflowService(
		repos.fixtures,
		repos.events,
		repos.teams,
		repos.tokens,
		standingsSvc,
		eventNotifier,
		ids,
		logger,
	)
	ledgerSvc := usecase.NewLedgerService(repos.fixtures, repos.events, repos.teams, repos.tokens, ids, logger)
	tokenSvc := usecase.NewTokenService(repos.fixtures, repos.events, repos.tokens, repos.teams, ids, logger)
	disputeSvc := usecase.NewDisputeService(
		repos.fixtures,
		repos.events,
		repos.disputes,
		repos.teams,
		repos.tokens,
		standingsSvc,
		eventNotifier,
		ids,
		logger,
	)

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Config{
			BaseURL:         cfg.AnubisBaseURL,
			IntrospectPath:  cfg.AnubisIntrospectURL,
			AdminKey:        cfg.AnubisAdminKey,
			CacheTTL:        cfg.AnubisCacheTTL,
			CacheMaxEntries: cfg.AnubisCacheMaxEntries,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.AnubisCircuitEnabled,
				FailureThreshold: cfg.AnubisCircuitFailureCount,
				OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
			},
		},
		logger,
	)

	handler := httpapi.NewHandler(
		fixtureSvc,
		workflowSvc,
		ledgerSvc,
		tokenSvc,
		disputeSvc,
		standingsSvc,
		cfg.StandingsRecomputeWorkers,
		readiness,
		logger,
	)
	router := httpapi.NewRouter(
		handler,
		anubisClient,
		logger,
		cfg.SwaggerEnabled,
		cfg.CORSAllowedOrigins,
		cfg.InternalJobToken,
	)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup() //nolint:errcheck
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

// buildRepositories picks the storage backend. An empty DB_URL selects the
// seeded in-memory store, which is how local development and the test
// suites run; anything else is treated as a Postgres DSN.
func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, httpapi.ReadinessProbe, func() error, error) {
	if cfg.DBURL == "" {
		store := memory.NewSeededStore()
		logger.Info("storage configured", "backend", "memory", "seeded", true)

		repos := repositories{
			fixtures:  store.Fixtures(),
			events:    store.Events(),
			teams:     store.Teams(),
			tokens:    store.Tokens(),
			disputes:  store.Disputes(),
			divisions: store.Divisions(),
			rulesets:  store.Rulesets(),
			snapshots: store.Snapshots(),
		}
		return repos, nil, func() error { return nil }, nil
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return repositories{}, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("storage configured", "backend", "postgres", "database", dbNameFromURL(dbURL))

	if cfg.DBBootstrapSeed {
		if err := postgres.BootstrapSeed(context.Background(), db); err != nil {
			_ = db.Close()
			return repositories{}, nil, nil, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.Info("bootstrap seed applied")
	}

	// Divisions, teams and rulesets are read on every standings recompute
	// and change rarely, so they sit behind a short-TTL read-through cache.
	refCache := basecache.NewStore(referenceDataCacheTTL)

	repos := repositories{
		fixtures:  postgres.NewFixtureRepository(db),
		events:    postgres.NewMatchEventRepository(db),
		teams:     cache.NewTeamRepository(postgres.NewTeamRepository(db), refCache),
		tokens:    postgres.NewControlTokenRepository(db),
		disputes:  postgres.NewDisputeRepository(db),
		divisions: cache.NewDivisionRepository(postgres.NewDivisionRepository(db), refCache),
		rulesets:  cache.NewRulesetRepository(postgres.NewRulesetRepository(db), refCache),
		snapshots: postgres.NewStandingsSnapshotRepository(db),
	}
	return repos, readinessProbe(db), db.Close, nil
}

func readinessProbe(db *sqlx.DB) httpapi.ReadinessProbe {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
