package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Readyz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedFixtureRoutes(mux, handler, verifier)
	registerAuthorizedTokenRoutes(mux, handler, verifier)
	registerAuthorizedDisputeRoutes(mux, handler, verifier)
	registerAuthorizedStandingsRoutes(mux, handler, verifier)
}

func registerAuthorizedFixtureRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/orgs/{orgID}/divisions/{divisionID}/fixtures", RequireAuth(verifier, http.HandlerFunc(handler.ListFixturesByDivision)))
	mux.Handle("GET /v1/orgs/{orgID}/fixtures/{fixtureID}", RequireAuth(verifier, http.HandlerFunc(handler.GetFixture)))
	mux.Handle("GET /v1/orgs/{orgID}/fixtures/{fixtureID}/events", RequireAuth(verifier, http.HandlerFunc(handler.ListFixtureEvents)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/events", RequireAuth(verifier, http.HandlerFunc(handler.AppendFixtureEvent)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/result/submit", RequireAuth(verifier, http.HandlerFunc(handler.SubmitResult)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/result/approve", RequireAuth(verifier, http.HandlerFunc(handler.ApproveResult)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/result/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectResult)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/result/complete", RequireAuth(verifier, http.HandlerFunc(handler.CompleteFixture)))
}

func registerAuthorizedTokenRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/orgs/{orgID}/fixtures/{fixtureID}/tokens", RequireAuth(verifier, http.HandlerFunc(handler.ListControlTokens)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/tokens", RequireAuth(verifier, http.HandlerFunc(handler.IssueControlToken)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/tokens/transfer", RequireAuth(verifier, http.HandlerFunc(handler.TransferControlToken)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/tokens/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptControlToken)))
}

func registerAuthorizedDisputeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/orgs/{orgID}/fixtures/{fixtureID}/disputes", RequireAuth(verifier, http.HandlerFunc(handler.ListDisputes)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/disputes", RequireAuth(verifier, http.HandlerFunc(handler.OpenDispute)))
	mux.Handle("POST /v1/orgs/{orgID}/fixtures/{fixtureID}/disputes/{disputeID}/resolve", RequireAuth(verifier, http.HandlerFunc(handler.ResolveDispute)))
}

func registerAuthorizedStandingsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/orgs/{orgID}/divisions/{divisionID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.GetStandings)))
	mux.Handle("GET /v1/orgs/{orgID}/divisions/{divisionID}/standings/history", RequireAuth(verifier, http.HandlerFunc(handler.ListStandingsHistory)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/orgs/{orgID}/standings/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecomputeAllStandings)))
}
