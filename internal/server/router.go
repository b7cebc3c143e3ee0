package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/claritytracking/claritytracking/internal/handlers"
	"github.com/claritytracking/claritytracking/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Websites  *handlers.WebsiteHandler
	Dashboard *handlers.DashboardHandler
	Ingest    *handlers.IngestHandler
	Waitlist  *handlers.WaitlistHandler
	Health    *handlers.HealthHandler
}

// NewRouter constructs the ServeMux with all API routes registered.
// Method routing keeps dispatch in the patterns; {id} segments carry the
// website ID.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("POST /api/register", h.Auth.Register)
	mux.HandleFunc("POST /api/login", h.Auth.Login)
	mux.HandleFunc("POST /api/waitlist", h.Waitlist.Join)

	// Snippet ingestion, authenticated by tracking token
	mux.HandleFunc("POST /api/ingest/event", h.Ingest.IngestEvent)

	// Dashboard endpoints, authenticated by user session
	mux.HandleFunc("GET /api/users/me", authMW.RequireUser(h.Auth.Me))
	mux.HandleFunc("POST /api/websites", authMW.RequireUser(h.Websites.CreateWebsite))
	mux.HandleFunc("GET /api/websites", authMW.RequireUser(h.Websites.ListWebsites))
	mux.HandleFunc("POST /api/websites/{id}/connections", authMW.RequireUser(h.Websites.CreateConnection))
	mux.HandleFunc("GET /api/websites/{id}/connections", authMW.RequireUser(h.Websites.ListConnections))
	mux.HandleFunc("GET /api/websites/{id}/health", authMW.RequireUser(h.Dashboard.Health))
	mux.HandleFunc("GET /api/websites/{id}/alerts", authMW.RequireUser(h.Dashboard.Alerts))
	mux.HandleFunc("GET /api/websites/{id}/duplicates", authMW.RequireUser(h.Dashboard.Duplicates))

	// Operational endpoints
	mux.HandleFunc("GET /healthz", h.Health.Liveness)
	mux.HandleFunc("GET /readyz", h.Health.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(middleware.CORS(allowedOrigins)(mux))
}
