package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"

	_ "github.com/anchorhq/anchor/api" // Swagger docs
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	metrics      *metrics.APIMetrics

	store             store.Store
	IdentityService   *service.IdentityService
	InvitationService *service.InvitationService
	TenantService     *service.TenantService
	ClientService     *service.ClientService
	PolicyService     *service.PolicyService
	TimelineService   *service.TimelineService
	TaskService       *service.TaskService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	m *metrics.APIMetrics,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		metrics:      m,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTenants()
	r.registerInvitations()
	r.registerClients()
	r.registerPolicies()
	r.registerTimeline()
	r.registerTasks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Anchor API
//	@version		0.1.0
//	@description	Multi-tenant CRM backend for insurance agencies: clients, policies, tasks, activity timelines, team invitations, and a daily digest.
//	@description
//	@description				Authentication is delegated to a GoTrue-compatible identity provider; requests carry the provider's access token as a bearer token.
//
//	@contact.name				Anchor Team
//	@contact.url				https://github.com/anchorhq/anchor
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// secured wraps a handler with the standard tenant-scoped chain:
// authentication, tenant requirement, role allow-list, rate limiting
// and metrics.
func (r *Router) secured(h http.Handler, route string, limit httpx.RateLimitConfig, roles ...string) http.Handler {
	mws := []httpx.Middleware{
		AuthnMiddleware(r.IdentityService),
		RequireTenant(),
	}
	if len(roles) > 0 {
		mws = append(mws, RequireAnyRole(roles...))
	}
	mws = append(mws,
		httpx.RateLimitByUser(limit),
		Observe(r.metrics, route),
	)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerTenants() {
	h := &TenantsHandler{TenantService: r.TenantService}

	r.Mux.Handle("GET /v1/tenants/current",
		r.secured(http.HandlerFunc(h.HandleCurrent), "/v1/tenants/current", httpx.LenientLimit))

	// Agency settings are admin territory.
	r.Mux.Handle("PUT /v1/tenants/current",
		r.secured(http.HandlerFunc(h.HandleUpdate), "/v1/tenants/current", httpx.ModerateLimit,
			domain.RoleAdmin))
}

func (r *Router) registerInvitations() {
	h := &InvitationsHandler{InvitationService: r.InvitationService, Metrics: r.metrics}

	r.Mux.Handle("POST /v1/invitations",
		r.secured(http.HandlerFunc(h.HandleCreate), "/v1/invitations", httpx.ModerateLimit,
			domain.RoleAdmin))
	r.Mux.Handle("GET /v1/invitations",
		r.secured(http.HandlerFunc(h.HandleList), "/v1/invitations", httpx.LenientLimit,
			domain.RoleAdmin))
	r.Mux.Handle("DELETE /v1/invitations/{id}",
		r.secured(http.HandlerFunc(h.HandleRevoke), "/v1/invitations/{id}", httpx.ModerateLimit,
			domain.RoleAdmin))
	r.Mux.Handle("POST /v1/invitations/{id}/resend",
		r.secured(http.HandlerFunc(h.HandleResend), "/v1/invitations/{id}/resend", httpx.StrictLimit,
			domain.RoleAdmin))

	// Accept is authenticated but deliberately not tenant-scoped: the
	// caller has no tenant claim until the accept completes.
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			AuthnMiddleware(r.IdentityService),
			httpx.RateLimitByUser(httpx.StrictLimit),
			Observe(r.metrics, "/v1/invitations/accept"),
		))
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	r.Mux.Handle("POST /v1/clients",
		r.secured(http.HandlerFunc(h.HandleCreate), "/v1/clients", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("GET /v1/clients",
		r.secured(http.HandlerFunc(h.HandleList), "/v1/clients", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("GET /v1/clients/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), "/v1/clients/{id}", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("PUT /v1/clients/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), "/v1/clients/{id}", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("DELETE /v1/clients/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), "/v1/clients/{id}", httpx.ModerateLimit,
			domain.RoleAdmin))
	r.Mux.Handle("POST /v1/clients/{id}/convert",
		r.secured(http.HandlerFunc(h.HandleConvert), "/v1/clients/{id}/convert", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
}

func (r *Router) registerPolicies() {
	h := &PoliciesHandler{PolicyService: r.PolicyService}

	r.Mux.Handle("POST /v1/clients/{id}/policies",
		r.secured(http.HandlerFunc(h.HandleCreateForClient), "/v1/clients/{id}/policies", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("GET /v1/clients/{id}/policies",
		r.secured(http.HandlerFunc(h.HandleListForClient), "/v1/clients/{id}/policies", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("GET /v1/policies/{id}",
		r.secured(http.HandlerFunc(h.HandleGet), "/v1/policies/{id}", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("PUT /v1/policies/{id}",
		r.secured(http.HandlerFunc(h.HandleUpdate), "/v1/policies/{id}", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("DELETE /v1/policies/{id}",
		r.secured(http.HandlerFunc(h.HandleDelete), "/v1/policies/{id}", httpx.ModerateLimit,
			domain.RoleAdmin))
}

func (r *Router) registerTimeline() {
	h := &TimelineHandler{TimelineService: r.TimelineService}

	r.Mux.Handle("GET /v1/clients/{id}/timeline",
		r.secured(http.HandlerFunc(h.HandleList), "/v1/clients/{id}/timeline", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("POST /v1/clients/{id}/notes",
		r.secured(http.HandlerFunc(h.HandleAddNote), "/v1/clients/{id}/notes", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
}

func (r *Router) registerTasks() {
	h := &TasksHandler{TaskService: r.TaskService}

	r.Mux.Handle("POST /v1/tasks",
		r.secured(http.HandlerFunc(h.HandleCreate), "/v1/tasks", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("GET /v1/tasks",
		r.secured(http.HandlerFunc(h.HandleList), "/v1/tasks", httpx.LenientLimit,
			domain.RoleAdmin, domain.RoleAgent))
	r.Mux.Handle("POST /v1/tasks/{id}/complete",
		r.secured(http.HandlerFunc(h.HandleComplete), "/v1/tasks/{id}/complete", httpx.ModerateLimit,
			domain.RoleAdmin, domain.RoleAgent))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
