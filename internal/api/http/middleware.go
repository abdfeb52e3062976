package http

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/anchorhq/anchor/internal/api/metrics"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

// AuthnMiddleware resolves the bearer token into an identity and stores
// it on the request context. Unverifiable tokens are rejected here so
// handlers never see an unauthenticated request.
func AuthnMiddleware(identity *service.IdentityService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, err := identity.Resolve(ctx, r.Header.Get("Authorization"))
			if err != nil {
				switch {
				case errors.Is(err, service.ErrMissingToken):
					w.Header().Set("WWW-Authenticate", `Bearer realm="anchor"`)
					httpx.WriteError(w, http.StatusUnauthorized,
						"unauthorized", "Missing bearer token")
				case errors.Is(err, service.ErrInvalidToken):
					w.Header().Set("WWW-Authenticate", `Bearer realm="anchor", error="invalid_token"`)
					httpx.WriteError(w, http.StatusUnauthorized,
						"unauthorized", "Invalid or expired token")
				default:
					slogx.FromContext(ctx).Error("identity resolution failed", "error", err)
					httpx.WriteError(w, http.StatusInternalServerError,
						"server_error", "Failed to authenticate request")
				}
				return
			}

			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, id.ID)
			ctx = context.WithValue(ctx, httpx.CtxKeyEmail, id.Email)
			ctx = context.WithValue(ctx, httpx.CtxKeyTenantID, id.TenantID)
			ctx = context.WithValue(ctx, httpx.CtxKeyRole, id.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAnyRole rejects requests whose resolved role is not in the
// allow-list.
func RequireAnyRole(roles ...string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, httpx.RoleFromCtx(r.Context())) {
				httpx.WriteError(w, http.StatusForbidden,
					"forbidden", "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireTenant rejects identities that resolved without a tenant
// claim. Users mid-onboarding hit this until they accept an invitation
// or finish agency setup.
func RequireTenant() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpx.TenantIDFromCtx(r.Context()) == "" {
				httpx.WriteError(w, http.StatusForbidden,
					"no_tenant", "Your account is not linked to an agency yet")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Observe records request count and latency under a stable route label.
func Observe(m *metrics.APIMetrics, route string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.status)).Inc()
			m.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter

	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}
