package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyTenantID ctxKey = "tenant_id"
	CtxKeyRole     ctxKey = "role"
	CtxKeyEmail    ctxKey = "email"
)

// UserIDFromCtx returns the authenticated user's id, or "" when the
// request is unauthenticated.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// TenantIDFromCtx returns the resolved tenant id for the request. An
// empty value means the identity carries no tenant claim; tenant-scoped
// handlers must reject such requests.
func TenantIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyTenantID).(string); ok {
		return v
	}
	return ""
}

// RoleFromCtx returns the resolved role for the request, or "".
func RoleFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}

// EmailFromCtx returns the authenticated user's verified email, or "".
func EmailFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyEmail).(string); ok {
		return v
	}
	return ""
}
