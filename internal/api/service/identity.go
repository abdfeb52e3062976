package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/store"
	"github.com/anchorhq/anchor/pkg/authx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// IdentityService resolves a bearer token into a request identity. The
// provider owns token verification; this service owns working out which
// tenant and role the verified user acts as.
type IdentityService struct {
	Provider authx.Provider
	Store    store.Store
}

// Resolve verifies the Authorization header and resolves tenant and role
// claims. Claim sources are consulted in priority order, and a source
// only fills fields the earlier sources left empty:
//
//  1. Custom claims stamped into the signed token payload at login.
//  2. The provider's user-metadata blob.
//  3. The persisted user record.
//  4. Role heuristic: a user whose metadata carries an invitation id
//     joined by invite and defaults to agent; everyone else is a
//     self-signed-up admin.
func (s *IdentityService) Resolve(ctx context.Context, authHeader string) (domain.Identity, error) {
	log := slogx.FromContext(ctx)

	// 1. Extract the bearer token.
	token, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || token == "" {
		return domain.Identity{}, ErrMissingToken
	}

	// 2. Verify server-side with the provider.
	user, err := s.Provider.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, authx.ErrInvalidToken) {
			return domain.Identity{}, ErrInvalidToken
		}
		log.Error("token verification failed", slog.Any("error", err))
		return domain.Identity{}, err
	}

	identity := domain.Identity{
		ID:    user.ID,
		Email: user.Email,
	}

	// 3. Signed payload claims win when present.
	if claims, ok := authx.DecodeUnverified(token); ok {
		identity.TenantID = claims.TenantID
		identity.Role = claims.UserRole
	}

	// 4. Fall back to user-metadata for whatever is still empty.
	if identity.TenantID == "" {
		identity.TenantID = authx.MetadataString(user.Metadata, "tenant_id")
	}
	if identity.Role == "" {
		identity.Role = authx.MetadataString(user.Metadata, "user_role")
	}
	if identity.Role == "" {
		identity.Role = authx.MetadataString(user.Metadata, "role")
	}

	// 5. Fall back to the persisted user record, but only hit the store
	// when something is still unresolved.
	if identity.TenantID == "" || identity.Role == "" {
		record, err := s.Store.Users().GetUserByID(ctx, user.ID)
		switch {
		case err == nil:
			if identity.TenantID == "" {
				identity.TenantID = record.TenantID
			}
			if identity.Role == "" {
				identity.Role = record.Role
			}
		case errors.Is(err, store.ErrNotFound):
			// Mid-onboarding; nothing persisted yet.
		default:
			log.Error("failed to load user record", slog.Any("error", err))
			return domain.Identity{}, err
		}
	}

	// 6. Role heuristic of last resort.
	if identity.Role == "" {
		if authx.MetadataHas(user.Metadata, "invitation_id") {
			identity.Role = domain.RoleAgent
		} else {
			identity.Role = domain.RoleAdmin
		}
	}

	log.Debug("identity resolved",
		slog.String("user_id", identity.ID),
		slog.String("tenant_id", identity.TenantID),
		slog.String("role", identity.Role),
	)

	return identity, nil
}
