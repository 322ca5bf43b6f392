package http

import (
	"context"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/security"
)

type identityKey struct{}

func withIdentity(ctx context.Context, id *security.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller resolved by the auth middleware.
func IdentityFromContext(ctx context.Context) (*security.Identity, error) {
	id, ok := ctx.Value(identityKey{}).(*security.Identity)
	if !ok || id == nil || id.ID == "" {
		return nil, domain.Unauthenticated("user is not authenticated")
	}
	return id, nil
}
