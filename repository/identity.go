package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// IdentityCache is a best-effort cache of resolved users in front of the
// credential store. A failing cache must never fail a request; callers fall
// back to the repository on any error.
type IdentityCache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Invalidate(ctx context.Context, userID string) error
}
