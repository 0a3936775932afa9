package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// UserRepository persists account records. GetByEmailWithPassword is the only
// read that includes the stored credential hash; every other projection omits it.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	SaveToken(ctx context.Context, id, token string) error
}
