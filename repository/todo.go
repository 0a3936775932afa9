package repository

import (
	"context"

	"github.com/tasknest/backend/domain"
)

// TodoPatch carries a partial update; nil fields are left untouched.
type TodoPatch struct {
	Text      *string
	Completed *bool
	Priority  *domain.Priority
}

// TodoRepository persists todo records. Update and Delete match on both id
// and owner in a single statement so the ownership check and the mutation
// cannot be separated by a concurrent writer.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.Todo, error)
	UpdateOwned(ctx context.Context, id, userID string, patch TodoPatch) (*domain.Todo, error)
	DeleteOwned(ctx context.Context, id, userID string) (*domain.Todo, error)
}
