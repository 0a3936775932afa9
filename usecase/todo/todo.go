// Package todo implements the ownership-scoped CRUD operations. Every call
// takes the authenticated owner id; the repository matches on id and owner in
// one statement, so no operation can observe or touch another user's records.
package todo

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type UseCase struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func New(todos repository.TodoRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		logger: logger,
	}
}

// Create persists a new todo for the owner, applying trim and defaults.
func (uc *UseCase) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil || todo.UserID == "" {
		return nil, domain.ErrInvalidPayload
	}
	todo.Normalize()
	if err := todo.Validate(); err != nil {
		return nil, err
	}
	return uc.todos.Create(ctx, todo)
}

// List returns every todo owned by the caller.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	return uc.todos.ListByOwner(ctx, userID)
}

// Update applies a partial patch to one of the caller's todos. A missing
// record and a foreign record both come back as ErrTodoNotFound.
func (uc *UseCase) Update(ctx context.Context, id, userID string, patch repository.TodoPatch) (*domain.Todo, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidPayload
	}

	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		if trimmed == "" {
			return nil, domain.NewError(domain.ErrCodeInvalid, "todo text is required")
		}
		if len(trimmed) > 200 {
			return nil, domain.NewError(domain.ErrCodeInvalid, "todo text cannot exceed 200 characters")
		}
		patch.Text = &trimmed
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "priority must be low, medium or high")
	}

	return uc.todos.UpdateOwned(ctx, id, userID, patch)
}

// Delete removes one of the caller's todos and returns its prior state.
func (uc *UseCase) Delete(ctx context.Context, id, userID string) (*domain.Todo, error) {
	if id == "" || userID == "" {
		return nil, domain.ErrInvalidPayload
	}
	return uc.todos.DeleteOwned(ctx, id, userID)
}
