package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/repository"
)

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO todos (id, user_id, text, completed, priority)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Text,
		todo.Completed,
		string(todo.Priority),
	).Scan(&todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}

	return todo, nil
}

func (r *todoRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Todo, error) {
	const query = `
	SELECT id, user_id, text, completed, priority, created_at, updated_at
	FROM todos
	WHERE user_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

// UpdateOwned applies the patch in one statement guarded by both id and
// owner, so the ownership check cannot race a concurrent delete.
func (r *todoRepository) UpdateOwned(ctx context.Context, id, userID string, patch repository.TodoPatch) (*domain.Todo, error) {
	const query = `
	UPDATE todos
	SET text = COALESCE($3, text),
		completed = COALESCE($4, completed),
		priority = COALESCE($5, priority),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, text, completed, priority, created_at, updated_at
	`

	var priority *string
	if patch.Priority != nil {
		p := string(*patch.Priority)
		priority = &p
	}

	row := r.pool.QueryRow(ctx, query, id, userID, patch.Text, patch.Completed, priority)
	return scanTodo(row)
}

// DeleteOwned removes the record and returns its prior state, matching on
// id and owner in a single round trip.
func (r *todoRepository) DeleteOwned(ctx context.Context, id, userID string) (*domain.Todo, error) {
	const query = `
	DELETE FROM todos
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, text, completed, priority, created_at, updated_at
	`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTodo(row)
}

func scanTodo(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Todo, error) {
	var todo domain.Todo
	var priority string

	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Text,
		&todo.Completed,
		&priority,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	todo.Priority = domain.Priority(priority)
	return &todo, nil
}
