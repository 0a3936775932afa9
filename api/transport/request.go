package transport

import "github.com/tasknest/backend/domain"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TodoCreateRequest creates a new todo; completed and priority are optional
// and default to false and low.
type TodoCreateRequest struct {
	Text      string          `json:"text"`
	Completed bool            `json:"completed"`
	Priority  domain.Priority `json:"priority"`
}

// TodoUpdateRequest is a partial patch; absent fields stay unchanged.
type TodoUpdateRequest struct {
	Text      *string          `json:"text"`
	Completed *bool            `json:"completed"`
	Priority  *domain.Priority `json:"priority"`
}
