package domain

import (
	"strings"
	"time"
)

// Priority classifies a todo item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const todoTextMaxLen = 200

// Todo represents a single task owned by exactly one user. Ownership is set
// at creation and never changes.
type Todo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Normalize trims the text and fills enum defaults before persistence.
func (t *Todo) Normalize() {
	if t == nil {
		return
	}
	t.Text = strings.TrimSpace(t.Text)
	if t.Priority == "" {
		t.Priority = PriorityLow
	}
}

// Validate enforces the todo field constraints after Normalize.
func (t *Todo) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if t.Text == "" {
		return NewError(ErrCodeInvalid, "todo text is required")
	}
	if len(t.Text) > todoTextMaxLen {
		return NewError(ErrCodeInvalid, "todo text cannot exceed 200 characters")
	}
	if !t.Priority.Valid() {
		return NewError(ErrCodeInvalid, "priority must be low, medium or high")
	}
	return nil
}
