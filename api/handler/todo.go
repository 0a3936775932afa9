package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tasknest/backend/api/transport"
	"github.com/tasknest/backend/domain"
	"github.com/tasknest/backend/internal/middleware"
	"github.com/tasknest/backend/pkg/httpcontext"
	"github.com/tasknest/backend/repository"
	todoUC "github.com/tasknest/backend/usecase/todo"
)

type TodoHandler struct {
	baseHandler
	uc *todoUC.UseCase
}

func NewTodoHandler(uc *todoUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// Create adds a todo owned by the authenticated caller.
func (h *TodoHandler) Create(ctx *fasthttp.RequestCtx) {
	user := h.owner(ctx)
	if user == nil {
		return
	}

	var req transport.TodoCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	todo := &domain.Todo{
		UserID:    user.ID,
		Text:      req.Text,
		Completed: req.Completed,
		Priority:  req.Priority,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, todo)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// Fetch lists every todo owned by the authenticated caller.
func (h *TodoHandler) Fetch(ctx *fasthttp.RequestCtx) {
	user := h.owner(ctx)
	if user == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	todos, err := h.uc.List(stdCtx, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, todos)
}

// Update patches one of the caller's todos. Ids belonging to other users are
// reported as not found.
func (h *TodoHandler) Update(ctx *fasthttp.RequestCtx) {
	user := h.owner(ctx)
	if user == nil {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id"))
		return
	}

	var req transport.TodoUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload"))
		return
	}

	patch := repository.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
		Priority:  req.Priority,
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, id, user.ID, patch)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// Delete removes one of the caller's todos and returns its prior state.
func (h *TodoHandler) Delete(ctx *fasthttp.RequestCtx) {
	user := h.owner(ctx)
	if user == nil {
		return
	}

	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing todo id"))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	deleted, err := h.uc.Delete(stdCtx, id, user.ID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, deleted)
}

func (h *TodoHandler) owner(ctx *fasthttp.RequestCtx) *domain.User {
	user := middleware.AuthenticatedUser(ctx)
	if user == nil {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.NewError(string(domain.ErrCodeUnauthorized), "authentication required"))
	}
	return user
}
