package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/anchorhq/anchor/internal/api/domain"
	"github.com/anchorhq/anchor/internal/api/service"
	"github.com/anchorhq/anchor/pkg/httpx"
	"github.com/anchorhq/anchor/pkg/slogx"
)

type TasksHandler struct {
	TaskService *service.TaskService
}

type taskRequest struct {
	ClientID string     `json:"client_id"`
	Title    string     `json:"title"`
	DueDate  *time.Time `json:"due_date"`
	Priority string     `json:"priority"`
}

// HandleCreate godoc
//
//	@Summary	Create a task
//	@Tags		Tasks
//	@Accept		json
//	@Produce	json
//	@Param		request	body		taskRequest	true	"Task fields"
//	@Success	201		{object}	taskResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/tasks [post].
func (h *TasksHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	t, err := h.TaskService.Create(ctx, identityFromCtx(r), domain.Task{
		ClientID: req.ClientID,
		Title:    req.Title,
		DueDate:  req.DueDate,
		Priority: req.Priority,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTaskInput):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "A title and a valid priority are required")
		case errors.Is(err, service.ErrClientNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Linked client not found")
		default:
			slogx.FromContext(ctx).Error("failed to create task", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create task")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(t))
}

// HandleList godoc
//
//	@Summary	List tasks
//	@Tags		Tasks
//	@Produce	json
//	@Param		status	query		string	false	"Filter by status (open or done)"
//	@Success	200		{array}		taskResponse
//	@Failure	400		{object}	httpx.ErrorResponse
//	@Security	BearerAuth
//	@Router		/v1/tasks [get].
func (h *TasksHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := h.TaskService.List(ctx, httpx.TenantIDFromCtx(ctx), r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidTaskInput) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Unknown status filter")
			return
		}
		slogx.FromContext(ctx).Error("failed to list tasks", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to list tasks")
		return
	}

	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleComplete godoc
//
//	@Summary		Complete a task
//	@Description	Marks a task done. Client-linked tasks leave a completion event on the client's timeline.
//	@Tags			Tasks
//	@Produce		json
//	@Param			id	path		string	true	"Task id"
//	@Success		200	{object}	taskResponse
//	@Failure		404	{object}	httpx.ErrorResponse
//	@Failure		409	{object}	httpx.ErrorResponse	"already_done"
//	@Security		BearerAuth
//	@Router			/v1/tasks/{id}/complete [post].
func (h *TasksHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	t, err := h.TaskService.Complete(ctx, identityFromCtx(r), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "Task not found")
		case errors.Is(err, service.ErrTaskAlreadyDone):
			httpx.WriteError(w, http.StatusConflict, "already_done", "This task is already done")
		default:
			slogx.FromContext(ctx).Error("failed to complete task", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to complete task")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toTaskResponse(t))
}
