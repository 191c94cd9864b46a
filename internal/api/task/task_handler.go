package task

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfcoelho/go-todo-api/internal/api"
	"github.com/mfcoelho/go-todo-api/internal/types"
)

type TaskHandler struct {
	taskService TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "List"))

	tasks, err := h.taskService.List(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list tasks", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, tasks)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Create"))

	var params types.CreateTaskParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Invalid task body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Descrição obrigatória")
		return
	}
	if params.Description == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Descrição obrigatória")
		return
	}

	task, err := h.taskService.Create(ctx, params.Description)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro ao criar tarefa")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, task)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Get"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
		return
	}

	task, err := h.taskService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
			return
		}
		l.ErrorContext(ctx, "Failed to get task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro interno do servidor")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, task)
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
		return
	}

	var params types.UpdateTaskParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Invalid task body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Descrição obrigatória")
		return
	}

	task, err := h.taskService.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
			return
		}
		l.ErrorContext(ctx, "Failed to update task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro ao atualizar tarefa")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Delete"))

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
		return
	}

	if err := h.taskService.Delete(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Tarefa não encontrada")
			return
		}
		l.ErrorContext(ctx, "Failed to delete task", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Erro ao deletar tarefa")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
