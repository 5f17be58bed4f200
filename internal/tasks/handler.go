package tasks

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campus-atlas/campus-atlas/internal/auth"
	"github.com/campus-atlas/campus-atlas/internal/platform/httpx"
	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// Handler wires HTTP endpoints for todos.
type Handler struct {
	logger    *slog.Logger
	repo      Repository
	mw        auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, mw: mw, validator: validator.New()}
}

// MountRoutes registers todo routes. Creation requires the plain user role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/todos", h.list)
	r.Get("/todos/{id}", h.get)
	r.Put("/todos/{id}", h.update)
	r.Delete("/todos/{id}", h.delete)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(string(auth.RoleUser)))
		r.Post("/todos", h.create)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	todos, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list todos", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if todos == nil {
		todos = []Todo{}
	}
	httpx.JSON(w, http.StatusOK, todos)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Todo not found")
		return
	}
	t, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("get todo", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

type todoRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req todoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	t := &Todo{Title: req.Title, Description: req.Description}
	if err := h.repo.Create(r.Context(), t); err != nil {
		h.logger.Error("create todo", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Todo not found")
		return
	}
	var req todoRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	t := &Todo{ID: id, Title: req.Title, Description: req.Description, Completed: req.Completed}
	if err := h.repo.Update(r.Context(), id, t); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("update todo", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "Todo not found")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.logger.Error("delete todo", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}
