package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campus-atlas/campus-atlas/internal/platform/httpx"
	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// Handler wires HTTP endpoints for account flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, validator: validator.New()}
}

// MountRoutes registers account routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(string(RoleAdmin)))
		r.Put("/approve/{userID}", h.approve)
		r.Get("/users", h.listUsers)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(""))
		r.Put("/me", h.updateProfile)
		r.Delete("/me", h.deleteProfile)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(RequireShared))
		r.Get("/shared-action", h.sharedAction)
	})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			httpx.Error(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.logger.Error("register", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user.ID,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	token, _, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Error(w, http.StatusBadRequest, "Invalid credentials")
		case errors.Is(err, shared.ErrNotApproved):
			httpx.Error(w, http.StatusForbidden, "User not approved")
		default:
			h.logger.Error("login", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"Bearer": "Bearer " + token})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	targetID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "User not found")
		return
	}
	admin := UserFromContext(r.Context())
	if admin == nil {
		httpx.Error(w, http.StatusForbidden, "Access denied")
		return
	}

	user, err := h.service.Approve(r.Context(), targetID, admin.ID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrAlreadyApproved):
			httpx.Error(w, http.StatusBadRequest, "User is already approved")
		default:
			h.logger.Error("approve user", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "User approved successfully",
		"user":    user,
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

type updateProfileRequest struct {
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	current := UserFromContext(r.Context())
	user, err := h.service.UpdateProfile(r.Context(), current.ID, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, "User not found")
		case errors.Is(err, shared.ErrAlreadyExists):
			httpx.Error(w, http.StatusBadRequest, "Email already in use")
		default:
			h.logger.Error("update profile", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Server error")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    user.ID,
	})
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	current := UserFromContext(r.Context())
	if err := h.service.DeleteProfile(r.Context(), current.ID); err != nil {
		h.logger.Error("delete profile", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "User profile deleted successfully"})
}

func (h *Handler) sharedAction(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "This action can be performed by both users and admins"})
}
