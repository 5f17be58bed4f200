package registry

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

// Handler wires HTTP endpoints for the catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        auth.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, validator: validator.New()}
}

// MountRoutes registers catalog routes. Reads are public; mutations are
// administrator-only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/universities", h.list)
	r.Get("/universities/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(string(auth.RoleAdmin)))
		r.Post("/universities", h.create)
		r.Put("/universities/{id}", h.update)
		r.Delete("/universities/{id}", h.delete)
	})
}

// listResponse is the paginated listing envelope.
type listResponse struct {
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	Total      int          `json:"total"`
	TotalPages int          `json:"totalPages"`
	Data       []University `json:"data"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	// Filter validation fails the request before any storage query is issued.
	f, err := BuildFilter(r.URL.RawQuery)
	if err != nil {
		var unknown *UnknownFilterError
		if errors.As(err, &unknown) {
			httpx.Error(w, http.StatusBadRequest, unknown.Error())
			return
		}
		httpx.Error(w, http.StatusBadRequest, "Invalid query")
		return
	}

	q := r.URL.Query()
	page := shared.ResolvePage(q.Get("page"), q.Get("limit"))

	result, err := h.service.List(r.Context(), f, page)
	if err != nil {
		h.logger.Error("list universities", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}

	meta := shared.NewPagination(page.Page, page.Limit, result.Total)
	httpx.JSON(w, http.StatusOK, listResponse{
		Page:       meta.Page,
		Limit:      meta.Limit,
		Total:      meta.Total,
		TotalPages: meta.TotalPages,
		Data:       result.Items,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "University not found")
		return
	}
	u, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "University not found")
			return
		}
		h.logger.Error("get university", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type universityRequest struct {
	Name              string      `json:"name" validate:"required"`
	Country           string      `json:"country" validate:"required"`
	AlphaTwoCode      string      `json:"alpha_two_code" validate:"required,len=2"`
	Continent         string      `json:"continent" validate:"required"`
	StateProvince     *string     `json:"state_province"`
	Domains           []string    `json:"domains" validate:"required,min=1"`
	WebPages          []string    `json:"web_pages" validate:"required,min=1"`
	EstablishedYear   int         `json:"established_year" validate:"required"`
	StudentPopulation int         `json:"student_population" validate:"required"`
	ProgramsOffered   []string    `json:"programs_offered" validate:"required,min=1"`
	ContactInfo       contactInfo `json:"contact_info" validate:"required"`
	Latitude          *float64    `json:"latitude"`
	Longitude         *float64    `json:"longitude"`
}

type contactInfo struct {
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

func (req universityRequest) toDomain() *University {
	return &University{
		Name:              req.Name,
		Country:           req.Country,
		AlphaTwoCode:      req.AlphaTwoCode,
		Continent:         req.Continent,
		StateProvince:     req.StateProvince,
		Domains:           req.Domains,
		WebPages:          req.WebPages,
		EstablishedYear:   req.EstablishedYear,
		StudentPopulation: req.StudentPopulation,
		ProgramsOffered:   req.ProgramsOffered,
		ContactInfo:       ContactInfo(req.ContactInfo),
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req universityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u := req.toDomain()
	if err := h.service.Create(r.Context(), u); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			httpx.Error(w, http.StatusBadRequest, "University already exists")
			return
		}
		h.logger.Error("create university", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "University not found")
		return
	}
	var req universityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u := req.toDomain()
	u.ID = id
	if err := h.service.Update(r.Context(), id, u); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "University not found")
			return
		}
		h.logger.Error("update university", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, http.StatusNotFound, "University not found")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, "University not found")
			return
		}
		h.logger.Error("delete university", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "University deleted successfully"})
}
