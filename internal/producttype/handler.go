// AngelaMos | 2026
// handler.go

package producttype

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/product-types", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireCapability(access.OpReadProducts)).Get("/", h.List)
		r.With(middleware.RequireCapability(access.OpReadProducts)).Get("/{productTypeID}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(access.OpManageProducts))
			r.Post("/", h.Create)
			r.Put("/{productTypeID}", h.Update)
			r.Delete("/{productTypeID}", h.Delete)
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromQuery(r)
	params := ListParams{
		Page:     page.Page,
		PageSize: page.PageSize,
		Search:   r.URL.Query().Get("search"),
	}

	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(items), page.Page, page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(r.Context(), chi.URLParam(r, "productTypeID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, ToResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	p, err := h.service.Update(r.Context(), chi.URLParam(r, "productTypeID"), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, ToResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "productTypeID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}
