// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
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
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.With(middleware.RequireCapability(access.OpCreateUser)).Post("/register", h.CreateUser)
		r.With(middleware.RequireCapability(access.OpListUsers)).Get("/", h.ListUsers)
		r.With(middleware.RequireCapability(access.OpReadUser)).Get("/by-email", h.GetUserByEmail)
		r.With(middleware.RequireCapability(access.OpListTenantUsers)).Get("/by-customer", h.ListUsersByCustomer)
		r.With(middleware.RequireCapability(access.OpReadUser)).Get("/{userID}", h.GetUser)
		r.With(middleware.RequireCapability(access.OpUpdateUser)).Put("/{userID}", h.UpdateUser)
		r.With(middleware.RequireCapability(access.OpDeleteUser)).Delete("/{userID}", h.DeleteUser)
	})
}

// RegisterAdminRoutes mounts the global admin endpoints. Registration is
// public so the first admin can bootstrap the system.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admins", func(r chi.Router) {
		r.Post("/register", h.RegisterAdmin)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireCapability(access.OpManageAdmins))

			r.Get("/", h.ListAdmins)
			r.Get("/{userID}", h.GetAdmin)
			r.Put("/{userID}", h.UpdateAdmin)
			r.Delete("/{userID}", h.DeleteAdmin)
		})
	})
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req RegisterAdminRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.RegisterGlobalAdmin(r.Context(), req)
	if err != nil {
		var partial *core.PartialFailureError
		if resp != nil && errors.As(err, &partial) {
			core.Partial(w, err, resp)
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.CreateUser(r.Context(), middleware.GetCaller(r.Context()), req)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListUsers(
		r.Context(),
		middleware.GetCaller(r.Context()),
		core.PageFromQuery(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, page.Items, page.Page, page.PageSize, page.Total)
}

func (h *Handler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		core.BadRequest(w, "email is required")
		return
	}

	resp, err := h.service.GetUserByEmail(r.Context(), middleware.GetCaller(r.Context()), email)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListUsersByCustomer(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCaller(r.Context())

	customerID := r.URL.Query().Get("customer_id")
	if customerID == "" && caller.Role == access.RoleCustomer {
		customerID = caller.ID
	}
	if customerID == "" {
		core.BadRequest(w, "customer_id is required")
		return
	}

	page, err := h.service.ListUsersByCustomer(r.Context(), caller, customerID, core.PageFromQuery(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, page.Items, page.Page, page.PageSize, page.Total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetUser(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateUser(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListAdmins(r.Context(), core.PageFromQuery(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, page.Items, page.Page, page.PageSize, page.Total)
}

func (h *Handler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetAdmin(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateAdmin(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateAdmin(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "userID"),
		req,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAdmin(r.Context(), chi.URLParam(r, "userID")); err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.ValidationFailed(w, err)
		return false
	}

	return true
}
