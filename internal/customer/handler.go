// AngelaMos | 2026
// handler.go

package customer

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
	guard := middleware.RequireCapability

	r.Route("/customers", func(r chi.Router) {
		r.Use(authenticator)

		r.With(guard(access.OpRegisterCustomer)).Post("/register", h.Register)
		r.With(guard(access.OpListCustomers)).Get("/", h.List)

		r.Route("/{customerID}", func(r chi.Router) {
			r.With(guard(access.OpReadCustomer)).Get("/", h.Get)
			r.With(guard(access.OpUpdateCustomer)).Put("/", h.Update)
			r.With(guard(access.OpDeleteCustomer)).Delete("/", h.Delete)

			r.Group(func(r chi.Router) {
				r.Use(guard(access.OpManageSites))
				r.Post("/sites", h.AddSite)
				r.Put("/sites/{siteID}", h.UpdateSite)
			})

			r.Group(func(r chi.Router) {
				r.Use(guard(access.OpManageDevices))
				r.Post("/sites/{siteID}/devices", h.AddDevice)
				r.Put("/sites/{siteID}/devices/{deviceID}", h.UpdateDevice)
			})

			r.Group(func(r chi.Router) {
				r.Use(guard(access.OpManageServices))
				r.Post("/digital-services", h.AddDigitalService)
				r.Put("/digital-services/{serviceID}", h.UpdateDigitalService)
				r.Post("/digital-services/{serviceID}/notification-users", h.AddNotificationUsers)
			})

			r.With(guard(access.OpManageMembers)).Post("/customer-users", h.AddCustomerUsers)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.RegisterCustomer(r.Context(), middleware.GetCaller(r.Context()), req)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListCustomers(
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetCustomer(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateCustomer(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteCustomer(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddSite(w http.ResponseWriter, r *http.Request) {
	var req SiteRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddSite(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	var req SiteRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateSite(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		chi.URLParam(r, "siteID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) AddDevice(w http.ResponseWriter, r *http.Request) {
	var req DeviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddDevice(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		chi.URLParam(r, "siteID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) UpdateDevice(w http.ResponseWriter, r *http.Request) {
	var req DeviceRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateDevice(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		chi.URLParam(r, "siteID"),
		chi.URLParam(r, "deviceID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) AddDigitalService(w http.ResponseWriter, r *http.Request) {
	var req DigitalServiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddDigitalService(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) UpdateDigitalService(w http.ResponseWriter, r *http.Request) {
	var req DigitalServiceRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.UpdateDigitalService(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		chi.URLParam(r, "serviceID"),
		req,
	)
	h.respond(w, resp, err)
}

func (h *Handler) AddNotificationUsers(w http.ResponseWriter, r *http.Request) {
	var req EmailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddNotificationUsers(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		chi.URLParam(r, "serviceID"),
		req.Emails,
	)
	h.respond(w, resp, err)
}

func (h *Handler) AddCustomerUsers(w http.ResponseWriter, r *http.Request) {
	var req EmailsRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.AddCustomerUsers(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "customerID"),
		req.Emails,
	)
	h.respond(w, resp, err)
}

func (h *Handler) respond(w http.ResponseWriter, resp *CustomerResponse, err error) {
	if err != nil {
		core.JSONError(w, err)
		return
	}
	core.OK(w, resp)
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
