// AngelaMos | 2026
// service.go

package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/config"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/role"
	"github.com/carterperez-dev/iot-admin/internal/user"
)

const (
	stepCreateCustomer = "create customer"
	stepTenantAccount  = "create tenant account"
	stepDemoAccount    = "create demo account"
	stepDeleteCustomer = "soft-delete customer"
	stepDeleteTenant   = "soft-delete tenant account"
	stepDeleteMembers  = "soft-delete tenant members"
)

// AccountProvisioner manages the accounts tied to a customer.
type AccountProvisioner interface {
	EmailTaken(ctx context.Context, email string) (bool, error)
	ProvisionAccount(ctx context.Context, req user.ProvisionRequest) (*user.UserResponse, error)
	SoftDeleteAccount(ctx context.Context, id string) error
	SoftDeleteTenantMembers(ctx context.Context, customerID string) (int64, error)
}

type RoleResolver interface {
	GetOrCreate(ctx context.Context, name access.Role, description string) (*role.Role, error)
	Resolve(ctx context.Context, name access.Role) (*role.Role, error)
}

// ProductCatalog reports whether devices may reference a product type.
type ProductCatalog interface {
	Exists(ctx context.Context, name string) (bool, error)
}

type Service struct {
	repo     Repository
	accounts AccountProvisioner
	roles    RoleResolver
	products ProductCatalog
	cfg      config.ProvisionConfig
}

func NewService(
	repo Repository,
	accounts AccountProvisioner,
	roles RoleResolver,
	products ProductCatalog,
	cfg config.ProvisionConfig,
) *Service {
	return &Service{
		repo:     repo,
		accounts: accounts,
		roles:    roles,
		products: products,
		cfg:      cfg,
	}
}

// DemoEmail is the address of the demo account created for a customer.
func (s *Service) DemoEmail(customerEmail string) string {
	return s.cfg.DemoEmailPrefix + customerEmail
}

// RegisterCustomer creates the aggregate, the tenant account and the demo
// account. Nothing is written until every precondition holds. A failure
// after the aggregate exists is reported as a partial failure.
func (s *Service) RegisterCustomer(
	ctx context.Context,
	caller access.Caller,
	req RegisterCustomerRequest,
) (_ *Registration, err error) {
	ctx, span := core.StartSpan(ctx, "customer.register")
	defer func() { core.EndSpan(span, err) }()

	if !caller.Can(access.OpRegisterCustomer) {
		return nil, core.ForbiddenError("")
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, core.ConflictError("customer already registered")
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("register customer: %w", err)
	}

	demoEmail := s.DemoEmail(req.Email)
	for _, email := range []string{req.Email, demoEmail} {
		taken, err := s.accounts.EmailTaken(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("register customer: %w", err)
		}
		if taken {
			return nil, core.ConflictError(fmt.Sprintf("account %s already exists", email))
		}
	}

	demoRoleName, err := access.ParseRole(s.cfg.DemoRole)
	if err != nil {
		return nil, fmt.Errorf("demo role: %w", err)
	}
	demoRole, err := s.roles.Resolve(ctx, demoRoleName)
	if err != nil {
		return nil, err
	}

	if err := s.checkDevices(ctx, req.Sites); err != nil {
		return nil, err
	}

	customerRole, err := s.roles.GetOrCreate(ctx, access.RoleCustomer, "")
	if err != nil {
		return nil, fmt.Errorf("register customer: %w", err)
	}

	c := req.toCustomer()
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("customer already registered")
		}
		return nil, fmt.Errorf("register customer: %w", err)
	}

	span.SetAttributes(attribute.String("customer.id", c.ID))
	core.StepCompleted(ctx, stepCreateCustomer)

	result := &Registration{Customer: ToCustomerResponse(c)}
	completed := []string{stepCreateCustomer}

	tenant, err := s.accounts.ProvisionAccount(ctx, user.ProvisionRequest{
		ID:        c.ID,
		Email:     c.Email,
		Password:  req.Password,
		FirstName: c.Name,
		RoleID:    customerRole.ID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "tenant account not created", "customer_id", c.ID, "error", err)
		return result, core.NewPartialFailure(stepTenantAccount, completed, err)
	}
	result.TenantUser = tenant
	completed = append(completed, stepTenantAccount)
	core.StepCompleted(ctx, stepTenantAccount)

	customerID := c.ID
	demo, err := s.accounts.ProvisionAccount(ctx, user.ProvisionRequest{
		Email:      demoEmail,
		Password:   s.cfg.DemoPassword,
		FirstName:  s.cfg.DemoFirstName,
		LastName:   s.cfg.DemoLastName,
		RoleID:     demoRole.ID,
		CustomerID: &customerID,
	})
	if err != nil {
		slog.ErrorContext(ctx, "demo account not created", "customer_id", c.ID, "error", err)
		return result, core.NewPartialFailure(stepDemoAccount, completed, err)
	}
	result.DemoUser = demo

	slog.InfoContext(ctx, "customer registered", "customer_id", c.ID)

	return result, nil
}

func (s *Service) UpdateCustomer(
	ctx context.Context,
	caller access.Caller,
	id string,
	req UpdateCustomerRequest,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpUpdateCustomer, id, func(c *Customer) error {
		if req.Version != nil && *req.Version != c.Version {
			return core.ConcurrencyError("customer")
		}

		if req.Email != nil && *req.Email != c.Email {
			if _, err := s.repo.GetByEmail(ctx, *req.Email); err == nil {
				return core.ConflictError("customer already registered")
			} else if !errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("update customer: %w", err)
			}
			c.Email = *req.Email
		}

		if req.Name != nil {
			c.Name = *req.Name
		}
		if req.Phone != nil {
			c.Phone = *req.Phone
		}
		if req.City != nil {
			c.City = *req.City
		}
		if req.Region != nil {
			c.Region = *req.Region
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		return nil
	})
}

// DeleteCustomer soft deletes the customer, then its tenant account, then
// every member. Later steps still run when the tenant account is missing.
func (s *Service) DeleteCustomer(ctx context.Context, caller access.Caller, id string) (err error) {
	ctx, span := core.StartSpan(ctx, "customer.delete", attribute.String("customer.id", id))
	defer func() { core.EndSpan(span, err) }()

	if !caller.Can(access.OpDeleteCustomer) {
		return core.ForbiddenError("")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFound(err, "customer")
	}
	completed := []string{stepDeleteCustomer}
	core.StepCompleted(ctx, stepDeleteCustomer)

	tenantErr := s.accounts.SoftDeleteAccount(ctx, id)
	if tenantErr == nil {
		completed = append(completed, stepDeleteTenant)
	}

	removed, err := s.accounts.SoftDeleteTenantMembers(ctx, id)
	if err != nil {
		if tenantErr != nil {
			return core.NewPartialFailure(stepDeleteTenant, completed, errors.Join(tenantErr, err))
		}
		return core.NewPartialFailure(stepDeleteMembers, completed, err)
	}
	completed = append(completed, stepDeleteMembers)

	if tenantErr != nil {
		slog.WarnContext(ctx, "customer deleted without tenant account",
			"customer_id", id, "members_removed", removed, "error", tenantErr)
		return core.NewPartialFailure(stepDeleteTenant, completed, tenantErr)
	}

	slog.InfoContext(ctx, "customer deleted", "customer_id", id, "members_removed", removed)
	return nil
}

// GetCustomer returns the aggregate. A Customer caller may only read its
// own tenant.
func (s *Service) GetCustomer(ctx context.Context, caller access.Caller, id string) (*CustomerResponse, error) {
	if !caller.Can(access.OpReadCustomer) {
		return nil, core.ForbiddenError("")
	}
	if caller.Role != access.RoleAdmin && caller.ID != id {
		return nil, core.ForbiddenError("")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}

	resp := ToCustomerResponse(c)
	return &resp, nil
}

func (s *Service) ListCustomers(
	ctx context.Context,
	caller access.Caller,
	page core.PageRequest,
) (*core.Page[CustomerResponse], error) {
	if !caller.Can(access.OpListCustomers) {
		return nil, core.ForbiddenError("")
	}

	page = page.Normalize()
	customers, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	return &core.Page[CustomerResponse]{
		Items:    ToCustomerResponseList(customers),
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *Service) AddSite(
	ctx context.Context,
	caller access.Caller,
	id string,
	req SiteRequest,
) (*CustomerResponse, error) {
	if err := authorize(caller, access.OpManageSites); err != nil {
		return nil, err
	}
	if err := s.checkDevices(ctx, []SiteRequest{req}); err != nil {
		return nil, err
	}

	return s.mutate(ctx, caller, access.OpManageSites, id, func(c *Customer) error {
		c.Sites = append(c.Sites, req.toSite())
		return nil
	})
}

// UpdateSite changes the site's own fields. Devices are managed through
// the device operations.
func (s *Service) UpdateSite(
	ctx context.Context,
	caller access.Caller,
	id, siteID string,
	req SiteRequest,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpManageSites, id, func(c *Customer) error {
		site := c.site(siteID)
		if site == nil {
			return core.NotFoundError("site")
		}

		site.Name = req.Name
		site.Location = req.Location
		site.Latitude = req.Latitude
		site.Longitude = req.Longitude
		return nil
	})
}

func (s *Service) AddDevice(
	ctx context.Context,
	caller access.Caller,
	id, siteID string,
	req DeviceRequest,
) (*CustomerResponse, error) {
	if err := authorize(caller, access.OpManageDevices); err != nil {
		return nil, err
	}
	if err := s.checkProductType(ctx, req.ProductType); err != nil {
		return nil, err
	}

	return s.mutate(ctx, caller, access.OpManageDevices, id, func(c *Customer) error {
		site := c.site(siteID)
		if site == nil {
			return core.NotFoundError("site")
		}

		site.Devices = append(site.Devices, req.toDevice())
		return nil
	})
}

func (s *Service) UpdateDevice(
	ctx context.Context,
	caller access.Caller,
	id, siteID, deviceID string,
	req DeviceRequest,
) (*CustomerResponse, error) {
	if err := authorize(caller, access.OpManageDevices); err != nil {
		return nil, err
	}
	if err := s.checkProductType(ctx, req.ProductType); err != nil {
		return nil, err
	}

	return s.mutate(ctx, caller, access.OpManageDevices, id, func(c *Customer) error {
		site := c.site(siteID)
		if site == nil {
			return core.NotFoundError("site")
		}

		device := site.device(deviceID)
		if device == nil {
			return core.NotFoundError("device")
		}

		device.Name = req.Name
		device.ProductType = req.ProductType
		device.Threshold = req.Threshold
		return nil
	})
}

func (s *Service) AddDigitalService(
	ctx context.Context,
	caller access.Caller,
	id string,
	req DigitalServiceRequest,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpManageServices, id, func(c *Customer) error {
		c.DigitalServices = append(c.DigitalServices, req.toDigitalService())
		return nil
	})
}

// UpdateDigitalService changes dates and the active flag. Notification
// users are only ever added.
func (s *Service) UpdateDigitalService(
	ctx context.Context,
	caller access.Caller,
	id, serviceID string,
	req DigitalServiceRequest,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpManageServices, id, func(c *Customer) error {
		ds := c.digitalService(serviceID)
		if ds == nil {
			return core.NotFoundError("digital service")
		}

		ds.StartDate = req.StartDate
		ds.EndDate = req.EndDate
		ds.IsActive = req.IsActive
		return nil
	})
}

func (s *Service) AddNotificationUsers(
	ctx context.Context,
	caller access.Caller,
	id, serviceID string,
	emails []string,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpManageServices, id, func(c *Customer) error {
		ds := c.digitalService(serviceID)
		if ds == nil {
			return core.NotFoundError("digital service")
		}

		ds.NotificationUsers = appendUnique(ds.NotificationUsers, emails)
		return nil
	})
}

func (s *Service) AddCustomerUsers(
	ctx context.Context,
	caller access.Caller,
	id string,
	emails []string,
) (*CustomerResponse, error) {
	return s.mutate(ctx, caller, access.OpManageMembers, id, func(c *Customer) error {
		c.CustomerUsers = appendUnique(c.CustomerUsers, emails)
		return nil
	})
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// mutate loads the aggregate, applies fn and writes it back guarded by
// the version read. The response is the re-read aggregate.
func (s *Service) mutate(
	ctx context.Context,
	caller access.Caller,
	op access.Operation,
	id string,
	fn func(c *Customer) error,
) (*CustomerResponse, error) {
	if err := authorize(caller, op); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}

	if err := fn(c); err != nil {
		return nil, err
	}

	if err := s.repo.Replace(ctx, c); err != nil {
		switch {
		case errors.Is(err, core.ErrConcurrencyConflict):
			return nil, core.ConcurrencyError("customer")
		case errors.Is(err, core.ErrDuplicateKey):
			return nil, core.ConflictError("customer already registered")
		default:
			return nil, notFound(err, "customer")
		}
	}

	fresh, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer")
	}

	resp := ToCustomerResponse(fresh)
	return &resp, nil
}

func authorize(caller access.Caller, op access.Operation) error {
	if !caller.Can(op) {
		return core.ForbiddenError("")
	}
	return nil
}

func (s *Service) checkDevices(ctx context.Context, sites []SiteRequest) error {
	for _, site := range sites {
		for _, d := range site.Devices {
			if err := s.checkProductType(ctx, d.ProductType); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) checkProductType(ctx context.Context, name string) error {
	if s.products == nil {
		return nil
	}

	ok, err := s.products.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("check product type: %w", err)
	}
	if !ok {
		return core.NotFoundError(fmt.Sprintf("product type %q", name))
	}
	return nil
}

func notFound(err error, resource string) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError(resource)
	}
	return fmt.Errorf("%s: %w", resource, err)
}
