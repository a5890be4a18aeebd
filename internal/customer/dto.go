// AngelaMos | 2026
// dto.go

package customer

import (
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/iot-admin/internal/user"
)

type RegisterCustomerRequest struct {
	Name            string                  `json:"name"             validate:"required,max=100"`
	Phone           string                  `json:"phone"            validate:"omitempty,max=30"`
	Email           string                  `json:"email"            validate:"required,email,max=255"`
	Password        string                  `json:"password"         validate:"required,min=8,max=128"`
	City            string                  `json:"city"             validate:"required,max=100"`
	Region          string                  `json:"region"           validate:"required,max=100"`
	IsActive        bool                    `json:"is_active"`
	Sites           []SiteRequest           `json:"sites"            validate:"omitempty,dive"`
	CustomerUsers   []string                `json:"customer_users"   validate:"omitempty,dive,email"`
	DigitalServices []DigitalServiceRequest `json:"digital_services" validate:"omitempty,dive"`
}

// UpdateCustomerRequest changes the scalar fields of a customer. When
// Version is set it must match the stored aggregate.
type UpdateCustomerRequest struct {
	Name     *string `json:"name,omitempty"     validate:"omitempty,min=1,max=100"`
	Phone    *string `json:"phone,omitempty"    validate:"omitempty,max=30"`
	Email    *string `json:"email,omitempty"    validate:"omitempty,email,max=255"`
	City     *string `json:"city,omitempty"     validate:"omitempty,min=1,max=100"`
	Region   *string `json:"region,omitempty"   validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
	Version  *int64  `json:"version,omitempty"  validate:"omitempty,min=1"`
}

type SiteRequest struct {
	Name      string          `json:"name"      validate:"required,max=100"`
	Location  string          `json:"location"  validate:"required,max=200"`
	Latitude  float64         `json:"latitude"  validate:"gte=-90,lte=90"`
	Longitude float64         `json:"longitude" validate:"gte=-180,lte=180"`
	Devices   []DeviceRequest `json:"devices"   validate:"omitempty,dive"`
}

type DeviceRequest struct {
	Name        string  `json:"name"         validate:"required,max=100"`
	ProductType string  `json:"product_type" validate:"required,max=100"`
	Threshold   float64 `json:"threshold"`
}

type DigitalServiceRequest struct {
	StartDate         time.Time `json:"start_date"         validate:"required"`
	EndDate           time.Time `json:"end_date"           validate:"required,gtefield=StartDate"`
	IsActive          bool      `json:"is_active"`
	NotificationUsers []string  `json:"notification_users" validate:"omitempty,dive,email"`
}

type EmailsRequest struct {
	Emails []string `json:"emails" validate:"required,min=1,dive,email"`
}

type CustomerResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Phone           string           `json:"phone"`
	Email           string           `json:"email"`
	City            string           `json:"city"`
	Region          string           `json:"region"`
	IsActive        bool             `json:"is_active"`
	Sites           []Site           `json:"sites"`
	CustomerUsers   []string         `json:"customer_users"`
	DigitalServices []DigitalService `json:"digital_services"`
	Version         int64            `json:"version"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Registration is everything created by a customer registration.
type Registration struct {
	Customer   CustomerResponse   `json:"customer"`
	TenantUser *user.UserResponse `json:"tenant_user,omitempty"`
	DemoUser   *user.UserResponse `json:"demo_user,omitempty"`
}

func ToCustomerResponse(c *Customer) CustomerResponse {
	return CustomerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Phone:           c.Phone,
		Email:           c.Email,
		City:            c.City,
		Region:          c.Region,
		IsActive:        c.IsActive,
		Sites:           nonNil(c.Sites),
		CustomerUsers:   nonNil(c.CustomerUsers),
		DigitalServices: nonNil(c.DigitalServices),
		Version:         c.Version,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func ToCustomerResponseList(customers []Customer) []CustomerResponse {
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (r SiteRequest) toSite() Site {
	devices := make([]Device, 0, len(r.Devices))
	for _, d := range r.Devices {
		devices = append(devices, d.toDevice())
	}

	return Site{
		ID:        uuid.New().String(),
		Name:      r.Name,
		Location:  r.Location,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Devices:   devices,
	}
}

func (r DeviceRequest) toDevice() Device {
	return Device{
		ID:          uuid.New().String(),
		Name:        r.Name,
		ProductType: r.ProductType,
		Threshold:   r.Threshold,
	}
}

func (r DigitalServiceRequest) toDigitalService() DigitalService {
	return DigitalService{
		ID:                uuid.New().String(),
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		IsActive:          r.IsActive,
		NotificationUsers: appendUnique(nil, r.NotificationUsers),
	}
}

func (r RegisterCustomerRequest) toCustomer() *Customer {
	sites := make([]Site, 0, len(r.Sites))
	for _, s := range r.Sites {
		sites = append(sites, s.toSite())
	}

	services := make([]DigitalService, 0, len(r.DigitalServices))
	for _, ds := range r.DigitalServices {
		services = append(services, ds.toDigitalService())
	}

	return &Customer{
		ID:              uuid.New().String(),
		Name:            r.Name,
		Phone:           r.Phone,
		Email:           r.Email,
		City:            r.City,
		Region:          r.Region,
		IsActive:        r.IsActive,
		Sites:           sites,
		CustomerUsers:   appendUnique(nil, r.CustomerUsers),
		DigitalServices: services,
	}
}
