// AngelaMos | 2026
// entity.go

package customer

import (
	"time"
)

// Customer is the tenant aggregate. Every write replaces the whole
// document and bumps Version.
type Customer struct {
	ID              string           `bson:"_id"`
	Name            string           `bson:"name"`
	Phone           string           `bson:"phone"`
	Email           string           `bson:"email"`
	City            string           `bson:"city"`
	Region          string           `bson:"region"`
	IsActive        bool             `bson:"is_active"`
	IsDeleted       bool             `bson:"is_deleted"`
	Sites           []Site           `bson:"sites"`
	CustomerUsers   []string         `bson:"customer_users"`
	DigitalServices []DigitalService `bson:"digital_services"`
	Version         int64            `bson:"version"`
	CreatedAt       time.Time        `bson:"created_at"`
	UpdatedAt       time.Time        `bson:"updated_at"`
}

type Site struct {
	ID        string   `bson:"id"        json:"id"`
	Name      string   `bson:"name"      json:"name"`
	Location  string   `bson:"location"  json:"location"`
	Latitude  float64  `bson:"latitude"  json:"latitude"`
	Longitude float64  `bson:"longitude" json:"longitude"`
	Devices   []Device `bson:"devices"   json:"devices"`
}

type Device struct {
	ID          string  `bson:"id"           json:"id"`
	Name        string  `bson:"name"         json:"name"`
	ProductType string  `bson:"product_type" json:"product_type"`
	Threshold   float64 `bson:"threshold"    json:"threshold"`
}

type DigitalService struct {
	ID                string    `bson:"id"                 json:"id"`
	StartDate         time.Time `bson:"start_date"         json:"start_date"`
	EndDate           time.Time `bson:"end_date"           json:"end_date"`
	IsActive          bool      `bson:"is_active"          json:"is_active"`
	NotificationUsers []string  `bson:"notification_users" json:"notification_users"`
}

func (c *Customer) site(id string) *Site {
	for i := range c.Sites {
		if c.Sites[i].ID == id {
			return &c.Sites[i]
		}
	}
	return nil
}

func (s *Site) device(id string) *Device {
	for i := range s.Devices {
		if s.Devices[i].ID == id {
			return &s.Devices[i]
		}
	}
	return nil
}

func (c *Customer) digitalService(id string) *DigitalService {
	for i := range c.DigitalServices {
		if c.DigitalServices[i].ID == id {
			return &c.DigitalServices[i]
		}
	}
	return nil
}

// appendUnique adds each value not already present, preserving order.
func appendUnique(existing, values []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(values))
	out := make([]string, 0, len(existing)+len(values))

	for _, v := range existing {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
