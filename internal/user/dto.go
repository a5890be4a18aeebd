// AngelaMos | 2026
// dto.go

package user

import (
	"time"

	"github.com/carterperez-dev/iot-admin/internal/auth"
)

type RegisterAdminRequest struct {
	Email     string `json:"email"      validate:"required,email,max=255"`
	Password  string `json:"password"   validate:"required,min=8,max=128"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name"  validate:"required,min=1,max=100"`
}

type CreateUserRequest struct {
	Email      string  `json:"email"                 validate:"required,email,max=255"`
	Password   string  `json:"password"              validate:"required,min=8,max=128"`
	FirstName  string  `json:"first_name"            validate:"required,min=1,max=100"`
	LastName   string  `json:"last_name"             validate:"required,min=1,max=100"`
	Role       string  `json:"role"                  validate:"required,max=50"`
	CustomerID *string `json:"customer_id,omitempty" validate:"omitempty,uuid"`
}

type UpdateUserRequest struct {
	Email         *string `json:"email,omitempty"          validate:"omitempty,email,max=255"`
	Password      *string `json:"password,omitempty"       validate:"omitempty,min=8,max=128"`
	FirstName     *string `json:"first_name,omitempty"     validate:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name,omitempty"      validate:"omitempty,min=1,max=100"`
	Role          *string `json:"role,omitempty"           validate:"omitempty,max=50"`
	EmailVerified *bool   `json:"email_verified,omitempty"`
}

// ProvisionRequest creates an account on behalf of another flow, such as
// customer registration. Authorization is the caller's responsibility.
type ProvisionRequest struct {
	ID         string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	RoleID     string
	CustomerID *string
}

type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Role          string    `json:"role"`
	CustomerID    *string   `json:"customer_id"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type AdminRegistration struct {
	User  UserResponse `json:"user"`
	Token *auth.Token  `json:"token,omitempty"`
}

func ToUserResponse(u *User, roleName string) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Role:          roleName,
		CustomerID:    u.CustomerID,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
