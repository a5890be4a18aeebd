// AngelaMos | 2026
// dto.go

package auth

import (
	"github.com/carterperez-dev/iot-admin/internal/access"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         access.Role
	CustomerID   *string
}

type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Role       string  `json:"role"`
	CustomerID *string `json:"customer_id"`
}

type LoginResponse struct {
	User  UserResponse `json:"user"`
	Token *Token       `json:"token"`
}

func toUserResponse(u *UserInfo) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role.String(),
		CustomerID: u.CustomerID,
	}
}
