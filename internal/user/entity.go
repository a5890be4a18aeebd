// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// globalAdminSlot is written to admin_slot on the single active global
// admin. A unique partial index on that field rejects a second one.
const globalAdminSlot = "global"

type User struct {
	ID            string    `bson:"_id"`
	Email         string    `bson:"email"`
	FirstName     string    `bson:"first_name"`
	LastName      string    `bson:"last_name"`
	PasswordHash  string    `bson:"password_hash"`
	RoleID        string    `bson:"role_id"`
	CustomerID    *string   `bson:"customer_id"`
	EmailVerified bool      `bson:"email_verified"`
	IsDeleted     bool      `bson:"is_deleted"`
	AdminSlot     *string   `bson:"admin_slot,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

func (u *User) IsGlobalAdmin() bool {
	return u.AdminSlot != nil
}

func (u *User) BelongsTo(customerID string) bool {
	return u.CustomerID != nil && *u.CustomerID == customerID
}

func (u *User) markGlobalAdmin(admin bool) {
	if admin {
		slot := globalAdminSlot
		u.AdminSlot = &slot
		return
	}
	u.AdminSlot = nil
}
