// AngelaMos | 2026
// role.go

package access

import (
	"fmt"
)

// Role is the closed set of roles a token may carry.
type Role string

const (
	RoleAdmin         Role = "Admin"
	RoleCustomer      Role = "Customer"
	RoleUser          Role = "User"
	RoleCustomerAdmin Role = "CustomerAdmin"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:         {},
	RoleCustomer:      {},
	RoleUser:          {},
	RoleCustomerAdmin: {},
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) String() string {
	return string(r)
}

func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}

// Privileged roles can only be granted through their dedicated
// registration flows.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Description is stored on the role record when a well-known role is
// created on first use.
func (r Role) Description() string {
	switch r {
	case RoleAdmin:
		return "Global Admin role registered."
	case RoleCustomer:
		return "Customer role created."
	case RoleCustomerAdmin:
		return "Customer demo administrator role."
	default:
		return "User role created."
	}
}

// Caller is the authenticated identity an operation runs on behalf of.
type Caller struct {
	ID    string
	Email string
	Role  Role
}

func (c Caller) Can(op Operation) bool {
	return Allowed(c.Role, op)
}
