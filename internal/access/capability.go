// AngelaMos | 2026
// capability.go

package access

type Operation string

const (
	OpCreateUser       Operation = "user:create"
	OpUpdateUser       Operation = "user:update"
	OpDeleteUser       Operation = "user:delete"
	OpReadUser         Operation = "user:read"
	OpListUsers        Operation = "user:list"
	OpListTenantUsers  Operation = "user:list-tenant"
	OpVerifyEmail      Operation = "user:verify-email"
	OpAssignRole       Operation = "user:assign-role"
	OpManageAdmins     Operation = "admin:manage"
	OpRegisterCustomer Operation = "customer:register"
	OpUpdateCustomer   Operation = "customer:update"
	OpDeleteCustomer   Operation = "customer:delete"
	OpReadCustomer     Operation = "customer:read"
	OpListCustomers    Operation = "customer:list"
	OpManageSites      Operation = "customer:sites"
	OpManageDevices    Operation = "customer:devices"
	OpManageServices   Operation = "customer:digital-services"
	OpManageMembers    Operation = "customer:customer-users"
	OpManageRoles      Operation = "role:manage"
	OpManageProducts   Operation = "product-type:manage"
	OpReadProducts     Operation = "product-type:read"
	OpSystemStats      Operation = "system:stats"
)

var capabilities = map[Operation][]Role{
	OpCreateUser:       {RoleAdmin, RoleCustomer},
	OpUpdateUser:       {RoleAdmin, RoleCustomer, RoleUser, RoleCustomerAdmin},
	OpDeleteUser:       {RoleAdmin, RoleCustomer},
	OpReadUser:         {RoleAdmin, RoleCustomer, RoleUser, RoleCustomerAdmin},
	OpListUsers:        {RoleAdmin},
	OpListTenantUsers:  {RoleAdmin, RoleCustomer},
	OpVerifyEmail:      {RoleAdmin, RoleCustomer},
	OpAssignRole:       {RoleAdmin},
	OpManageAdmins:     {RoleAdmin},
	OpRegisterCustomer: {RoleAdmin},
	OpUpdateCustomer:   {RoleAdmin},
	OpDeleteCustomer:   {RoleAdmin},
	OpReadCustomer:     {RoleAdmin, RoleCustomer},
	OpListCustomers:    {RoleAdmin},
	OpManageSites:      {RoleAdmin},
	OpManageDevices:    {RoleAdmin},
	OpManageServices:   {RoleAdmin},
	OpManageMembers:    {RoleAdmin},
	OpManageRoles:      {RoleAdmin},
	OpManageProducts:   {RoleAdmin},
	OpReadProducts:     {RoleAdmin},
	OpSystemStats:      {RoleAdmin},
}

var table = buildTable(capabilities)

func buildTable(src map[Operation][]Role) map[Operation]map[Role]bool {
	t := make(map[Operation]map[Role]bool, len(src))
	for op, roles := range src {
		allowed := make(map[Role]bool, len(roles))
		for _, r := range roles {
			allowed[r] = true
		}
		t[op] = allowed
	}
	return t
}

// Allowed reports whether role may perform op. Unknown operations and
// roles are denied.
func Allowed(role Role, op Operation) bool {
	return table[op][role]
}

// AllowedRoles lists the roles granted op.
func AllowedRoles(op Operation) []Role {
	roles := capabilities[op]
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// CanModify reports whether caller may change an account holding target.
func CanModify(caller, target Role) bool {
	switch caller {
	case RoleAdmin:
		return true
	case RoleCustomer:
		return target != RoleAdmin
	case RoleUser, RoleCustomerAdmin:
		return !target.Privileged()
	default:
		return false
	}
}

// CanAssign reports whether caller may create an account with target
// through the generic user creation path.
func CanAssign(caller, target Role) bool {
	if !Allowed(caller, OpCreateUser) {
		return false
	}
	return target.Valid() && !target.Privileged()
}
