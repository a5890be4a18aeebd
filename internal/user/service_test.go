// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/auth"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/role"
)

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(subject string, r access.Role, userID string) (*auth.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &auth.Token{AccessToken: "signed." + userID, TokenType: "Bearer"}, nil
}

type fixture struct {
	svc   *Service
	repo  *MemoryRepository
	roles *role.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	roles := role.NewService(role.NewMemoryRepository())
	for _, r := range []access.Role{access.RoleUser, access.RoleCustomer, access.RoleCustomerAdmin} {
		_, err := roles.GetOrCreate(context.Background(), r, "")
		require.NoError(t, err)
	}

	repo := NewMemoryRepository()
	return &fixture{
		svc:   NewService(repo, roles, stubIssuer{}),
		repo:  repo,
		roles: roles,
	}
}

func (f *fixture) registerAdmin(t *testing.T, email string) access.Caller {
	t.Helper()

	reg, err := f.svc.RegisterGlobalAdmin(context.Background(), RegisterAdminRequest{
		Email:     email,
		Password:  "Sup3rSecret!",
		FirstName: "Root",
		LastName:  "Admin",
	})
	require.NoError(t, err)

	return access.Caller{ID: reg.User.ID, Email: email, Role: access.RoleAdmin}
}

func (f *fixture) addTenant(t *testing.T, email string) access.Caller {
	t.Helper()

	r, err := f.roles.Resolve(context.Background(), access.RoleCustomer)
	require.NoError(t, err)

	resp, err := f.svc.ProvisionAccount(context.Background(), ProvisionRequest{
		Email:     email,
		Password:  "TenantPass1",
		FirstName: "Acme",
		LastName:  "Corp",
		RoleID:    r.ID,
	})
	require.NoError(t, err)

	return access.Caller{ID: resp.ID, Email: email, Role: access.RoleCustomer}
}

func createReq(email, roleName string) CreateUserRequest {
	return CreateUserRequest{
		Email:     email,
		Password:  "Passw0rd!",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      roleName,
	}
}

func TestRegisterGlobalAdminReturnsToken(t *testing.T) {
	f := newFixture(t)

	reg, err := f.svc.RegisterGlobalAdmin(context.Background(), RegisterAdminRequest{
		Email:     "root@example.com",
		Password:  "Sup3rSecret!",
		FirstName: "Root",
		LastName:  "Admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "Admin", reg.User.Role)
	assert.Nil(t, reg.User.CustomerID)
	require.NotNil(t, reg.Token)
	assert.Equal(t, "signed."+reg.User.ID, reg.Token.AccessToken)

	stored, ok := f.repo.Raw(reg.User.ID)
	require.True(t, ok)
	assert.True(t, stored.IsGlobalAdmin())
	assert.NotEqual(t, "Sup3rSecret!", stored.PasswordHash)
}

func TestSecondGlobalAdminIsRejected(t *testing.T) {
	f := newFixture(t)
	f.registerAdmin(t, "root@example.com")

	_, err := f.svc.RegisterGlobalAdmin(context.Background(), RegisterAdminRequest{
		Email:     "other@example.com",
		Password:  "Sup3rSecret!",
		FirstName: "Other",
		LastName:  "Admin",
	})

	require.Error(t, err)
	assert.Equal(t, core.CodeConflict, core.FromError(err).Code)
	assert.Equal(t, 1, f.repo.Len())
}

func TestRegisterGlobalAdminTokenFailureIsPartial(t *testing.T) {
	roles := role.NewService(role.NewMemoryRepository())
	repo := NewMemoryRepository()
	svc := NewService(repo, roles, stubIssuer{err: errors.New("signer offline")})

	reg, err := svc.RegisterGlobalAdmin(context.Background(), RegisterAdminRequest{
		Email:     "root@example.com",
		Password:  "Sup3rSecret!",
		FirstName: "Root",
		LastName:  "Admin",
	})

	var partial *core.PartialFailureError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, "issue token", partial.Step)
	assert.Equal(t, 1, repo.Len())

	require.NotNil(t, reg)
	assert.Equal(t, "root@example.com", reg.User.Email)
	assert.Nil(t, reg.Token)
}

func TestCreateUserDuplicateEmailWritesNothing(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	_, err := f.svc.CreateUser(context.Background(), admin, createReq("jane@example.com", "User"))
	require.NoError(t, err)
	before := f.repo.Len()

	_, err = f.svc.CreateUser(context.Background(), admin, createReq("jane@example.com", "User"))

	require.Error(t, err)
	assert.Equal(t, core.CodeConflict, core.FromError(err).Code)
	assert.Equal(t, before, f.repo.Len())
}

func TestCreateUserEmailMatchIsCaseSensitive(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	_, err := f.svc.CreateUser(context.Background(), admin, createReq("jane@example.com", "User"))
	require.NoError(t, err)

	_, err = f.svc.CreateUser(context.Background(), admin, createReq("Jane@example.com", "User"))
	assert.NoError(t, err)
}

func TestCreateUserByCustomerAttachesTenant(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "acme@example.com")

	other := "5d0c8d5e-8f43-4a51-9a0e-0a4cfa2b7f10"
	req := createReq("worker@acme.com", "User")
	req.CustomerID = &other

	resp, err := f.svc.CreateUser(context.Background(), tenant, req)
	require.NoError(t, err)

	require.NotNil(t, resp.CustomerID)
	assert.Equal(t, tenant.ID, *resp.CustomerID)
	assert.Equal(t, "User", resp.Role)
}

func TestCreateUserRoleRules(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	plain := access.Caller{ID: "u-1", Role: access.RoleUser}

	tests := []struct {
		name   string
		caller access.Caller
		role   string
		code   string
	}{
		{"user caller", plain, "User", core.CodeForbidden},
		{"assign admin", admin, "Admin", core.CodeForbidden},
		{"assign customer", admin, "Customer", core.CodeForbidden},
		{"unknown role", admin, "Operator", core.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateUser(context.Background(), tt.caller, createReq("x-"+tt.name+"@example.com", tt.role))
			require.Error(t, err)
			assert.Equal(t, tt.code, core.FromError(err).Code)
		})
	}
}

func TestCreateUserWithDeletedRoleIsNotFound(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	require.NoError(t, f.roles.SoftDelete(context.Background(), "CustomerAdmin"))

	_, err := f.svc.CreateUser(context.Background(), admin, createReq("demo@example.com", "CustomerAdmin"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestCustomerCannotUpdateAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	tenant := f.addTenant(t, "acme@example.com")

	before, ok := f.repo.Raw(admin.ID)
	require.True(t, ok)

	name := "Hijacked"
	_, err := f.svc.UpdateUser(context.Background(), tenant, admin.ID, UpdateUserRequest{FirstName: &name})

	require.Error(t, err)
	assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)

	after, _ := f.repo.Raw(admin.ID)
	assert.Equal(t, before, after)
}

func TestUpdateUserResolvesTargetByEmail(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	created, err := f.svc.CreateUser(context.Background(), admin, createReq("jane@example.com", "User"))
	require.NoError(t, err)

	verified := true
	resp, err := f.svc.UpdateUser(context.Background(), admin, "jane@example.com", UpdateUserRequest{
		EmailVerified: &verified,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, resp.ID)
	assert.True(t, resp.EmailVerified)
}

func TestUpdateUserPermissions(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	tenant := f.addTenant(t, "acme@example.com")

	member, err := f.svc.CreateUser(context.Background(), tenant, createReq("member@acme.com", "User"))
	require.NoError(t, err)
	self := access.Caller{ID: member.ID, Email: member.Email, Role: access.RoleUser}

	verified := true
	promoted := "CustomerAdmin"
	newMail := "root@example.com"

	t.Run("user cannot verify own email", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), self, member.ID, UpdateUserRequest{EmailVerified: &verified})
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
	})

	t.Run("customer cannot change roles", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), tenant, member.ID, UpdateUserRequest{Role: &promoted})
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
	})

	t.Run("user cannot modify customer", func(t *testing.T) {
		name := "x"
		_, err := f.svc.UpdateUser(context.Background(), self, tenant.ID, UpdateUserRequest{FirstName: &name})
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
	})

	t.Run("email collision", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), self, member.ID, UpdateUserRequest{Email: &newMail})
		assert.Equal(t, core.CodeConflict, core.FromError(err).Code)
	})

	t.Run("customer verifies member", func(t *testing.T) {
		resp, err := f.svc.UpdateUser(context.Background(), tenant, member.ID, UpdateUserRequest{EmailVerified: &verified})
		require.NoError(t, err)
		assert.True(t, resp.EmailVerified)
	})

	t.Run("admin reassigns role", func(t *testing.T) {
		resp, err := f.svc.UpdateUser(context.Background(), admin, member.ID, UpdateUserRequest{Role: &promoted})
		require.NoError(t, err)
		assert.Equal(t, "CustomerAdmin", resp.Role)
	})
}

func TestUpdateUserIsScopedToOwnTenant(t *testing.T) {
	f := newFixture(t)
	acme := f.addTenant(t, "acme@example.com")
	globex := f.addTenant(t, "globex@example.com")

	acmeMember, err := f.svc.CreateUser(context.Background(), acme, createReq("a1@acme.com", "User"))
	require.NoError(t, err)
	acmeSibling, err := f.svc.CreateUser(context.Background(), acme, createReq("a2@acme.com", "User"))
	require.NoError(t, err)
	globexMember, err := f.svc.CreateUser(context.Background(), globex, createReq("g1@globex.com", "User"))
	require.NoError(t, err)

	name := "Renamed"
	req := UpdateUserRequest{FirstName: &name}
	member := access.Caller{ID: acmeMember.ID, Email: acmeMember.Email, Role: access.RoleUser}

	t.Run("customer cannot update another tenant's member", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), acme, globexMember.ID, req)
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)

		stored, _ := f.repo.Raw(globexMember.ID)
		assert.Equal(t, "Jane", stored.FirstName)
	})

	t.Run("customer cannot update another customer", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), acme, globex.ID, req)
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
	})

	t.Run("user cannot update a sibling user", func(t *testing.T) {
		_, err := f.svc.UpdateUser(context.Background(), member, acmeSibling.ID, req)
		assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
	})

	t.Run("customer updates own member", func(t *testing.T) {
		resp, err := f.svc.UpdateUser(context.Background(), acme, acmeMember.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", resp.FirstName)
	})
}

func TestPromotingSecondAdminConflicts(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	created, err := f.svc.CreateUser(context.Background(), admin, createReq("jane@example.com", "User"))
	require.NoError(t, err)

	promoted := "Admin"
	_, err = f.svc.UpdateUser(context.Background(), admin, created.ID, UpdateUserRequest{Role: &promoted})
	assert.Equal(t, core.CodeConflict, core.FromError(err).Code)
}

func TestDemotedAdminFreesSlot(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	demoted := "User"
	_, err := f.svc.UpdateUser(context.Background(), admin, admin.ID, UpdateUserRequest{Role: &demoted})
	require.NoError(t, err)

	stored, _ := f.repo.Raw(admin.ID)
	assert.False(t, stored.IsGlobalAdmin())

	f.registerAdmin(t, "next@example.com")
}

func TestDeleteUserScopedToTenant(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	acme := f.addTenant(t, "acme@example.com")
	globex := f.addTenant(t, "globex@example.com")

	member, err := f.svc.CreateUser(context.Background(), acme, createReq("member@acme.com", "User"))
	require.NoError(t, err)

	err = f.svc.DeleteUser(context.Background(), globex, member.ID)
	assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)

	require.NoError(t, f.svc.DeleteUser(context.Background(), acme, member.ID))

	stored, _ := f.repo.Raw(member.ID)
	assert.True(t, stored.IsDeleted)

	err = f.svc.DeleteUser(context.Background(), admin, member.ID)
	assert.Equal(t, core.CodeNotFound, core.FromError(err).Code)
}

func TestDeletedAdminAllowsNewRegistration(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	require.NoError(t, f.svc.DeleteAdmin(context.Background(), admin.ID))

	f.registerAdmin(t, "next@example.com")
}

func TestGetUserVisibility(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	acme := f.addTenant(t, "acme@example.com")
	globex := f.addTenant(t, "globex@example.com")

	member, err := f.svc.CreateUser(context.Background(), acme, createReq("member@acme.com", "User"))
	require.NoError(t, err)
	self := access.Caller{ID: member.ID, Role: access.RoleUser}

	_, err = f.svc.GetUser(context.Background(), admin, member.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetUser(context.Background(), acme, member.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetUserByEmail(context.Background(), self, "member@acme.com")
	assert.NoError(t, err)

	_, err = f.svc.GetUser(context.Background(), globex, member.ID)
	assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)

	_, err = f.svc.GetUser(context.Background(), self, acme.ID)
	assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
}

func TestListUsersByCustomer(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")
	acme := f.addTenant(t, "acme@example.com")
	globex := f.addTenant(t, "globex@example.com")

	for _, email := range []string{"a@acme.com", "b@acme.com", "c@acme.com"} {
		_, err := f.svc.CreateUser(context.Background(), acme, createReq(email, "User"))
		require.NoError(t, err)
	}

	page, err := f.svc.ListUsersByCustomer(context.Background(), admin, acme.ID, core.PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)

	_, err = f.svc.ListUsersByCustomer(context.Background(), globex, acme.ID, core.PageRequest{})
	assert.Equal(t, core.CodeForbidden, core.FromError(err).Code)
}

func TestListUsersNormalizesPage(t *testing.T) {
	f := newFixture(t)
	admin := f.registerAdmin(t, "root@example.com")

	for _, email := range []string{"a@example.com", "b@example.com"} {
		_, err := f.svc.CreateUser(context.Background(), admin, createReq(email, "User"))
		require.NoError(t, err)
	}

	zero, err := f.svc.ListUsers(context.Background(), admin, core.PageRequest{})
	require.NoError(t, err)
	explicit, err := f.svc.ListUsers(context.Background(), admin, core.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)

	assert.Equal(t, explicit, zero)
	assert.Equal(t, 1, zero.Page)
	assert.Equal(t, 10, zero.PageSize)
}

func TestListAdminsAndGetAdmin(t *testing.T) {
	f := newFixture(t)

	empty, err := f.svc.ListAdmins(context.Background(), core.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, empty.Items)

	admin := f.registerAdmin(t, "root@example.com")
	tenant := f.addTenant(t, "acme@example.com")

	page, err := f.svc.ListAdmins(context.Background(), core.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, admin.ID, page.Items[0].ID)

	_, err = f.svc.GetAdmin(context.Background(), tenant.ID)
	assert.Equal(t, core.CodeNotFound, core.FromError(err).Code)
}

func TestLoginLookupCarriesRole(t *testing.T) {
	f := newFixture(t)
	tenant := f.addTenant(t, "acme@example.com")

	info, err := f.svc.GetByEmail(context.Background(), "acme@example.com")
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, info.ID)
	assert.Equal(t, access.RoleCustomer, info.Role)

	require.NoError(t, f.svc.SoftDeleteAccount(context.Background(), tenant.ID))

	_, err = f.svc.GetByEmail(context.Background(), "acme@example.com")
	assert.True(t, errors.Is(err, core.ErrNotFound))
}
