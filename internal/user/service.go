// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/iot-admin/internal/access"
	"github.com/carterperez-dev/iot-admin/internal/auth"
	"github.com/carterperez-dev/iot-admin/internal/core"
	"github.com/carterperez-dev/iot-admin/internal/role"
)

type RoleRegistry interface {
	GetOrCreate(ctx context.Context, name access.Role, description string) (*role.Role, error)
	Resolve(ctx context.Context, name access.Role) (*role.Role, error)
	NameOf(ctx context.Context, id string) (access.Role, error)
}

type TokenIssuer interface {
	Issue(subject string, r access.Role, userID string) (*auth.Token, error)
}

type Service struct {
	repo   Repository
	roles  RoleRegistry
	tokens TokenIssuer
}

func NewService(repo Repository, roles RoleRegistry, tokens TokenIssuer) *Service {
	return &Service{
		repo:   repo,
		roles:  roles,
		tokens: tokens,
	}
}

// GetByID, GetByEmail and UpdatePassword serve the login flow.

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toUserInfo(ctx, u)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.toUserInfo(ctx, u)
}

func (s *Service) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) toUserInfo(ctx context.Context, u *User) (*auth.UserInfo, error) {
	name, err := s.roles.NameOf(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("resolve role of %s: %w", u.ID, err)
	}

	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Role:         name,
		CustomerID:   u.CustomerID,
	}, nil
}

// RegisterGlobalAdmin creates the single global admin and signs it in.
// Once an admin exists every further call is a conflict.
func (s *Service) RegisterGlobalAdmin(
	ctx context.Context,
	req RegisterAdminRequest,
) (*AdminRegistration, error) {
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	adminRole, err := s.roles.GetOrCreate(ctx, access.RoleAdmin, "")
	if err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}

	admins, err := s.repo.CountActiveByRole(ctx, adminRole.ID)
	if err != nil {
		return nil, fmt.Errorf("register admin: %w", err)
	}
	if admins > 0 {
		return nil, core.ConflictError("a global admin already exists")
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		RoleID:       adminRole.ID,
	}
	u.markGlobalAdmin(true)

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("a global admin already exists")
		}
		return nil, fmt.Errorf("register admin: %w", err)
	}

	slog.InfoContext(ctx, "global admin registered", "user_id", u.ID)

	reg := &AdminRegistration{User: ToUserResponse(u, access.RoleAdmin.String())}

	token, err := s.tokens.Issue(u.Email, access.RoleAdmin, u.ID)
	if err != nil {
		return reg, core.NewPartialFailure("issue token", []string{"create admin"}, err)
	}

	reg.Token = token
	return reg, nil
}

// CreateUser registers a non-privileged account. A Customer caller always
// creates members of its own tenant.
func (s *Service) CreateUser(
	ctx context.Context,
	caller access.Caller,
	req CreateUserRequest,
) (*UserResponse, error) {
	if !caller.Can(access.OpCreateUser) {
		return nil, core.ForbiddenError("")
	}

	target, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, core.NotFoundError(fmt.Sprintf("role %q", req.Role))
	}
	if !access.CanAssign(caller.Role, target) {
		return nil, core.ForbiddenError(fmt.Sprintf("role %s cannot be assigned here", target))
	}

	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	r, err := s.roles.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}

	customerID := req.CustomerID
	if caller.Role == access.RoleCustomer {
		id := caller.ID
		customerID = &id
	}

	return s.ProvisionAccount(ctx, ProvisionRequest{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		RoleID:     r.ID,
		CustomerID: customerID,
	})
}

// UpdateUser changes the account identified by target, which is tried as
// an id first and then as an email. Every check runs before the write.
func (s *Service) UpdateUser(
	ctx context.Context,
	caller access.Caller,
	target string,
	req UpdateUserRequest,
) (*UserResponse, error) {
	u, err := s.lookup(ctx, target)
	if err != nil {
		return nil, err
	}

	current, err := s.roles.NameOf(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !s.mayModify(caller, u, current) {
		return nil, core.ForbiddenError("")
	}

	next := current
	if req.Role != nil && *req.Role != current.String() {
		if !caller.Can(access.OpAssignRole) {
			return nil, core.ForbiddenError("only an admin can change roles")
		}

		next, err = access.ParseRole(*req.Role)
		if err != nil {
			return nil, core.NotFoundError(fmt.Sprintf("role %q", *req.Role))
		}

		r, err := s.roles.Resolve(ctx, next)
		if err != nil {
			return nil, err
		}

		if next == access.RoleAdmin {
			admins, err := s.repo.CountActiveByRole(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("update user: %w", err)
			}
			if admins > 0 {
				return nil, core.ConflictError("a global admin already exists")
			}
		}

		u.RoleID = r.ID
		u.markGlobalAdmin(next == access.RoleAdmin)
	}

	if req.EmailVerified != nil {
		if !caller.Can(access.OpVerifyEmail) {
			return nil, core.ForbiddenError("email verification cannot be changed by this role")
		}
		u.EmailVerified = *req.EmailVerified
	}

	if req.Email != nil && *req.Email != u.Email {
		if err := s.ensureEmailFree(ctx, *req.Email); err != nil {
			return nil, err
		}
		u.Email = *req.Email
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}

	if req.Password != nil {
		hash, err := core.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("email or admin slot already taken")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	resp := ToUserResponse(u, next.String())
	return &resp, nil
}

// DeleteUser soft deletes an account. Customer callers may only remove
// members of their own tenant.
func (s *Service) DeleteUser(ctx context.Context, caller access.Caller, id string) error {
	if !caller.Can(access.OpDeleteUser) {
		return core.ForbiddenError("")
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "user")
	}

	if caller.Role != access.RoleAdmin && !u.BelongsTo(caller.ID) {
		return core.ForbiddenError("")
	}

	if err := s.repo.SoftDelete(ctx, u.ID); err != nil {
		return notFound(err, "user")
	}

	return nil
}

func (s *Service) GetUser(ctx context.Context, caller access.Caller, id string) (*UserResponse, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.visible(ctx, caller, u)
}

func (s *Service) GetUserByEmail(
	ctx context.Context,
	caller access.Caller,
	email string,
) (*UserResponse, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return s.visible(ctx, caller, u)
}

func (s *Service) ListUsersByCustomer(
	ctx context.Context,
	caller access.Caller,
	customerID string,
	page core.PageRequest,
) (*core.Page[UserResponse], error) {
	switch caller.Role {
	case access.RoleAdmin:
	case access.RoleCustomer:
		if customerID != caller.ID {
			return nil, core.ForbiddenError("")
		}
	default:
		return nil, core.ForbiddenError("")
	}

	page = page.Normalize()
	users, total, err := s.repo.ListByCustomer(ctx, customerID, page)
	if err != nil {
		return nil, fmt.Errorf("list tenant users: %w", err)
	}
	return s.page(ctx, users, total, page)
}

func (s *Service) ListUsers(
	ctx context.Context,
	caller access.Caller,
	page core.PageRequest,
) (*core.Page[UserResponse], error) {
	if !caller.Can(access.OpListUsers) {
		return nil, core.ForbiddenError("")
	}

	page = page.Normalize()
	users, total, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.page(ctx, users, total, page)
}

func (s *Service) ListAdmins(ctx context.Context, page core.PageRequest) (*core.Page[UserResponse], error) {
	page = page.Normalize()

	adminRole, err := s.roles.Resolve(ctx, access.RoleAdmin)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return &core.Page[UserResponse]{Items: []UserResponse{}, Page: page.Page, PageSize: page.PageSize}, nil
		}
		return nil, err
	}

	users, total, err := s.repo.ListByRole(ctx, adminRole.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return s.page(ctx, users, total, page)
}

// CountAdmins returns the number of live global admins.
func (s *Service) CountAdmins(ctx context.Context) (int64, error) {
	adminRole, err := s.roles.Resolve(ctx, access.RoleAdmin)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return s.repo.CountActiveByRole(ctx, adminRole.ID)
}

func (s *Service) GetAdmin(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.admin(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(u, access.RoleAdmin.String())
	return &resp, nil
}

func (s *Service) UpdateAdmin(
	ctx context.Context,
	caller access.Caller,
	id string,
	req UpdateUserRequest,
) (*UserResponse, error) {
	if _, err := s.admin(ctx, id); err != nil {
		return nil, err
	}
	return s.UpdateUser(ctx, caller, id, req)
}

func (s *Service) DeleteAdmin(ctx context.Context, id string) error {
	u, err := s.admin(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, u.ID); err != nil {
		return notFound(err, "admin")
	}

	slog.InfoContext(ctx, "global admin removed", "user_id", u.ID)
	return nil
}

// EmailTaken reports whether any account, deleted or not, uses email.
func (s *Service) EmailTaken(ctx context.Context, email string) (bool, error) {
	taken, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

// ProvisionAccount stores a new account without authorization checks.
// An empty ID is replaced by a fresh one.
func (s *Service) ProvisionAccount(ctx context.Context, req ProvisionRequest) (*UserResponse, error) {
	name, err := s.roles.NameOf(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}

	hash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}

	u := &User{
		ID:           id,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
		RoleID:       req.RoleID,
		CustomerID:   req.CustomerID,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	resp := ToUserResponse(u, name.String())
	return &resp, nil
}

func (s *Service) SoftDeleteAccount(ctx context.Context, id string) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return notFound(err, "user")
	}
	return nil
}

// SoftDeleteTenantMembers removes every account attached to customerID.
func (s *Service) SoftDeleteTenantMembers(ctx context.Context, customerID string) (int64, error) {
	n, err := s.repo.SoftDeleteByCustomer(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("delete tenant members: %w", err)
	}
	return n, nil
}

func (s *Service) lookup(ctx context.Context, target string) (*User, error) {
	if _, err := uuid.Parse(target); err == nil {
		u, err := s.repo.GetByID(ctx, target)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
	}

	u, err := s.repo.GetByEmail(ctx, target)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

func (s *Service) admin(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "admin")
	}

	name, err := s.roles.NameOf(ctx, u.RoleID)
	if err != nil || name != access.RoleAdmin {
		return nil, core.NotFoundError("admin")
	}
	return u, nil
}

// mayModify applies the role matrix, then narrows non-admin callers to
// accounts they own.
func (s *Service) mayModify(caller access.Caller, u *User, target access.Role) bool {
	if !caller.Can(access.OpUpdateUser) || !access.CanModify(caller.Role, target) {
		return false
	}

	switch caller.Role {
	case access.RoleAdmin:
		return true
	case access.RoleCustomer:
		return u.ID == caller.ID || u.BelongsTo(caller.ID)
	default:
		return u.ID == caller.ID
	}
}

func (s *Service) visible(ctx context.Context, caller access.Caller, u *User) (*UserResponse, error) {
	switch caller.Role {
	case access.RoleAdmin:
	case access.RoleCustomer:
		if u.ID != caller.ID && !u.BelongsTo(caller.ID) {
			return nil, core.ForbiddenError("")
		}
	default:
		if u.ID != caller.ID {
			return nil, core.ForbiddenError("")
		}
	}

	name, err := s.roles.NameOf(ctx, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	resp := ToUserResponse(u, name.String())
	return &resp, nil
}

func (s *Service) page(
	ctx context.Context,
	users []User,
	total int64,
	page core.PageRequest,
) (*core.Page[UserResponse], error) {
	names := make(map[string]string)
	items := make([]UserResponse, 0, len(users))

	for i := range users {
		name, ok := names[users[i].RoleID]
		if !ok {
			r, err := s.roles.NameOf(ctx, users[i].RoleID)
			if err != nil && !errors.Is(err, core.ErrNotFound) {
				return nil, fmt.Errorf("resolve role: %w", err)
			}
			name = r.String()
			names[users[i].RoleID] = name
		}
		items = append(items, ToUserResponse(&users[i], name))
	}

	return &core.Page[UserResponse]{
		Items:    items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return core.ConflictError("email already registered")
	}
	return nil
}

func notFound(err error, resource string) error {
	if errors.Is(err, core.ErrNotFound) {
		return core.NotFoundError(resource)
	}
	return fmt.Errorf("%s: %w", resource, err)
}
