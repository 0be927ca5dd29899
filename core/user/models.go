package user

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Purity-dev-614E/safari-backend/core"
)

// Roles. One canonical snake_case spelling each; legacy spellings from old data
// ("super admin", "region manager", "regional manager") are normalized on the way in.
const (
	RoleUser          = "user"
	RoleAdmin         = "admin"
	RoleRegionManager = "region_manager"
	RoleSuperAdmin    = "super_admin"
)

var (
	AllRoles = []string{RoleUser, RoleAdmin, RoleRegionManager, RoleSuperAdmin}

	rolePriorities = map[string]int{
		RoleSuperAdmin:    30,
		RoleRegionManager: 20,
		RoleAdmin:         10,
		RoleUser:          1,
	}

	Roles = []Role{
		{Name: "User", Value: RoleUser},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Region Manager", Value: RoleRegionManager},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}

	legacyRoles = map[string]string{
		"super admin":      RoleSuperAdmin,
		"superadmin":       RoleSuperAdmin,
		"region manager":   RoleRegionManager,
		"regional manager": RoleRegionManager,
		"regional_manager": RoleRegionManager,
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NormalizeRole maps any known spelling of a role to its canonical value.
// Unknown roles are returned cleaned; validation rejects them downstream.
func NormalizeRole(role string) string {
	cleaned := strings.ToLower(strings.TrimSpace(role))
	if canonical, ok := legacyRoles[cleaned]; ok {
		return canonical
	}
	return cleaned
}

// IsValidRole reports whether role is one of the canonical role values.
func IsValidRole(role string) bool {
	_, ok := rolePriorities[role]
	return ok
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

type User struct {
	ID               string      `json:"id"`
	AuthID           string      `json:"auth_id"`
	Email            string      `json:"email"`
	FullName         string      `json:"full_name"`
	PhoneNumber      null.String `json:"phone_number"`
	Gender           null.String `json:"gender"`
	ProfilePicture   null.String `json:"profile_picture"`
	Role             string      `json:"role"`
	Location         null.String `json:"location"`
	NextOfKinName    null.String `json:"next_of_kin_name"`
	NextOfKinContact null.String `json:"next_of_kin_contact"`
	RegionID         null.String `json:"region_id"`
	PasswordHash     []byte      `json:"-"`
	CreatedAt        time.Time   `json:"created_at"` // UTC
	UpdatedAt        time.Time   `json:"updated_at"` // UTC
	LastLogin        time.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsRegionManager() bool {
	return u.Role == RoleRegionManager
}

func (u *User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsStaff reports whether the user holds any role above plain membership.
func (u *User) IsStaff() bool {
	return RolePriority(u.Role) > RolePriority(RoleUser)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Email            string      `json:"email" validate:"required,email"`
	FullName         string      `json:"full_name" validate:"required"`
	Password         string      `json:"password" validate:"required"`
	PasswordConfirm  string      `json:"password_confirm" validate:"required,eqfield=Password"`
	Role             string      `json:"role" validate:"omitempty,role"`
	RegionID         null.String `json:"region_id" validate:"omitempty"`
	PhoneNumber      null.String `json:"phone_number"`
	Gender           null.String `json:"gender" validate:"omitempty,oneof=male female other"`
	Location         null.String `json:"location"`
	NextOfKinName    null.String `json:"next_of_kin_name"`
	NextOfKinContact null.String `json:"next_of_kin_contact"`
}

func (nu *NewUser) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = NormalizeRole(nu.Role)
	if nu.Role == "" {
		nu.Role = RoleUser
	}

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Email            string      `json:"email" validate:"omitempty,email"`
	FullName         string      `json:"full_name"`
	Role             string      `json:"role" validate:"omitempty,role"`
	RegionID         null.String `json:"region_id"`
	PhoneNumber      null.String `json:"phone_number"`
	Gender           null.String `json:"gender" validate:"omitempty,oneof=male female other"`
	ProfilePicture   null.String `json:"profile_picture"`
	Location         null.String `json:"location"`
	NextOfKinName    null.String `json:"next_of_kin_name"`
	NextOfKinContact null.String `json:"next_of_kin_contact"`
	Password         string      `json:"password" validate:"omitempty"`
	PasswordConfirm  string      `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(ctx context.Context, origUsr User, validate *validator.Validate, svc Service) error {
	name := core.CleanString(uu.FullName)
	if name != "" {
		uu.FullName = name
	} else {
		uu.FullName = origUsr.FullName
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if uu.Role != "" {
		uu.Role = NormalizeRole(uu.Role)
	} else {
		uu.Role = origUsr.Role
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(ctx, uu.Email, origUsr)
}

type ResetUserPassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetUserPassword) Validate(validate *validator.Validate) error { return validate.Struct(rp) }
