package group

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type Group struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	RegionID     null.String `json:"region_id"`
	GroupAdminID null.String `json:"group_admin_id"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
}

// Membership ties a User to a Group with a per-group role.
type Membership struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GroupID   string    `json:"group_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Member is a group member as returned by member listings: the user plus
// their role within the group.
type Member struct {
	user.User
	MembershipRole string `json:"membership_role"`
}

// Demographics holds the gender and role distributions of a group's members.
type Demographics struct {
	GenderDistribution map[string]int `json:"gender_distribution"`
	RoleDistribution   map[string]int `json:"role_distribution"`
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name         string      `json:"name" validate:"required"`
	RegionID     null.String `json:"region_id"`
	GroupAdminID null.String `json:"group_admin_id"`
}

func (ng *NewGroup) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ng.Name = core.CleanString(ng.Name)
	if err := validate.Struct(ng); err != nil {
		return err
	}
	return svc.CheckNameUniqueness(ctx, ng.Name, ng.RegionID)
}

// UpdateGroup defines what information may be provided to modify an existing Group.
type UpdateGroup struct {
	Name         string      `json:"name"`
	RegionID     null.String `json:"region_id"`
	GroupAdminID null.String `json:"group_admin_id"`
}

func (ug *UpdateGroup) Validate(ctx context.Context, origGrp Group, validate *validator.Validate, svc Service) error {
	name := core.CleanString(ug.Name)
	if name != "" {
		ug.Name = name
	} else {
		ug.Name = origGrp.Name
	}
	if !ug.RegionID.Valid {
		ug.RegionID = origGrp.RegionID
	}
	if err := validate.Struct(ug); err != nil {
		return err
	}
	if ug.Name != origGrp.Name || ug.RegionID != origGrp.RegionID {
		return svc.CheckNameUniqueness(ctx, ug.Name, ug.RegionID)
	}
	return nil
}

// NewMember contains information needed to add a User to a Group.
type NewMember struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Role   string `json:"role" validate:"omitempty,role"`
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Role = user.NormalizeRole(nm.Role)
	if nm.Role == "" {
		nm.Role = user.RoleUser
	}
	return validate.Struct(nm)
}

// AssignAdmin contains information needed to promote a User to group admin.
type AssignAdmin struct {
	GroupID string `json:"group_id" validate:"required,uuid4"`
	UserID  string `json:"user_id" validate:"required,uuid4"`
}

func (aa AssignAdmin) Validate(validate *validator.Validate) error { return validate.Struct(aa) }
