package group

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("group not found")
	ErrNameExists    = errors.New("a group with this name already exists in this region")
	ErrMemberExists  = errors.New("user is already a member of this group")
	ErrMemberMissing = errors.New("user is not a member of this group")
)

type (
	Repository interface {
		CheckGroupNameUniqueness(ctx context.Context, name string, regionID null.String) error
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetGroupByID(ctx context.Context, id string) (Group, error)
		QueryGroupsByRegion(ctx context.Context, regionID string) ([]Group, error)
		QueryGroupsAdministeredBy(ctx context.Context, userID string) ([]Group, error)
		UpdateGroup(ctx context.Context, grp Group) (Group, error)
		DeleteGroupsByID(ctx context.Context, ids ...string) error

		AddMember(ctx context.Context, mbr Membership) (Membership, error)
		RemoveMember(ctx context.Context, groupID, userID string) error
		GetMembership(ctx context.Context, groupID, userID string) (Membership, error)
		UpdateMembershipRole(ctx context.Context, groupID, userID, role string) (Membership, error)
		QueryMembers(ctx context.Context, groupID string) ([]Member, error)
		QueryGroupsByMember(ctx context.Context, userID string) ([]Group, error)

		// membership resolver projections; counts are live and uncached
		MemberCount(ctx context.Context, groupID string) (int, error)
		MemberCountsByGroup(ctx context.Context, groupIDs []string) (map[string]int, error)
		GroupIDsByRegion(ctx context.Context, regionID string) ([]string, error)
		QueryDemographics(ctx context.Context, groupID string) (Demographics, error)
	}

	Service interface {
		Create(ctx context.Context, ng NewGroup) (Group, error)
		QueryAll(ctx context.Context) ([]Group, error)
		GetByID(ctx context.Context, id string) (Group, error)
		QueryByRegion(ctx context.Context, regionID string) ([]Group, error)
		QueryAdministeredBy(ctx context.Context, userID string) ([]Group, error)
		QueryByMember(ctx context.Context, userID string) ([]Group, error)
		Update(ctx context.Context, id string, ug UpdateGroup) (Group, error)
		Delete(ctx context.Context, ids ...string) error
		CheckNameUniqueness(ctx context.Context, name string, regionID null.String) error

		AddMember(ctx context.Context, groupID string, nm NewMember) (Membership, error)
		RemoveMember(ctx context.Context, groupID, userID string) error
		QueryMembers(ctx context.Context, groupID string) ([]Member, error)
		AssignAdmin(ctx context.Context, aa AssignAdmin) (Group, error)

		MemberCount(ctx context.Context, groupID string) (int, error)
		Demographics(ctx context.Context, groupID string) (Demographics, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckNameUniqueness(ctx context.Context, name string, regionID null.String) error {
	if err := svc.repo.CheckGroupNameUniqueness(ctx, name, regionID); err != nil {
		if errors.Cause(err) == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		Name:         ng.Name,
		RegionID:     ng.RegionID,
		GroupAdminID: ng.GroupAdminID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	grp, err := svc.repo.CreateGroup(ctx, grp)
	if err != nil {
		return Group{}, err
	}
	// the designated admin is also a member
	if grp.GroupAdminID.Valid {
		_, err = svc.addMemberWithRole(ctx, grp.ID, grp.GroupAdminID.String, user.RoleAdmin)
		if err != nil && errors.Cause(err) != ErrMemberExists {
			return Group{}, err
		}
	}
	return grp, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *service) QueryByRegion(ctx context.Context, regionID string) ([]Group, error) {
	return svc.repo.QueryGroupsByRegion(ctx, regionID)
}

func (svc *service) QueryAdministeredBy(ctx context.Context, userID string) ([]Group, error) {
	return svc.repo.QueryGroupsAdministeredBy(ctx, userID)
}

func (svc *service) QueryByMember(ctx context.Context, userID string) ([]Group, error) {
	return svc.repo.QueryGroupsByMember(ctx, userID)
}

func (svc *service) Update(ctx context.Context, id string, ug UpdateGroup) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	grp.Name = ug.Name
	grp.RegionID = ug.RegionID
	if ug.GroupAdminID.Valid {
		grp.GroupAdminID = ug.GroupAdminID
	}
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}

func (svc *service) AddMember(ctx context.Context, groupID string, nm NewMember) (Membership, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return Membership{}, err
	}
	return svc.addMemberWithRole(ctx, groupID, nm.UserID, nm.Role)
}

func (svc *service) addMemberWithRole(ctx context.Context, groupID, userID, role string) (Membership, error) {
	now := time.Now().UTC()
	mbr := Membership{
		UserID:    userID,
		GroupID:   groupID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	mbr, err := svc.repo.AddMember(ctx, mbr)
	if err != nil {
		if errors.Cause(err) == ErrMemberExists {
			return Membership{}, core.NewValidationError(err, core.FieldError{Field: "user_id", Error: err.Error()})
		}
		return Membership{}, err
	}
	return mbr, nil
}

func (svc *service) RemoveMember(ctx context.Context, groupID, userID string) error {
	return svc.repo.RemoveMember(ctx, groupID, userID)
}

func (svc *service) QueryMembers(ctx context.Context, groupID string) ([]Member, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return nil, err
	}
	return svc.repo.QueryMembers(ctx, groupID)
}

// AssignAdmin sets the group's admin and upgrades (or creates) the user's membership
// with the admin role.
func (svc *service) AssignAdmin(ctx context.Context, aa AssignAdmin) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, aa.GroupID)
	if err != nil {
		return Group{}, err
	}
	if _, err = svc.repo.GetMembership(ctx, aa.GroupID, aa.UserID); err != nil {
		if errors.Cause(err) != ErrMemberMissing {
			return Group{}, err
		}
		if _, err = svc.addMemberWithRole(ctx, aa.GroupID, aa.UserID, user.RoleAdmin); err != nil {
			return Group{}, err
		}
	} else {
		if _, err = svc.repo.UpdateMembershipRole(ctx, aa.GroupID, aa.UserID, user.RoleAdmin); err != nil {
			return Group{}, err
		}
	}
	grp.GroupAdminID = null.StringFrom(aa.UserID)
	grp.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGroup(ctx, grp)
}

func (svc *service) MemberCount(ctx context.Context, groupID string) (int, error) {
	return svc.repo.MemberCount(ctx, groupID)
}

func (svc *service) Demographics(ctx context.Context, groupID string) (Demographics, error) {
	if _, err := svc.repo.GetGroupByID(ctx, groupID); err != nil {
		return Demographics{}, err
	}
	return svc.repo.QueryDemographics(ctx, groupID)
}
