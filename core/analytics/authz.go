package analytics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

// authorize checks that caller's role and region/group affiliation cover the
// requested scope. A group lookup is folded into the check so that a missing
// group and an out-of-scope group are indistinguishable to the caller.
func (svc *service) authorize(ctx context.Context, caller user.User, scope, scopeID string) error {
	if caller.IsSuperAdmin() {
		return nil
	}

	switch scope {
	case ScopeRegion:
		if caller.IsRegionManager() && caller.RegionID.Valid && caller.RegionID.String == scopeID {
			return nil
		}

	case ScopeGroup:
		if caller.IsRegionManager() {
			grp, err := svc.groups.GetGroupByID(ctx, scopeID)
			if err != nil {
				if errors.Cause(err) == group.ErrNotFound {
					return ErrForbidden
				}
				return err
			}
			if caller.RegionID.Valid && grp.RegionID.Valid && grp.RegionID.String == caller.RegionID.String {
				return nil
			}
			return ErrForbidden
		}
		if caller.IsAdmin() {
			mbr, err := svc.groups.GetMembership(ctx, scopeID, caller.ID)
			if err == nil && mbr.Role == user.RoleAdmin {
				return nil
			}
			if err != nil && errors.Cause(err) != group.ErrMemberMissing {
				return err
			}
			grp, err := svc.groups.GetGroupByID(ctx, scopeID)
			if err != nil {
				if errors.Cause(err) == group.ErrNotFound {
					return ErrForbidden
				}
				return err
			}
			if grp.GroupAdminID.Valid && grp.GroupAdminID.String == caller.ID {
				return nil
			}
		}
	}
	return ErrForbidden
}
