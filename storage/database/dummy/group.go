package dummydb

import (
	"context"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) query() []group.Group {
	groups := make([]group.Group, 0, len(repo.db.group.table))
	for _, g := range repo.db.group.table {
		groups = append(groups, *g)
	}
	return groups
}

func (repo *groupRepository) queryMemberships() []group.Membership {
	mbrs := make([]group.Membership, 0, len(repo.db.group.memberships))
	for _, m := range repo.db.group.memberships {
		mbrs = append(mbrs, *m)
	}
	return mbrs
}

func (repo *groupRepository) CheckGroupNameUniqueness(_ context.Context, name string, regionID null.String) error {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	for _, grp := range repo.query() {
		if grp.Name == name && grp.RegionID == regionID {
			return group.ErrNameExists
		}
	}
	return nil
}

func (repo *groupRepository) CreateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	grp.ID = uuid.New().String()
	repo.db.group.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(_ context.Context) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	return repo.query(), nil
}

func (repo *groupRepository) GetGroupByID(_ context.Context, id string) (group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	if grp, ok := repo.db.group.table[id]; ok {
		return *grp, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) QueryGroupsByRegion(_ context.Context, regionID string) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	var groups []group.Group
	for _, grp := range repo.query() {
		if grp.RegionID.Valid && grp.RegionID.String == regionID {
			groups = append(groups, grp)
		}
	}
	return groups, nil
}

func (repo *groupRepository) QueryGroupsAdministeredBy(_ context.Context, userID string) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	adminGroupIDs := make(map[string]struct{})
	for _, mbr := range repo.queryMemberships() {
		if mbr.UserID == userID && mbr.Role == user.RoleAdmin {
			adminGroupIDs[mbr.GroupID] = struct{}{}
		}
	}
	var groups []group.Group
	for _, grp := range repo.query() {
		_, isAdmin := adminGroupIDs[grp.ID]
		if isAdmin || (grp.GroupAdminID.Valid && grp.GroupAdminID.String == userID) {
			groups = append(groups, grp)
		}
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	if _, ok := repo.db.group.table[grp.ID]; !ok {
		return group.Group{}, group.ErrNotFound
	}
	repo.db.group.table[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) DeleteGroupsByID(_ context.Context, ids ...string) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()
	for _, id := range ids {
		delete(repo.db.group.table, id)
		for mid, mbr := range repo.db.group.memberships {
			if mbr.GroupID == id {
				delete(repo.db.group.memberships, mid)
			}
		}
	}
	return nil
}

func (repo *groupRepository) AddMember(_ context.Context, mbr group.Membership) (group.Membership, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	for _, m := range repo.queryMemberships() {
		if m.UserID == mbr.UserID && m.GroupID == mbr.GroupID {
			return group.Membership{}, group.ErrMemberExists
		}
	}
	mbr.ID = uuid.New().String()
	repo.db.group.memberships[mbr.ID] = &mbr
	return mbr, nil
}

func (repo *groupRepository) RemoveMember(_ context.Context, groupID, userID string) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	for id, mbr := range repo.db.group.memberships {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			delete(repo.db.group.memberships, id)
			return nil
		}
	}
	return group.ErrMemberMissing
}

func (repo *groupRepository) GetMembership(_ context.Context, groupID, userID string) (group.Membership, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	for _, mbr := range repo.queryMemberships() {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			return mbr, nil
		}
	}
	return group.Membership{}, group.ErrMemberMissing
}

func (repo *groupRepository) UpdateMembershipRole(_ context.Context, groupID, userID, role string) (group.Membership, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	for _, mbr := range repo.db.group.memberships {
		if mbr.GroupID == groupID && mbr.UserID == userID {
			mbr.Role = role
			return *mbr, nil
		}
	}
	return group.Membership{}, group.ErrMemberMissing
}

func (repo *groupRepository) QueryMembers(_ context.Context, groupID string) ([]group.Member, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var members []group.Member
	for _, mbr := range repo.queryMemberships() {
		if mbr.GroupID != groupID {
			continue
		}
		if usr, ok := repo.db.user.table[mbr.UserID]; ok {
			members = append(members, group.Member{User: *usr, MembershipRole: mbr.Role})
		}
	}
	return members, nil
}

func (repo *groupRepository) QueryGroupsByMember(_ context.Context, userID string) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	memberGroupIDs := make(map[string]struct{})
	for _, mbr := range repo.queryMemberships() {
		if mbr.UserID == userID {
			memberGroupIDs[mbr.GroupID] = struct{}{}
		}
	}
	var groups []group.Group
	for _, grp := range repo.query() {
		if _, ok := memberGroupIDs[grp.ID]; ok {
			groups = append(groups, grp)
		}
	}
	return groups, nil
}

func (repo *groupRepository) MemberCount(_ context.Context, groupID string) (int, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	var count int
	for _, mbr := range repo.queryMemberships() {
		if mbr.GroupID == groupID {
			count++
		}
	}
	return count, nil
}

func (repo *groupRepository) MemberCountsByGroup(_ context.Context, groupIDs []string) (map[string]int, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	wanted := make(map[string]struct{}, len(groupIDs))
	for _, id := range groupIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[string]int)
	for _, mbr := range repo.queryMemberships() {
		if _, ok := wanted[mbr.GroupID]; ok {
			counts[mbr.GroupID]++
		}
	}
	return counts, nil
}

func (repo *groupRepository) GroupIDsByRegion(_ context.Context, regionID string) ([]string, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	var ids []string
	for _, grp := range repo.query() {
		if grp.RegionID.Valid && grp.RegionID.String == regionID {
			ids = append(ids, grp.ID)
		}
	}
	return ids, nil
}

func (repo *groupRepository) QueryDemographics(_ context.Context, groupID string) (group.Demographics, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	demo := group.Demographics{
		GenderDistribution: make(map[string]int),
		RoleDistribution:   make(map[string]int),
	}
	for _, mbr := range repo.queryMemberships() {
		if mbr.GroupID != groupID {
			continue
		}
		usr, ok := repo.db.user.table[mbr.UserID]
		if !ok {
			continue
		}
		gender := "unknown"
		if usr.Gender.Valid && usr.Gender.String != "" {
			gender = usr.Gender.String
		}
		demo.GenderDistribution[gender]++
		demo.RoleDistribution[usr.Role]++
	}
	return demo, nil
}
