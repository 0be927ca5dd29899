package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core/group"
)

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CheckGroupNameUniqueness(ctx context.Context, name string, regionID null.String) error {
	var count int
	query := `SELECT count(*) FROM groups WHERE name = $1 AND region_id IS NOT DISTINCT FROM $2`
	if err := repo.db.GetContext(ctx, &count, query, name, regionID); err != nil {
		return errors.Wrap(err, "checking group name uniqueness")
	}
	if count > 0 {
		return group.ErrNameExists
	}
	return nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	grp.ID = uuid.New().String()
	query := `
		INSERT INTO groups (id, name, region_id, group_admin_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query, grp.ID, grp.Name, grp.RegionID, grp.GroupAdminID, grp.CreatedAt, grp.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "groups_region_id_name_key") {
			return group.Group{}, group.ErrNameExists
		}
		return group.Group{}, errors.Wrap(err, "creating group")
	}
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM groups ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groupsFromRows(rows), nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id string) (group.Group, error) {
	var row groupRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM groups WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "getting group")
	}
	return row.toGroup(), nil
}

func (repo *groupRepository) QueryGroupsByRegion(ctx context.Context, regionID string) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM groups WHERE region_id = $1 ORDER BY name`, regionID); err != nil {
		return nil, errors.Wrap(err, "querying groups by region")
	}
	return groupsFromRows(rows), nil
}

func (repo *groupRepository) QueryGroupsAdministeredBy(ctx context.Context, userID string) ([]group.Group, error) {
	var rows []groupRow
	query := `
		SELECT DISTINCT g.*
		FROM groups g
		         LEFT JOIN users_groups ug ON ug.group_id = g.id AND ug.user_id = $1 AND ug.role = 'admin'
		WHERE ug.id IS NOT NULL
		   OR g.group_admin_id = $1
		ORDER BY g.name`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying administered groups")
	}
	return groupsFromRows(rows), nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	query := `
		UPDATE groups
		SET name = $1, region_id = $2, group_admin_id = $3, updated_at = $4
		WHERE id = $5`
	res, err := repo.db.ExecContext(ctx, query, grp.Name, grp.RegionID, grp.GroupAdminID, grp.UpdatedAt, grp.ID)
	if err != nil {
		if isUniqueViolation(err, "groups_region_id_name_key") {
			return group.Group{}, group.ErrNameExists
		}
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, group.ErrNotFound
	}
	return grp, nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM groups WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting groups")
	}
	return nil
}

func (repo *groupRepository) AddMember(ctx context.Context, mbr group.Membership) (group.Membership, error) {
	mbr.ID = uuid.New().String()
	query := `
		INSERT INTO users_groups (id, user_id, group_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query, mbr.ID, mbr.UserID, mbr.GroupID, mbr.Role, mbr.CreatedAt, mbr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_groups_user_id_group_id_key") {
			return group.Membership{}, group.ErrMemberExists
		}
		return group.Membership{}, errors.Wrap(err, "adding member")
	}
	return mbr, nil
}

func (repo *groupRepository) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM users_groups WHERE group_id = $1 AND user_id = $2`, groupID, userID)
	if err != nil {
		return errors.Wrap(err, "removing member")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.ErrMemberMissing
	}
	return nil
}

func (repo *groupRepository) GetMembership(ctx context.Context, groupID, userID string) (group.Membership, error) {
	var row membershipRow
	query := `SELECT * FROM users_groups WHERE group_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &row, query, groupID, userID); err != nil {
		if err == sql.ErrNoRows {
			return group.Membership{}, group.ErrMemberMissing
		}
		return group.Membership{}, errors.Wrap(err, "getting membership")
	}
	return row.toMembership(), nil
}

func (repo *groupRepository) UpdateMembershipRole(ctx context.Context, groupID, userID, role string) (group.Membership, error) {
	query := `
		UPDATE users_groups
		SET role = $1, updated_at = $2
		WHERE group_id = $3 AND user_id = $4`
	res, err := repo.db.ExecContext(ctx, query, role, time.Now().UTC(), groupID, userID)
	if err != nil {
		return group.Membership{}, errors.Wrap(err, "updating membership role")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Membership{}, group.ErrMemberMissing
	}
	return repo.GetMembership(ctx, groupID, userID)
}

func (repo *groupRepository) QueryMembers(ctx context.Context, groupID string) ([]group.Member, error) {
	var rows []memberRow
	query := `
		SELECT u.*, ug.role AS membership_role
		FROM users_groups ug
		         JOIN users u ON u.id = ug.user_id
		WHERE ug.group_id = $1
		ORDER BY u.full_name`
	if err := repo.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, errors.Wrap(err, "querying members")
	}
	members := make([]group.Member, 0, len(rows))
	for _, row := range rows {
		members = append(members, row.toMember())
	}
	return members, nil
}

func (repo *groupRepository) QueryGroupsByMember(ctx context.Context, userID string) ([]group.Group, error) {
	var rows []groupRow
	query := `
		SELECT g.*
		FROM users_groups ug
		         JOIN groups g ON g.id = ug.group_id
		WHERE ug.user_id = $1
		ORDER BY g.name`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying groups by member")
	}
	return groupsFromRows(rows), nil
}

func (repo *groupRepository) MemberCount(ctx context.Context, groupID string) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT count(*) FROM users_groups WHERE group_id = $1`, groupID); err != nil {
		return 0, errors.Wrap(err, "counting members")
	}
	return count, nil
}

func (repo *groupRepository) MemberCountsByGroup(ctx context.Context, groupIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(groupIDs))
	if len(groupIDs) == 0 {
		return counts, nil
	}
	query, args, err := sqlx.In(`
		SELECT group_id, count(user_id) AS count
		FROM users_groups
		WHERE group_id IN (?)
		GROUP BY group_id`, groupIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryxContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "counting members by group")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var groupID string
		var count int
		if err = rows.Scan(&groupID, &count); err != nil {
			return nil, errors.Wrap(err, "counting members by group")
		}
		counts[groupID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "counting members by group")
	}
	return counts, nil
}

func (repo *groupRepository) GroupIDsByRegion(ctx context.Context, regionID string) ([]string, error) {
	var ids []string
	if err := repo.db.SelectContext(ctx, &ids, `SELECT id FROM groups WHERE region_id = $1`, regionID); err != nil {
		return nil, errors.Wrap(err, "querying group ids by region")
	}
	return ids, nil
}

func (repo *groupRepository) QueryDemographics(ctx context.Context, groupID string) (group.Demographics, error) {
	demo := group.Demographics{
		GenderDistribution: make(map[string]int),
		RoleDistribution:   make(map[string]int),
	}
	query := `
		SELECT coalesce(u.gender, 'unknown') AS gender, u.role, count(u.id) AS count
		FROM users_groups ug
		         JOIN users u ON u.id = ug.user_id
		WHERE ug.group_id = $1
		GROUP BY u.gender, u.role`
	rows, err := repo.db.QueryxContext(ctx, query, groupID)
	if err != nil {
		return group.Demographics{}, errors.Wrap(err, "querying demographics")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var gender, role string
		var count int
		if err = rows.Scan(&gender, &role, &count); err != nil {
			return group.Demographics{}, errors.Wrap(err, "querying demographics")
		}
		demo.GenderDistribution[gender] += count
		demo.RoleDistribution[role] += count
	}
	if err = rows.Err(); err != nil {
		return group.Demographics{}, errors.Wrap(err, "querying demographics")
	}
	return demo, nil
}

func groupsFromRows(rows []groupRow) []group.Group {
	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toGroup())
	}
	return groups
}
