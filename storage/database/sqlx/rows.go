package sqlxrepos

import (
	"time"

	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core/attendance"
	"github.com/Purity-dev-614E/safari-backend/core/event"
	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/region"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

// pqUniqueViolation is the postgres error code for unique constraint violations.
const pqUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == pqUniqueViolation && pqErr.Constraint == constraint
	}
	return false
}

type userRow struct {
	ID               string      `db:"id"`
	AuthID           string      `db:"auth_id"`
	Email            string      `db:"email"`
	FullName         string      `db:"full_name"`
	PhoneNumber      null.String `db:"phone_number"`
	Gender           null.String `db:"gender"`
	ProfilePicture   null.String `db:"profile_picture"`
	Role             string      `db:"role"`
	Location         null.String `db:"location"`
	NextOfKinName    null.String `db:"next_of_kin_name"`
	NextOfKinContact null.String `db:"next_of_kin_contact"`
	RegionID         null.String `db:"region_id"`
	PasswordHash     []byte      `db:"password_hash"`
	LastLogin        null.Time   `db:"last_login"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (row userRow) toUser() user.User {
	usr := user.User{
		ID:               row.ID,
		AuthID:           row.AuthID,
		Email:            row.Email,
		FullName:         row.FullName,
		PhoneNumber:      row.PhoneNumber,
		Gender:           row.Gender,
		ProfilePicture:   row.ProfilePicture,
		Role:             row.Role,
		Location:         row.Location,
		NextOfKinName:    row.NextOfKinName,
		NextOfKinContact: row.NextOfKinContact,
		RegionID:         row.RegionID,
		PasswordHash:     row.PasswordHash,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time
	}
	return usr
}

func newUserRow(usr user.User) userRow {
	row := userRow{
		ID:               usr.ID,
		AuthID:           usr.AuthID,
		Email:            usr.Email,
		FullName:         usr.FullName,
		PhoneNumber:      usr.PhoneNumber,
		Gender:           usr.Gender,
		ProfilePicture:   usr.ProfilePicture,
		Role:             usr.Role,
		Location:         usr.Location,
		NextOfKinName:    usr.NextOfKinName,
		NextOfKinContact: usr.NextOfKinContact,
		RegionID:         usr.RegionID,
		PasswordHash:     usr.PasswordHash,
		CreatedAt:        usr.CreatedAt,
		UpdatedAt:        usr.UpdatedAt,
	}
	if !usr.LastLogin.IsZero() {
		row.LastLogin = null.TimeFrom(usr.LastLogin)
	}
	return row
}

type regionRow struct {
	ID          string      `db:"id"`
	Name        string      `db:"name"`
	Description null.String `db:"description"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row regionRow) toRegion() region.Region {
	return region.Region{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type groupRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	RegionID     null.String `db:"region_id"`
	GroupAdminID null.String `db:"group_admin_id"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row groupRow) toGroup() group.Group {
	return group.Group{
		ID:           row.ID,
		Name:         row.Name,
		RegionID:     row.RegionID,
		GroupAdminID: row.GroupAdminID,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type membershipRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	GroupID   string    `db:"group_id"`
	Role      string    `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row membershipRow) toMembership() group.Membership {
	return group.Membership{
		ID:        row.ID,
		UserID:    row.UserID,
		GroupID:   row.GroupID,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type memberRow struct {
	userRow
	MembershipRole string `db:"membership_role"`
}

func (row memberRow) toMember() group.Member {
	return group.Member{
		User:           row.toUser(),
		MembershipRole: row.MembershipRole,
	}
}

type eventRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	Date        time.Time   `db:"date"`
	Location    null.String `db:"location"`
	GroupID     string      `db:"group_id"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (row eventRow) toEvent() event.Event {
	return event.Event{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Date:        row.Date,
		Location:    row.Location,
		GroupID:     row.GroupID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

type attendanceRow struct {
	ID        string      `db:"id"`
	UserID    string      `db:"user_id"`
	EventID   string      `db:"event_id"`
	Present   bool        `db:"present"`
	Apology   null.String `db:"apology"`
	Topic     null.String `db:"topic"`
	Aob       null.String `db:"aob"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (row attendanceRow) toAttendance() attendance.Attendance {
	return attendance.Attendance{
		ID:        row.ID,
		UserID:    row.UserID,
		EventID:   row.EventID,
		Present:   row.Present,
		Apology:   row.Apology,
		Topic:     row.Topic,
		Aob:       row.Aob,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
