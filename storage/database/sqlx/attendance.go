package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	query := `
		INSERT INTO attendance (id, user_id, event_id, present, apology, topic, aob, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		att.ID, att.UserID, att.EventID, att.Present, att.Apology, att.Topic, att.Aob, att.CreatedAt, att.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "attendance_user_id_event_id_key") {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
		return attendance.Attendance{}, errors.Wrap(err, "creating attendance")
	}
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceByID(ctx context.Context, id string) (attendance.Attendance, error) {
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrNotFound
		}
		return attendance.Attendance{}, errors.Wrap(err, "getting attendance")
	}
	return row.toAttendance(), nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	query := `
		UPDATE attendance
		SET present = $1, apology = $2, topic = $3, aob = $4, updated_at = $5
		WHERE id = $6`
	res, err := repo.db.ExecContext(ctx, query,
		att.Present, att.Apology, att.Topic, att.Aob, att.UpdatedAt, att.ID)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "updating attendance")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return att, nil
}

func (repo *attendanceRepository) DeleteAttendanceByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM attendance WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return nil
}

func (repo *attendanceRepository) QueryByEvent(ctx context.Context, eventID string) ([]attendance.EventRecord, error) {
	type eventRecordRow struct {
		attendanceRow
		FullName string `db:"full_name"`
		Email    string `db:"email"`
	}
	var rows []eventRecordRow
	query := `
		SELECT a.*, u.full_name, u.email
		FROM attendance a
		         JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY u.full_name`
	if err := repo.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, errors.Wrap(err, "querying attendance by event")
	}
	records := make([]attendance.EventRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, attendance.EventRecord{
			Attendance: row.toAttendance(),
			FullName:   row.FullName,
			Email:      row.Email,
		})
	}
	return records, nil
}

func (repo *attendanceRepository) QueryByUser(ctx context.Context, userID string) ([]attendance.UserRecord, error) {
	type userRecordRow struct {
		attendanceRow
		EventTitle string    `db:"event_title"`
		EventDate  time.Time `db:"event_date"`
	}
	var rows []userRecordRow
	query := `
		SELECT a.*, e.title AS event_title, e.date AS event_date
		FROM attendance a
		         JOIN events e ON e.id = a.event_id
		WHERE a.user_id = $1
		ORDER BY e.date DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "querying attendance by user")
	}
	records := make([]attendance.UserRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, attendance.UserRecord{
			Attendance: row.toAttendance(),
			EventTitle: row.EventTitle,
			EventDate:  row.EventDate,
		})
	}
	return records, nil
}

func (repo *attendanceRepository) QueryAttendedMembers(ctx context.Context, eventID string) ([]attendance.AttendedMember, error) {
	var members []attendance.AttendedMember
	query := `
		SELECT u.id, u.full_name, u.email
		FROM attendance a
		         JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		  AND a.present = true
		ORDER BY u.full_name`
	rows, err := repo.db.QueryxContext(ctx, query, eventID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attended members")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var mbr attendance.AttendedMember
		if err = rows.Scan(&mbr.ID, &mbr.FullName, &mbr.Email); err != nil {
			return nil, errors.Wrap(err, "querying attended members")
		}
		members = append(members, mbr)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying attended members")
	}
	return members, nil
}

func (repo *attendanceRepository) GetStatus(ctx context.Context, eventID, userID string) (bool, error) {
	var present bool
	query := `SELECT present FROM attendance WHERE event_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &present, query, eventID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, attendance.ErrNotFound
		}
		return false, errors.Wrap(err, "getting attendance status")
	}
	return present, nil
}

func (repo *attendanceRepository) DistinctPresentCountByGroup(ctx context.Context, groupID string) (int, error) {
	var count int
	query := `
		SELECT count(DISTINCT a.user_id)
		FROM attendance a
		         JOIN events e ON e.id = a.event_id
		WHERE e.group_id = $1
		  AND a.present = true`
	if err := repo.db.GetContext(ctx, &count, query, groupID); err != nil {
		return 0, errors.Wrap(err, "counting present users")
	}
	return count, nil
}

func (repo *attendanceRepository) PresentCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	query, args, err := sqlx.In(`
		SELECT event_id, count(id) AS count
		FROM attendance
		WHERE event_id IN (?)
		  AND present = true
		GROUP BY event_id`, eventIDs)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	rows, err := repo.db.QueryxContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "counting present by event")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var eventID string
		var count int
		if err = rows.Scan(&eventID, &count); err != nil {
			return nil, errors.Wrap(err, "counting present by event")
		}
		counts[eventID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "counting present by event")
	}
	return counts, nil
}
