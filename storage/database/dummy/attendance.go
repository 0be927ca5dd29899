package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Purity-dev-614E/safari-backend/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Attendance {
	records := make([]attendance.Attendance, 0, len(repo.db.attendance.table))
	for _, a := range repo.db.attendance.table {
		records = append(records, *a)
	}
	return records
}

func (repo *attendanceRepository) CreateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	for _, a := range repo.query() {
		if a.UserID == att.UserID && a.EventID == att.EventID {
			return attendance.Attendance{}, attendance.ErrRecordExists
		}
	}
	att.ID = uuid.New().String()
	repo.db.attendance.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceByID(_ context.Context, id string) (attendance.Attendance, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	if att, ok := repo.db.attendance.table[id]; ok {
		return *att, nil
	}
	return attendance.Attendance{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) UpdateAttendance(_ context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	if _, ok := repo.db.attendance.table[att.ID]; !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	repo.db.attendance.table[att.ID] = &att
	return att, nil
}

func (repo *attendanceRepository) DeleteAttendanceByID(_ context.Context, ids ...string) error {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()
	for _, id := range ids {
		delete(repo.db.attendance.table, id)
	}
	return nil
}

func (repo *attendanceRepository) QueryByEvent(_ context.Context, eventID string) ([]attendance.EventRecord, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var records []attendance.EventRecord
	for _, att := range repo.query() {
		if att.EventID != eventID {
			continue
		}
		rec := attendance.EventRecord{Attendance: att}
		if usr, ok := repo.db.user.table[att.UserID]; ok {
			rec.FullName = usr.FullName
			rec.Email = usr.Email
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *attendanceRepository) QueryByUser(_ context.Context, userID string) ([]attendance.UserRecord, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()
	repo.db.event.RLock()
	defer repo.db.event.RUnlock()

	var records []attendance.UserRecord
	for _, att := range repo.query() {
		if att.UserID != userID {
			continue
		}
		rec := attendance.UserRecord{Attendance: att}
		if evt, ok := repo.db.event.table[att.EventID]; ok {
			rec.EventTitle = evt.Title
			rec.EventDate = evt.Date
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo *attendanceRepository) QueryAttendedMembers(_ context.Context, eventID string) ([]attendance.AttendedMember, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var members []attendance.AttendedMember
	for _, att := range repo.query() {
		if att.EventID != eventID || !att.Present {
			continue
		}
		if usr, ok := repo.db.user.table[att.UserID]; ok {
			members = append(members, attendance.AttendedMember{
				ID:       usr.ID,
				FullName: usr.FullName,
				Email:    usr.Email,
			})
		}
	}
	return members, nil
}

func (repo *attendanceRepository) GetStatus(_ context.Context, eventID, userID string) (bool, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	for _, att := range repo.query() {
		if att.EventID == eventID && att.UserID == userID {
			return att.Present, nil
		}
	}
	return false, attendance.ErrNotFound
}

func (repo *attendanceRepository) DistinctPresentCountByGroup(_ context.Context, groupID string) (int, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()
	repo.db.event.RLock()
	defer repo.db.event.RUnlock()

	groupEventIDs := make(map[string]struct{})
	for _, evt := range repo.db.event.table {
		if evt.GroupID == groupID {
			groupEventIDs[evt.ID] = struct{}{}
		}
	}
	presentUsers := make(map[string]struct{})
	for _, att := range repo.query() {
		if !att.Present {
			continue
		}
		if _, ok := groupEventIDs[att.EventID]; ok {
			presentUsers[att.UserID] = struct{}{}
		}
	}
	return len(presentUsers), nil
}

func (repo *attendanceRepository) PresentCountsByEvent(_ context.Context, eventIDs []string) (map[string]int, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	wanted := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		wanted[id] = struct{}{}
	}
	counts := make(map[string]int)
	for _, att := range repo.query() {
		if !att.Present {
			continue
		}
		if _, ok := wanted[att.EventID]; ok {
			counts[att.EventID]++
		}
	}
	return counts, nil
}
