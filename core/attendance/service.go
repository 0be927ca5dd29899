package attendance

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/group"
)

var (
	// errors
	ErrNotFound     = errors.New("attendance record not found")
	ErrRecordExists = errors.New("attendance for this user and event is already recorded")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendanceByID(ctx context.Context, id string) (Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		DeleteAttendanceByID(ctx context.Context, ids ...string) error
		QueryByEvent(ctx context.Context, eventID string) ([]EventRecord, error)
		QueryByUser(ctx context.Context, userID string) ([]UserRecord, error)
		QueryAttendedMembers(ctx context.Context, eventID string) ([]AttendedMember, error)
		GetStatus(ctx context.Context, eventID, userID string) (bool, error)
		// DistinctPresentCountByGroup counts distinct users ever marked present
		// at any of the group's events.
		DistinctPresentCountByGroup(ctx context.Context, groupID string) (int, error)
		// PresentCountsByEvent returns, for each of eventIDs, the number of
		// records with present=true. Events with no records are absent from the map.
		PresentCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error)
	}

	Service interface {
		Record(ctx context.Context, eventID string, na NewAttendance) (Attendance, error)
		GetByID(ctx context.Context, id string) (Attendance, error)
		Update(ctx context.Context, id string, ua UpdateAttendance) (Attendance, error)
		Delete(ctx context.Context, ids ...string) error
		QueryByEvent(ctx context.Context, eventID string) ([]EventRecord, error)
		QueryByUser(ctx context.Context, userID string) ([]UserRecord, error)
		QueryAttendedMembers(ctx context.Context, eventID string) ([]AttendedMember, error)
		Status(ctx context.Context, eventID, userID string) (bool, error)
		GroupPercentage(ctx context.Context, groupID string) (GroupPercentage, error)
	}

	service struct {
		repo     Repository
		groupSvc group.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, groupSvc group.Service) Service {
	return &service{
		repo:     repo,
		groupSvc: groupSvc,
	}
}

func (svc *service) Record(ctx context.Context, eventID string, na NewAttendance) (Attendance, error) {
	now := time.Now().UTC()
	att := Attendance{
		UserID:    na.UserID,
		EventID:   eventID,
		Present:   na.IsPresent(),
		Apology:   na.Apology,
		Topic:     na.Topic,
		Aob:       na.Aob,
		CreatedAt: now,
		UpdatedAt: now,
	}
	att, err := svc.repo.CreateAttendance(ctx, att)
	if err != nil {
		if errors.Cause(err) == ErrRecordExists {
			return Attendance{}, core.NewValidationError(err, core.FieldError{Field: "user_id", Error: err.Error()})
		}
		return Attendance{}, err
	}
	return att, nil
}

func (svc *service) GetByID(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendanceByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAttendance) (Attendance, error) {
	att, err := svc.repo.GetAttendanceByID(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	if ua.Present != nil {
		att.Present = *ua.Present
	}
	if ua.Apology.Valid {
		att.Apology = ua.Apology
	}
	if ua.Topic.Valid {
		att.Topic = ua.Topic
	}
	if ua.Aob.Valid {
		att.Aob = ua.Aob
	}
	att.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttendance(ctx, att)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteAttendanceByID(ctx, ids...)
}

func (svc *service) QueryByEvent(ctx context.Context, eventID string) ([]EventRecord, error) {
	return svc.repo.QueryByEvent(ctx, eventID)
}

func (svc *service) QueryByUser(ctx context.Context, userID string) ([]UserRecord, error) {
	return svc.repo.QueryByUser(ctx, userID)
}

func (svc *service) QueryAttendedMembers(ctx context.Context, eventID string) ([]AttendedMember, error) {
	return svc.repo.QueryAttendedMembers(ctx, eventID)
}

func (svc *service) Status(ctx context.Context, eventID, userID string) (bool, error) {
	return svc.repo.GetStatus(ctx, eventID, userID)
}

func (svc *service) GroupPercentage(ctx context.Context, groupID string) (GroupPercentage, error) {
	if _, err := svc.groupSvc.GetByID(ctx, groupID); err != nil {
		return GroupPercentage{}, err
	}
	presentCount, err := svc.repo.DistinctPresentCountByGroup(ctx, groupID)
	if err != nil {
		return GroupPercentage{}, err
	}
	memberCount, err := svc.groupSvc.MemberCount(ctx, groupID)
	if err != nil {
		return GroupPercentage{}, err
	}
	var pct float64
	if memberCount > 0 {
		pct = math.Round(float64(presentCount)/float64(memberCount)*100*100) / 100
	}
	return GroupPercentage{
		PresentCount: presentCount,
		MemberCount:  memberCount,
		Percentage:   pct,
	}, nil
}
