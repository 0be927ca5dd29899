package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

type Attendance struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	EventID   string      `json:"event_id"`
	Present   bool        `json:"present"`
	Apology   null.String `json:"apology"`
	Topic     null.String `json:"topic"`
	Aob       null.String `json:"aob"`
	CreatedAt time.Time   `json:"created_at"` // UTC
	UpdatedAt time.Time   `json:"updated_at"` // UTC
}

// EventRecord is an attendance record joined with the attendee's details,
// as returned by per-event listings.
type EventRecord struct {
	Attendance
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UserRecord is an attendance record joined with the event's details,
// as returned by per-user listings.
type UserRecord struct {
	Attendance
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
}

// AttendedMember is a user who was marked present at an event.
type AttendedMember struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// GroupPercentage reports the share of a group's members who have ever been
// marked present at one of its events. Member counts are live, so the figure
// drifts as membership changes.
type GroupPercentage struct {
	PresentCount int     `json:"present_count"`
	MemberCount  int     `json:"member_count"`
	Percentage   float64 `json:"percentage"`
}

// NewAttendance contains information needed to record attendance.
// The event comes from the URL, not the payload.
type NewAttendance struct {
	UserID  string      `json:"user_id" validate:"required,uuid4"`
	Present *bool       `json:"present"`
	Apology null.String `json:"apology"`
	Topic   null.String `json:"topic"`
	Aob     null.String `json:"aob"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// IsPresent defaults to true when unset, matching the column default.
func (na *NewAttendance) IsPresent() bool {
	if na.Present == nil {
		return true
	}
	return *na.Present
}

// UpdateAttendance defines what information may be provided to modify an
// existing Attendance record.
type UpdateAttendance struct {
	Present *bool       `json:"present"`
	Apology null.String `json:"apology"`
	Topic   null.String `json:"topic"`
	Aob     null.String `json:"aob"`
}

func (ua UpdateAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ua)
}
