package analytics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// Scopes.
const (
	ScopeOverall = "overall"
	ScopeRegion  = "region"
	ScopeGroup   = "group"
)

var (
	// errors
	ErrInvalidPeriod   = errors.New("invalid period. Supported options: week, month, quarter, year")
	ErrInvalidScope    = errors.New("invalid scope. Supported options: overall, region, group")
	ErrMissingGroupID  = errors.New("groupId is required when scope is group")
	ErrMissingRegionID = errors.New("regionId is required when scope is region")
	ErrForbidden       = errors.New("access denied")
)

// IsBadRequest reports whether err is a request validation error.
func IsBadRequest(err error) bool {
	switch errors.Cause(err) {
	case ErrInvalidPeriod, ErrInvalidScope, ErrMissingGroupID, ErrMissingRegionID:
		return true
	}
	return false
}

// OverviewRequest is a validated-on-entry attendance overview query.
type OverviewRequest struct {
	Period  string
	Scope   string
	ScopeID string
}

// Bucket is one fixed time sub-interval of an overview, carrying its own
// aggregated counts.
type Bucket struct {
	Label          string    `json:"label"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	EventCount     int       `json:"eventCount"`
	TotalPossible  int       `json:"totalPossible"`
	PresentCount   int       `json:"presentCount"`
	AttendanceRate float64   `json:"attendanceRate"`
}

type Summary struct {
	EventCount     int     `json:"eventCount"`
	TotalPossible  int     `json:"totalPossible"`
	PresentCount   int     `json:"presentCount"`
	AttendanceRate float64 `json:"attendanceRate"`
}

type Overview struct {
	Scope   string      `json:"scope"`
	ScopeID null.String `json:"scopeId"`
	Period  string      `json:"period"`
	Buckets []Bucket    `json:"buckets"`
	Summary Summary     `json:"summary"`
}
