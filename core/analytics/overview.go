package analytics

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core/event"
	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type (
	// EventReader is the event read surface the aggregator needs.
	EventReader interface {
		QueryEventsInRange(ctx context.Context, start, end time.Time) ([]event.Event, error)
		QueryEventsByGroupsInRange(ctx context.Context, groupIDs []string, start, end time.Time) ([]event.Event, error)
	}

	// MembershipResolver supplies live membership denominators and the group
	// lookups authorization depends on.
	MembershipResolver interface {
		GetGroupByID(ctx context.Context, id string) (group.Group, error)
		GetMembership(ctx context.Context, groupID, userID string) (group.Membership, error)
		MemberCountsByGroup(ctx context.Context, groupIDs []string) (map[string]int, error)
		GroupIDsByRegion(ctx context.Context, regionID string) ([]string, error)
	}

	// AttendanceReader supplies batched present counts.
	AttendanceReader interface {
		PresentCountsByEvent(ctx context.Context, eventIDs []string) (map[string]int, error)
	}

	Service interface {
		Overview(ctx context.Context, caller user.User, req OverviewRequest) (Overview, error)
	}

	service struct {
		events     EventReader
		groups     MembershipResolver
		attendance AttendanceReader
	}
)

var _ Service = (*service)(nil)

func NewService(events EventReader, groups MembershipResolver, attendance AttendanceReader) Service {
	return &service{
		events:     events,
		groups:     groups,
		attendance: attendance,
	}
}

// Overview aggregates attendance into period buckets for the requested scope.
// Read-only; identical inputs with no intervening writes yield identical output.
func (svc *service) Overview(ctx context.Context, caller user.User, req OverviewRequest) (Overview, error) {
	period, buckets, err := BuildBuckets(req.Period, time.Now().UTC())
	if err != nil {
		return Overview{}, err
	}

	scope := strings.ToLower(strings.TrimSpace(req.Scope))
	if scope == "" {
		scope = ScopeOverall
	}
	switch scope {
	case ScopeOverall, ScopeRegion, ScopeGroup:
	default:
		return Overview{}, ErrInvalidScope
	}
	if scope == ScopeGroup && req.ScopeID == "" {
		return Overview{}, ErrMissingGroupID
	}
	if scope == ScopeRegion && req.ScopeID == "" {
		return Overview{}, ErrMissingRegionID
	}

	if err = svc.authorize(ctx, caller, scope, req.ScopeID); err != nil {
		return Overview{}, err
	}

	rangeStart := buckets[0].StartDate
	rangeEnd := buckets[len(buckets)-1].EndDate

	events, err := svc.queryScopedEvents(ctx, scope, req.ScopeID, rangeStart, rangeEnd)
	if err != nil {
		return Overview{}, err
	}
	if len(events) == 0 {
		return formatOverview(scope, req.ScopeID, period, buckets), nil
	}

	eventIDs := make([]string, 0, len(events))
	groupIDSet := make(map[string]struct{})
	for _, evt := range events {
		eventIDs = append(eventIDs, evt.ID)
		groupIDSet[evt.GroupID] = struct{}{}
	}
	groupIDs := make([]string, 0, len(groupIDSet))
	for id := range groupIDSet {
		groupIDs = append(groupIDs, id)
	}

	// the two batched sub-queries are independent reads; fan out and join
	var (
		wg            sync.WaitGroup
		presentCounts map[string]int
		memberCounts  map[string]int
		presentErr    error
		memberErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		presentCounts, presentErr = svc.attendance.PresentCountsByEvent(ctx, eventIDs)
	}()
	go func() {
		defer wg.Done()
		memberCounts, memberErr = svc.groups.MemberCountsByGroup(ctx, groupIDs)
	}()
	wg.Wait()
	if presentErr != nil {
		return Overview{}, presentErr
	}
	if memberErr != nil {
		return Overview{}, memberErr
	}

	for _, evt := range events {
		idx := findBucket(buckets, evt.Date)
		if idx < 0 {
			// out of range (clock skew); drop silently
			continue
		}
		buckets[idx].EventCount++
		buckets[idx].TotalPossible += memberCounts[evt.GroupID]
		buckets[idx].PresentCount += presentCounts[evt.ID]
	}
	for i := range buckets {
		buckets[i].AttendanceRate = rate(buckets[i].PresentCount, buckets[i].TotalPossible)
	}

	return formatOverview(scope, req.ScopeID, period, buckets), nil
}

func (svc *service) queryScopedEvents(ctx context.Context, scope, scopeID string, start, end time.Time) ([]event.Event, error) {
	switch scope {
	case ScopeGroup:
		return svc.events.QueryEventsByGroupsInRange(ctx, []string{scopeID}, start, end)
	case ScopeRegion:
		groupIDs, err := svc.groups.GroupIDsByRegion(ctx, scopeID)
		if err != nil {
			return nil, err
		}
		if len(groupIDs) == 0 {
			return nil, nil
		}
		return svc.events.QueryEventsByGroupsInRange(ctx, groupIDs, start, end)
	default:
		return svc.events.QueryEventsInRange(ctx, start, end)
	}
}

// formatOverview shapes buckets into the response envelope, summing the
// summary across buckets.
func formatOverview(scope, scopeID, period string, buckets []Bucket) Overview {
	var summary Summary
	for _, b := range buckets {
		summary.EventCount += b.EventCount
		summary.TotalPossible += b.TotalPossible
		summary.PresentCount += b.PresentCount
	}
	summary.AttendanceRate = rate(summary.PresentCount, summary.TotalPossible)

	var sid null.String
	if scopeID != "" {
		sid = null.StringFrom(scopeID)
	}
	return Overview{
		Scope:   scope,
		ScopeID: sid,
		Period:  period,
		Buckets: buckets,
		Summary: summary,
	}
}

// rate returns present/possible as a percentage rounded to 2 decimal places,
// 0 when possible is 0.
func rate(present, possible int) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(float64(present)/float64(possible)*100*100) / 100
}
