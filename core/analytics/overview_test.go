package analytics_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/Purity-dev-614E/safari-backend/core/analytics"
	"github.com/Purity-dev-614E/safari-backend/core/attendance"
	"github.com/Purity-dev-614E/safari-backend/core/event"
	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/region"
	"github.com/Purity-dev-614E/safari-backend/core/user"
	dummydb "github.com/Purity-dev-614E/safari-backend/storage/database/dummy"
)

type overviewFixture struct {
	svc      analytics.Service
	userRepo user.Repository
	grpRepo  group.Repository
	evtRepo  event.Repository
	attRepo  attendance.Repository

	regionA region.Region
	regionB region.Region

	superAdmin user.User
	regionMgrA user.User
	plainUser  user.User
}

func newOverviewFixture(t *testing.T) *overviewFixture {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	fix := &overviewFixture{
		userRepo: dummydb.NewUserRepository(db),
		grpRepo:  dummydb.NewGroupRepository(db),
		evtRepo:  dummydb.NewEventRepository(db),
		attRepo:  dummydb.NewAttendanceRepository(db),
	}
	fix.svc = analytics.NewService(fix.evtRepo, fix.grpRepo, fix.attRepo)

	ctx := context.Background()
	fix.regionA, err = dummydb.NewRegionRepository(db).CreateRegion(ctx, region.Region{Name: region.Kilimani})
	require.NoError(t, err)
	fix.regionB, err = dummydb.NewRegionRepository(db).CreateRegion(ctx, region.Region{Name: region.Langata})
	require.NoError(t, err)

	fix.superAdmin = fix.createUser(t, "root@safari.test", user.RoleSuperAdmin, "")
	fix.regionMgrA = fix.createUser(t, "mgr.a@safari.test", user.RoleRegionManager, fix.regionA.ID)
	fix.plainUser = fix.createUser(t, "member@safari.test", user.RoleUser, "")
	return fix
}

func (fix *overviewFixture) createUser(t *testing.T, email, role, regionID string) user.User {
	t.Helper()
	usr := user.User{Email: email, FullName: email, Role: role}
	if regionID != "" {
		usr.RegionID = null.StringFrom(regionID)
	}
	usr, err := fix.userRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

// createGroup creates a group in a region with memberCount members and returns
// the group plus its members.
func (fix *overviewFixture) createGroup(t *testing.T, name, regionID string, memberCount int) (group.Group, []user.User) {
	t.Helper()
	ctx := context.Background()
	grp, err := fix.grpRepo.CreateGroup(ctx, group.Group{Name: name, RegionID: null.StringFrom(regionID)})
	require.NoError(t, err)

	members := make([]user.User, 0, memberCount)
	for i := 0; i < memberCount; i++ {
		usr := fix.createUser(t, fmt.Sprintf("%s.member%d@safari.test", name, i), user.RoleUser, "")
		_, err = fix.grpRepo.AddMember(ctx, group.Membership{UserID: usr.ID, GroupID: grp.ID, Role: user.RoleUser})
		require.NoError(t, err)
		members = append(members, usr)
	}
	return grp, members
}

func (fix *overviewFixture) createEvent(t *testing.T, grp group.Group, date time.Time) event.Event {
	t.Helper()
	evt, err := fix.evtRepo.CreateEvent(context.Background(), event.Event{
		Title:   "meetup",
		Date:    date,
		GroupID: grp.ID,
	})
	require.NoError(t, err)
	return evt
}

func (fix *overviewFixture) markPresent(t *testing.T, evt event.Event, members []user.User, count int) {
	t.Helper()
	require.LessOrEqual(t, count, len(members))
	for i := 0; i < count; i++ {
		_, err := fix.attRepo.CreateAttendance(context.Background(), attendance.Attendance{
			UserID:  members[i].ID,
			EventID: evt.ID,
			Present: true,
		})
		require.NoError(t, err)
	}
}

func TestOverviewWeekOverall(t *testing.T) {
	fix := newOverviewFixture(t)
	grp, members := fix.createGroup(t, "g1", fix.regionA.ID, 10)
	evt := fix.createEvent(t, grp, time.Now().UTC().AddDate(0, 0, -2))
	fix.markPresent(t, evt, members, 6)

	ov, err := fix.svc.Overview(context.Background(), fix.superAdmin, analytics.OverviewRequest{
		Period: "week",
		Scope:  "overall",
	})
	require.NoError(t, err)

	assert.Equal(t, "overall", ov.Scope)
	assert.False(t, ov.ScopeID.Valid)
	assert.Equal(t, "week", ov.Period)
	require.Len(t, ov.Buckets, 7)

	var hits int
	for _, b := range ov.Buckets {
		if b.EventCount == 0 {
			assert.Zero(t, b.TotalPossible)
			assert.Zero(t, b.PresentCount)
			assert.Zero(t, b.AttendanceRate)
			continue
		}
		hits++
		assert.Equal(t, 1, b.EventCount)
		assert.Equal(t, 10, b.TotalPossible)
		assert.Equal(t, 6, b.PresentCount)
		assert.Equal(t, 60.0, b.AttendanceRate)
	}
	assert.Equal(t, 1, hits)

	assert.Equal(t, 1, ov.Summary.EventCount)
	assert.Equal(t, 10, ov.Summary.TotalPossible)
	assert.Equal(t, 6, ov.Summary.PresentCount)
	assert.Equal(t, 60.0, ov.Summary.AttendanceRate)
}

func TestOverviewEmptyGroup(t *testing.T) {
	fix := newOverviewFixture(t)
	grp, _ := fix.createGroup(t, "g1", fix.regionA.ID, 5)

	ov, err := fix.svc.Overview(context.Background(), fix.superAdmin, analytics.OverviewRequest{
		Period:  "month",
		Scope:   "group",
		ScopeID: grp.ID,
	})
	require.NoError(t, err)

	require.Len(t, ov.Buckets, 4)
	for _, b := range ov.Buckets {
		assert.Zero(t, b.EventCount)
		assert.Zero(t, b.TotalPossible)
		assert.Zero(t, b.PresentCount)
		assert.Zero(t, b.AttendanceRate)
	}
	assert.Zero(t, ov.Summary.EventCount)
	assert.Zero(t, ov.Summary.AttendanceRate)
	assert.Equal(t, grp.ID, ov.ScopeID.String)
}

func TestOverviewSameDayAccumulation(t *testing.T) {
	fix := newOverviewFixture(t)
	grp, members := fix.createGroup(t, "g1", fix.regionA.ID, 5)
	day := time.Now().UTC().AddDate(0, 0, -1)
	evt1 := fix.createEvent(t, grp, day)
	evt2 := fix.createEvent(t, grp, day.Add(2*time.Hour))
	fix.markPresent(t, evt1, members, 3)
	fix.markPresent(t, evt2, members, 5)

	ov, err := fix.svc.Overview(context.Background(), fix.superAdmin, analytics.OverviewRequest{
		Period:  "week",
		Scope:   "group",
		ScopeID: grp.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, ov.Summary.EventCount)
	assert.Equal(t, 10, ov.Summary.TotalPossible)
	assert.Equal(t, 8, ov.Summary.PresentCount)
	assert.Equal(t, 80.0, ov.Summary.AttendanceRate)

	var bucketHits int
	for _, b := range ov.Buckets {
		if b.EventCount > 0 {
			bucketHits++
			assert.Equal(t, 2, b.EventCount)
			assert.Equal(t, 10, b.TotalPossible)
			assert.Equal(t, 8, b.PresentCount)
			assert.Equal(t, 80.0, b.AttendanceRate)
		}
	}
	assert.Equal(t, 1, bucketHits)
}

func TestOverviewScopeFilters(t *testing.T) {
	fix := newOverviewFixture(t)
	grpA, membersA := fix.createGroup(t, "ga", fix.regionA.ID, 4)
	grpB, membersB := fix.createGroup(t, "gb", fix.regionB.ID, 3)
	day := time.Now().UTC().AddDate(0, 0, -1)
	evtA := fix.createEvent(t, grpA, day)
	evtB := fix.createEvent(t, grpB, day)
	fix.markPresent(t, evtA, membersA, 2)
	fix.markPresent(t, evtB, membersB, 3)

	ctx := context.Background()

	// group scope only sees grpA
	ov, err := fix.svc.Overview(ctx, fix.superAdmin, analytics.OverviewRequest{
		Period: "week", Scope: "group", ScopeID: grpA.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Summary.EventCount)
	assert.Equal(t, 4, ov.Summary.TotalPossible)
	assert.Equal(t, 2, ov.Summary.PresentCount)

	// region scope only sees groups of region B
	ov, err = fix.svc.Overview(ctx, fix.superAdmin, analytics.OverviewRequest{
		Period: "week", Scope: "region", ScopeID: fix.regionB.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Summary.EventCount)
	assert.Equal(t, 3, ov.Summary.TotalPossible)
	assert.Equal(t, 3, ov.Summary.PresentCount)
	assert.Equal(t, 100.0, ov.Summary.AttendanceRate)

	// overall sees both
	ov, err = fix.svc.Overview(ctx, fix.superAdmin, analytics.OverviewRequest{
		Period: "week", Scope: "overall",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, ov.Summary.EventCount)
	assert.Equal(t, 7, ov.Summary.TotalPossible)
	assert.Equal(t, 5, ov.Summary.PresentCount)
}

func TestOverviewIdempotence(t *testing.T) {
	fix := newOverviewFixture(t)
	grp, members := fix.createGroup(t, "g1", fix.regionA.ID, 6)
	evt := fix.createEvent(t, grp, time.Now().UTC().AddDate(0, 0, -3))
	fix.markPresent(t, evt, members, 4)

	req := analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grp.ID}
	first, err := fix.svc.Overview(context.Background(), fix.superAdmin, req)
	require.NoError(t, err)
	second, err := fix.svc.Overview(context.Background(), fix.superAdmin, req)
	require.NoError(t, err)

	assert.Equal(t, first.Summary, second.Summary)
	for i := range first.Buckets {
		assert.Equal(t, first.Buckets[i].EventCount, second.Buckets[i].EventCount)
		assert.Equal(t, first.Buckets[i].TotalPossible, second.Buckets[i].TotalPossible)
		assert.Equal(t, first.Buckets[i].PresentCount, second.Buckets[i].PresentCount)
		assert.Equal(t, first.Buckets[i].AttendanceRate, second.Buckets[i].AttendanceRate)
	}
}

func TestOverviewOutOfRangeEventsExcluded(t *testing.T) {
	fix := newOverviewFixture(t)
	grp, members := fix.createGroup(t, "g1", fix.regionA.ID, 5)
	inRange := fix.createEvent(t, grp, time.Now().UTC().AddDate(0, 0, -1))
	fix.markPresent(t, inRange, members, 2)
	// well before the 7-day window
	fix.createEvent(t, grp, time.Now().UTC().AddDate(0, 0, -30))

	ov, err := fix.svc.Overview(context.Background(), fix.superAdmin, analytics.OverviewRequest{
		Period: "week", Scope: "group", ScopeID: grp.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, ov.Summary.EventCount)
}

func TestOverviewValidation(t *testing.T) {
	fix := newOverviewFixture(t)

	tests := []struct {
		name    string
		req     analytics.OverviewRequest
		wantErr error
	}{
		{name: "bogus period", req: analytics.OverviewRequest{Period: "bogus"}, wantErr: analytics.ErrInvalidPeriod},
		{name: "bogus scope", req: analytics.OverviewRequest{Period: "week", Scope: "universe"}, wantErr: analytics.ErrInvalidScope},
		{name: "group without id", req: analytics.OverviewRequest{Period: "week", Scope: "group"}, wantErr: analytics.ErrMissingGroupID},
		{name: "region without id", req: analytics.OverviewRequest{Period: "week", Scope: "region"}, wantErr: analytics.ErrMissingRegionID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fix.svc.Overview(context.Background(), fix.superAdmin, tt.req)
			assert.Equal(t, tt.wantErr, err)
			assert.True(t, analytics.IsBadRequest(err))
		})
	}
}

func TestOverviewAuthorization(t *testing.T) {
	fix := newOverviewFixture(t)
	ctx := context.Background()

	grpA, _ := fix.createGroup(t, "ga", fix.regionA.ID, 2)
	grpB, _ := fix.createGroup(t, "gb", fix.regionB.ID, 2)

	adminA := fix.createUser(t, "admin.a@safari.test", user.RoleAdmin, "")
	_, err := fix.grpRepo.AddMember(ctx, group.Membership{UserID: adminA.ID, GroupID: grpA.ID, Role: user.RoleAdmin})
	require.NoError(t, err)

	// designated group admin without an admin membership
	designated := fix.createUser(t, "designated@safari.test", user.RoleAdmin, "")
	grpB.GroupAdminID = null.StringFrom(designated.ID)
	_, err = fix.grpRepo.UpdateGroup(ctx, grpB)
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  user.User
		req     analytics.OverviewRequest
		wantErr error
	}{
		{name: "super admin overall", caller: fix.superAdmin, req: analytics.OverviewRequest{Period: "week", Scope: "overall"}},
		{name: "super admin any group", caller: fix.superAdmin, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpB.ID}},
		{name: "region manager own region", caller: fix.regionMgrA, req: analytics.OverviewRequest{Period: "week", Scope: "region", ScopeID: fix.regionA.ID}},
		{name: "region manager other region", caller: fix.regionMgrA, req: analytics.OverviewRequest{Period: "week", Scope: "region", ScopeID: fix.regionB.ID}, wantErr: analytics.ErrForbidden},
		{name: "region manager group in own region", caller: fix.regionMgrA, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpA.ID}},
		{name: "region manager group elsewhere", caller: fix.regionMgrA, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpB.ID}, wantErr: analytics.ErrForbidden},
		{name: "region manager overall", caller: fix.regionMgrA, req: analytics.OverviewRequest{Period: "week", Scope: "overall"}, wantErr: analytics.ErrForbidden},
		{name: "admin own group", caller: adminA, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpA.ID}},
		{name: "admin other group", caller: adminA, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpB.ID}, wantErr: analytics.ErrForbidden},
		{name: "admin region scope", caller: adminA, req: analytics.OverviewRequest{Period: "week", Scope: "region", ScopeID: fix.regionA.ID}, wantErr: analytics.ErrForbidden},
		{name: "designated admin via group_admin_id", caller: designated, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpB.ID}},
		{name: "plain user", caller: fix.plainUser, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: grpA.ID}, wantErr: analytics.ErrForbidden},
		{name: "missing group hidden", caller: adminA, req: analytics.OverviewRequest{Period: "week", Scope: "group", ScopeID: "536ac9b7-ffad-4e25-87a9-1c9014348b25"}, wantErr: analytics.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fix.svc.Overview(context.Background(), tt.caller, tt.req)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
