package echoapi_test

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purity-dev-614E/safari-backend/core/analytics"
	"github.com/Purity-dev-614E/safari-backend/core/attendance"
)

func overviewPath(params map[string]string) string {
	q := make(url.Values, len(params))
	for k, v := range params {
		q.Set(k, v)
	}
	return "/v1/attendance/overview?" + q.Encode()
}

func TestAttendanceAPI_overview(t *testing.T) {
	fix := setup(t)

	grp, members := fix.createGroup(t, "nairobi-chapter", fix.regionA.ID, 10)
	evt := fix.createEvent(t, grp, time.Now().UTC().Add(-24*time.Hour))
	fix.markPresent(t, evt, members, 6)

	tests := []httpTest{
		{
			name:     "auth required",
			path:     overviewPath(map[string]string{"period": "week"}),
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "plain users forbidden",
			path:     overviewPath(map[string]string{"period": "week"}),
			token:    fix.getToken(t, fix.plainUser),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "invalid period",
			path:     overviewPath(map[string]string{"period": "fortnight"}),
			token:    fix.getToken(t, fix.superAdmin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid period. Supported options: week, month, quarter, year"}),
		},
		{
			name:     "invalid scope",
			path:     overviewPath(map[string]string{"period": "week", "scope": "galaxy"}),
			token:    fix.getToken(t, fix.superAdmin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "invalid scope. Supported options: overall, region, group"}),
		},
		{
			name:     "missing groupId",
			path:     overviewPath(map[string]string{"period": "week", "scope": "group"}),
			token:    fix.getToken(t, fix.superAdmin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "groupId is required when scope is group"}),
		},
		{
			name:     "missing regionId",
			path:     overviewPath(map[string]string{"period": "week", "scope": "region"}),
			token:    fix.getToken(t, fix.superAdmin),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "regionId is required when scope is region"}),
		},
		{
			name:     "region manager cannot read a foreign region",
			path:     overviewPath(map[string]string{"period": "week", "scope": "region", "regionId": fix.regionB.ID}),
			token:    fix.getToken(t, fix.regionMgr),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "access denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			fix.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("group scope", func(t *testing.T) {
		path := overviewPath(map[string]string{"period": "weekly", "scope": "group", "groupId": grp.ID})
		req, rec := newAuthRequest(http.MethodGet, path, fix.getToken(t, fix.superAdmin))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var overview analytics.Overview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
		assert.Equal(t, analytics.ScopeGroup, overview.Scope)
		assert.Equal(t, grp.ID, overview.ScopeID.String)
		assert.Equal(t, "week", overview.Period)
		assert.Len(t, overview.Buckets, 7)
		assert.Equal(t, analytics.Summary{
			EventCount:     1,
			TotalPossible:  10,
			PresentCount:   6,
			AttendanceRate: 60,
		}, overview.Summary)
	})

	t.Run("overall scope is the default", func(t *testing.T) {
		path := overviewPath(map[string]string{"period": "week"})
		req, rec := newAuthRequest(http.MethodGet, path, fix.getToken(t, fix.superAdmin))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var overview analytics.Overview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
		assert.Equal(t, analytics.ScopeOverall, overview.Scope)
		assert.False(t, overview.ScopeID.Valid)
		assert.Equal(t, 6, overview.Summary.PresentCount)
	})
}

func TestAttendanceAPI_record(t *testing.T) {
	fix := setup(t)

	grp, members := fix.createGroup(t, "langata-chapter", fix.regionA.ID, 3)
	evt := fix.createEvent(t, grp, time.Now().UTC())
	token := fix.getToken(t, members[0])

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/event/"+evt.ID, token,
			marchallObj(t, map[string]interface{}{"user_id": members[0].ID, "present": true, "topic": "intro"}))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var att attendance.Attendance
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &att))
		assert.Equal(t, evt.ID, att.EventID)
		assert.Equal(t, members[0].ID, att.UserID)
		assert.True(t, att.Present)
	})

	t.Run("double marking conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/event/"+evt.ID, token,
			marchallObj(t, map[string]interface{}{"user_id": members[0].ID, "present": false}))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("status reflects the record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet,
			"/v1/attendance/status?eventId="+evt.ID+"&userId="+members[0].ID, token)
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"attended": true}`, rec.Body.String())
	})

	t.Run("group percentage", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/group/"+grp.ID, token)
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var pct attendance.GroupPercentage
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pct))
		assert.Equal(t, 1, pct.PresentCount)
		assert.Equal(t, 3, pct.MemberCount)
		assert.InDelta(t, 33.33, pct.Percentage, 0.001)
	})
}
