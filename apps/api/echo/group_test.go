package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

func TestGroupAPI_create(t *testing.T) {
	fix := setup(t)

	t.Run("plain users forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", fix.getToken(t, fix.plainUser),
			[]byte(`{"name": "nairobi-chapter"}`))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("name required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", fix.getToken(t, fix.admin), []byte(`{}`))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		want := marchallObj(t, map[string]string{"name": "this field is required"})
		assert.JSONEq(t, string(want), rec.Body.String())
	})

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"name": "nairobi-chapter", "region_id": fix.regionA.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", fix.getToken(t, fix.admin), body)
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var grp group.Group
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grp))
		assert.Equal(t, "nairobi-chapter", grp.Name)
		assert.Equal(t, fix.regionA.ID, grp.RegionID.String)
	})

	t.Run("duplicate name in region", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"name": "nairobi-chapter", "region_id": fix.regionA.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups", fix.getToken(t, fix.admin), body)
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		want := marchallObj(t, map[string]string{"name": "a group with this name already exists in this region"})
		assert.JSONEq(t, string(want), rec.Body.String())
	})
}

func TestGroupAPI_members(t *testing.T) {
	fix := setup(t)
	grp, members := fix.createGroup(t, "westlands-chapter", fix.regionA.ID, 2)
	adminToken := fix.getToken(t, fix.admin)

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/groups/"+grp.ID+"/members", fix.getToken(t, members[0]))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []group.Member
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("add", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups/"+grp.ID+"/members", adminToken,
			marchallObj(t, map[string]string{"user_id": fix.plainUser.ID}))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var mbr group.Membership
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mbr))
		assert.Equal(t, fix.plainUser.ID, mbr.UserID)
		assert.Equal(t, user.RoleUser, mbr.Role)
	})

	t.Run("add twice conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups/"+grp.ID+"/members", adminToken,
			marchallObj(t, map[string]string{"user_id": fix.plainUser.ID}))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("remove", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/groups/"+grp.ID+"/members/"+fix.plainUser.ID, adminToken)
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("remove a non-member", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/groups/"+grp.ID+"/members/"+fix.plainUser.ID, adminToken)
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGroupAPI_assignAdmin(t *testing.T) {
	fix := setup(t)
	grp, members := fix.createGroup(t, "eastern-chapter", fix.regionA.ID, 2)

	t.Run("admins cannot assign", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"group_id": grp.ID, "user_id": members[0].ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups/assign-admin", fix.getToken(t, fix.admin), body)
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"group_id": grp.ID, "user_id": members[0].ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/groups/assign-admin", fix.getToken(t, fix.regionMgr), body)
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got group.Group
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, members[0].ID, got.GroupAdminID.String)
	})
}

func TestGroupAPI_demographics(t *testing.T) {
	fix := setup(t)
	grp, _ := fix.createGroup(t, "kiambu-chapter", fix.regionA.ID, 3)

	req, rec := newAuthRequest(http.MethodGet, "/v1/groups/"+grp.ID+"/demographics", fix.getToken(t, fix.admin))
	fix.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var demo group.Demographics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &demo))
	assert.Equal(t, 3, demo.GenderDistribution["unknown"])
	assert.Equal(t, 3, demo.RoleDistribution[user.RoleUser])
}
