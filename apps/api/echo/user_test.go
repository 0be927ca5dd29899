package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Purity-dev-614E/safari-backend/core/user"
)

func TestUserAPI_login(t *testing.T) {
	fix := setup(t)

	tests := []httpTest{
		{
			name:     "empty credentials",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "unknown email",
			body:     []byte(`{"email": "ghost@safari.test", "password": "Sup3rS3cretPwd!"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     []byte(`{"email": "member@safari.test", "password": "nope"}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			fix.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", []byte(`{"email": "member@safari.test", "password": "Sup3rS3cretPwd!"}`))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})
}

func TestUserAPI_query(t *testing.T) {
	fix := setup(t)

	tests := []httpTest{
		{
			name:     "auth required",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "plain users forbidden",
			token:    fix.getToken(t, fix.plainUser),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token)
			fix.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("staff can list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/users", fix.getToken(t, fix.admin))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 4)
	})
}

func TestUserAPI_retrieve(t *testing.T) {
	fix := setup(t)

	tests := []httpTest{
		{
			name:     "own record",
			path:     "/v1/users/" + fix.plainUser.ID,
			token:    fix.getToken(t, fix.plainUser),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, fix.plainUser),
		},
		{
			name:     "someone else's record is hidden from plain users",
			path:     "/v1/users/" + fix.admin.ID,
			token:    fix.getToken(t, fix.plainUser),
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "staff can retrieve anyone",
			path:     "/v1/users/" + fix.plainUser.ID,
			token:    fix.getToken(t, fix.admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, fix.plainUser),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			fix.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestUserAPI_create(t *testing.T) {
	fix := setup(t)

	t.Run("plain users cannot register others", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", fix.getToken(t, fix.plainUser),
			[]byte(`{"email": "new@safari.test", "full_name": "New User", "password": "Sup3rS3cretPwd!", "password_confirm": "Sup3rS3cretPwd!"}`))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cannot grant a role above one's own", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", fix.getToken(t, fix.admin),
			[]byte(`{"email": "boss@safari.test", "full_name": "Boss", "role": "super_admin", "password": "Sup3rS3cretPwd!", "password_confirm": "Sup3rS3cretPwd!"}`))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		want := marchallObj(t, map[string]string{"role": "not enough rights to set this role"})
		assert.JSONEq(t, string(want), rec.Body.String())
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/register", fix.getToken(t, fix.superAdmin),
			[]byte(`{"email": "new@safari.test", "full_name": "New User", "role": "admin", "password": "Sup3rS3cretPwd!", "password_confirm": "Sup3rS3cretPwd!"}`))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "new@safari.test", usr.Email)
		assert.Equal(t, user.RoleAdmin, usr.Role)
		assert.NotEmpty(t, usr.ID)
	})
}

func TestUserAPI_update(t *testing.T) {
	fix := setup(t)

	t.Run("plain users cannot change their role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+fix.plainUser.ID, fix.getToken(t, fix.plainUser),
			[]byte(`{"role": "admin"}`))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("own profile fields", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+fix.plainUser.ID, fix.getToken(t, fix.plainUser),
			[]byte(`{"full_name": "Renamed Member", "phone_number": "+254700000000"}`))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var usr user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &usr))
		assert.Equal(t, "Renamed Member", usr.FullName)
		assert.Equal(t, "+254700000000", usr.PhoneNumber.String)
	})
}

func TestUserAPI_destroy(t *testing.T) {
	fix := setup(t)
	victim := fix.createUser(t, "victim@safari.test", user.RoleUser, "")

	t.Run("cannot delete self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+fix.admin.ID, fix.getToken(t, fix.admin))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/users/"+victim.ID, fix.getToken(t, fix.admin))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/users/"+victim.ID, fix.getToken(t, fix.admin))
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUserAPI_refreshToken(t *testing.T) {
	fix := setup(t)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/users/token-refresh")
		fix.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", fix.getToken(t, fix.plainUser))
		fix.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})
}
