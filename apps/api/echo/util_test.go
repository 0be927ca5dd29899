package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	. "github.com/Purity-dev-614E/safari-backend/apps/api/echo"
	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/analytics"
	"github.com/Purity-dev-614E/safari-backend/core/attendance"
	"github.com/Purity-dev-614E/safari-backend/core/event"
	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/region"
	"github.com/Purity-dev-614E/safari-backend/core/user"
	emailsvc "github.com/Purity-dev-614E/safari-backend/services/email"
	logsvc "github.com/Purity-dev-614E/safari-backend/services/logger"
	dummydb "github.com/Purity-dev-614E/safari-backend/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

func testConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Safari",
		SecretKey: "secret",

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

type fixture struct {
	server Server
	conf   *core.Config

	userRepo user.Repository
	grpRepo  group.Repository
	evtRepo  event.Repository
	attRepo  attendance.Repository
	regRepo  region.Repository

	superAdmin user.User
	admin      user.User
	regionMgr  user.User
	plainUser  user.User

	regionA region.Region
	regionB region.Region
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conf := testConfig()

	db, err := dummydb.Open()
	require.NoError(t, err)

	fix := &fixture{
		conf:     conf,
		userRepo: dummydb.NewUserRepository(db),
		grpRepo:  dummydb.NewGroupRepository(db),
		evtRepo:  dummydb.NewEventRepository(db),
		attRepo:  dummydb.NewAttendanceRepository(db),
		regRepo:  dummydb.NewRegionRepository(db),
	}

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewServiceMock(fix.userRepo, mailSvc, conf)
	regionSvc := region.NewService(fix.regRepo)
	groupSvc := group.NewService(fix.grpRepo)
	eventSvc := event.NewService(fix.evtRepo)
	attSvc := attendance.NewService(fix.attRepo, groupSvc)
	analyticsSvc := analytics.NewService(fix.evtRepo, fix.grpRepo, fix.attRepo)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator)
	region.RegisterValidators(validate, translator)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	fix.server = NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			RegionSvc:      regionSvc,
			GroupSvc:       groupSvc,
			EventSvc:       eventSvc,
			AttendanceSvc:  attSvc,
			AnalyticsSvc:   analyticsSvc,
			Validate:       validate,
			Translator:     translator,
		},
	)

	ctx := context.Background()
	fix.regionA, err = fix.regRepo.CreateRegion(ctx, region.Region{Name: region.Kilimani})
	require.NoError(t, err)
	fix.regionB, err = fix.regRepo.CreateRegion(ctx, region.Region{Name: region.Langata})
	require.NoError(t, err)

	fix.superAdmin = fix.createUser(t, "root@safari.test", user.RoleSuperAdmin, "")
	fix.admin = fix.createUser(t, "admin@safari.test", user.RoleAdmin, "")
	fix.regionMgr = fix.createUser(t, "mgr@safari.test", user.RoleRegionManager, fix.regionA.ID)
	fix.plainUser = fix.createUser(t, "member@safari.test", user.RoleUser, "")
	return fix
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func (fix *fixture) createUser(t *testing.T, email, role, regionID string) user.User {
	t.Helper()
	usr := user.User{Email: email, FullName: email, Role: role}
	if regionID != "" {
		usr.RegionID = null.StringFrom(regionID)
	}
	require.NoError(t, usr.SetPassword("Sup3rS3cretPwd!"))
	usr, err := fix.userRepo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}

func (fix *fixture) createGroup(t *testing.T, name, regionID string, memberCount int) (group.Group, []user.User) {
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

func (fix *fixture) createEvent(t *testing.T, grp group.Group, date time.Time) event.Event {
	t.Helper()
	evt, err := fix.evtRepo.CreateEvent(context.Background(), event.Event{
		Title:   "meetup",
		Date:    date,
		GroupID: grp.ID,
	})
	require.NoError(t, err)
	return evt
}

func (fix *fixture) markPresent(t *testing.T, evt event.Event, members []user.User, count int) {
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

func (fix *fixture) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr, fix.conf), fix.conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
