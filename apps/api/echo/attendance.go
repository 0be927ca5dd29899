package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core"
	"github.com/Purity-dev-614E/safari-backend/core/analytics"
	"github.com/Purity-dev-614E/safari-backend/core/attendance"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type attendanceApi struct {
	svc          attendance.Service
	analyticsSvc analytics.Service
	userSvc      user.Service
	validate     *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := attendanceApi{
		svc:          deps.AttendanceSvc,
		analyticsSvc: deps.AnalyticsSvc,
		userSvc:      deps.UserSvc,
		validate:     deps.Validate,
	}

	ag := g.Group("/attendance", jwt)

	ag.GET("/overview", api.overview, staffMiddleware())
	ag.GET("/status", api.status)

	ag.POST("/event/:eventId", api.record)
	ag.GET("/event/:eventId", api.queryByEvent)
	ag.GET("/event/:eventId/attended-members", api.attendedMembers)

	ag.GET("/user/:userId", api.queryByUser)
	ag.GET("/group/:groupId", api.groupPercentage)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware())
}

// overview aggregates attendance into period buckets for the requested scope.
// Scope-level access control lives in the analytics service.
func (api *attendanceApi) overview(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	req := analytics.OverviewRequest{
		Period: ctx.QueryParam("period"),
		Scope:  ctx.QueryParam("scope"),
	}
	switch core.CleanString(req.Scope, true /* lower */) {
	case analytics.ScopeGroup:
		req.ScopeID = ctx.QueryParam("groupId")
	case analytics.ScopeRegion:
		req.ScopeID = ctx.QueryParam("regionId")
	}

	overview, err := api.analyticsSvc.Overview(ctx.Request().Context(), ctxUsr, req)
	if err != nil {
		return errors.Wrap(err, "aggregating attendance overview")
	}
	return ctx.JSON(http.StatusOK, overview)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Record(ctx.Request().Context(), ctx.Param("eventId"), data)
	if err != nil {
		if errors.Cause(err) == attendance.ErrRecordExists {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

func (api *attendanceApi) status(ctx echo.Context) error {
	eventID := ctx.QueryParam("eventId")
	userID := ctx.QueryParam("userId")
	if eventID == "" || userID == "" {
		return core.NewValidationError(errors.New("eventId and userId are required"))
	}

	present, err := api.svc.Status(ctx.Request().Context(), eventID, userID)
	if err != nil {
		return errors.Wrap(err, "querying attendance status")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"attended": present})
}

func (api *attendanceApi) queryByEvent(ctx echo.Context) error {
	records, err := api.svc.QueryByEvent(ctx.Request().Context(), ctx.Param("eventId"))
	if err != nil {
		return errors.Wrap(err, "querying attendance by event")
	}
	if records == nil {
		records = []attendance.EventRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) attendedMembers(ctx echo.Context) error {
	members, err := api.svc.QueryAttendedMembers(ctx.Request().Context(), ctx.Param("eventId"))
	if err != nil {
		return errors.Wrap(err, "querying attended members")
	}
	if members == nil {
		members = []attendance.AttendedMember{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *attendanceApi) queryByUser(ctx echo.Context) error {
	records, err := api.svc.QueryByUser(ctx.Request().Context(), ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "querying attendance by user")
	}
	if records == nil {
		records = []attendance.UserRecord{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) groupPercentage(ctx echo.Context) error {
	pct, err := api.svc.GroupPercentage(ctx.Request().Context(), ctx.Param("groupId"))
	if err != nil {
		return errors.Wrap(err, "querying group attendance percentage")
	}
	return ctx.JSON(http.StatusOK, pct)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	att, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding attendance by ID")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}
