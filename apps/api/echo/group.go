package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type groupApi struct {
	svc      group.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := groupApi{
		svc:      deps.GroupSvc,
		userSvc:  deps.UserSvc,
		validate: deps.Validate,
	}

	gg := g.Group("/groups", jwt)

	gg.POST("", api.create, staffMiddleware())
	gg.GET("", api.query)
	gg.POST("/assign-admin", api.assignAdmin, staffMiddleware(user.RoleRegionManager, user.RoleSuperAdmin))
	gg.GET("/mine", api.queryMine)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, staffMiddleware(user.RoleRegionManager, user.RoleSuperAdmin))
	dg.GET("/demographics", api.demographics)

	dg.GET("/members", api.queryMembers)
	dg.POST("/members", api.addMember, staffMiddleware())
	dg.DELETE("/members/:userId", api.removeMember, staffMiddleware())
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

// queryMine lists the groups the caller belongs to.
func (api *groupApi) queryMine(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	groups, err := api.svc.QueryByMember(ctx.Request().Context(), ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "querying groups by member")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding group by ID")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	grp, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding group by ID")
	}

	var data group.UpdateGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGroup")
	}
	if err := data.Validate(ctx.Request().Context(), grp, api.validate, api.svc); err != nil {
		return err
	}

	grp, err = api.svc.Update(ctx.Request().Context(), grp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) demographics(ctx echo.Context) error {
	demo, err := api.svc.Demographics(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying group demographics")
	}
	return ctx.JSON(http.StatusOK, demo)
}

func (api *groupApi) queryMembers(ctx echo.Context) error {
	members, err := api.svc.QueryMembers(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying group members")
	}
	if members == nil {
		members = []group.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *groupApi) addMember(ctx echo.Context) error {
	var data group.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	mbr, err := api.svc.AddMember(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == group.ErrMemberExists {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "adding group member")
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	if err := api.svc.RemoveMember(ctx.Request().Context(), ctx.Param("id"), ctx.Param("userId")); err != nil {
		return errors.Wrap(err, "removing group member")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *groupApi) assignAdmin(ctx echo.Context) error {
	var data group.AssignAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.AssignAdmin(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning group admin")
	}
	return ctx.JSON(http.StatusOK, grp)
}
