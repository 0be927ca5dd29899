package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Purity-dev-614E/safari-backend/core/group"
	"github.com/Purity-dev-614E/safari-backend/core/region"
	"github.com/Purity-dev-614E/safari-backend/core/user"
)

type regionApi struct {
	svc      region.Service
	userSvc  user.Service
	groupSvc group.Service
	validate *validator.Validate
}

func registerRegionAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := regionApi{
		svc:      deps.RegionSvc,
		userSvc:  deps.UserSvc,
		groupSvc: deps.GroupSvc,
		validate: deps.Validate,
	}

	rg := g.Group("/regions", jwt)

	// all authed users may list regions (frontend dropdowns)
	rg.GET("", api.query)

	rg.POST("", api.create, staffMiddleware(user.RoleSuperAdmin))
	rg.PUT("/:id", api.update, staffMiddleware(user.RoleSuperAdmin))
	rg.DELETE("/:id", api.destroy, staffMiddleware(user.RoleSuperAdmin))

	mg := rg.Group("/:id", staffMiddleware(user.RoleSuperAdmin, user.RoleRegionManager))
	mg.GET("", api.retrieve)
	mg.GET("/users", api.queryUsers, api.regionAccessMiddleware)
	mg.GET("/groups", api.queryGroups, api.regionAccessMiddleware)
}

func (api *regionApi) create(ctx echo.Context) error {
	var data region.NewRegion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegion")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	reg, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating region")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *regionApi) query(ctx echo.Context) error {
	regions, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying regions")
	}
	if regions == nil {
		regions = []region.Region{}
	}
	return ctx.JSON(http.StatusOK, regions)
}

func (api *regionApi) retrieve(ctx echo.Context) error {
	reg, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding region by ID")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *regionApi) update(ctx echo.Context) error {
	var data region.UpdateRegion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRegion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	reg, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating region")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *regionApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting region")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *regionApi) queryUsers(ctx echo.Context) error {
	users, err := api.userSvc.QueryByRegion(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying users by region")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *regionApi) queryGroups(ctx echo.Context) error {
	groups, err := api.groupSvc.QueryByRegion(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying groups by region")
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

// regionAccessMiddleware confines region managers to their own region.
func (api *regionApi) regionAccessMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ctxUsr, err := getContextUser(ctx, api.userSvc)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		if ctxUsr.IsSuperAdmin() {
			return next(ctx)
		}
		if ctxUsr.RegionID.Valid && ctxUsr.RegionID.String == ctx.Param("id") {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
