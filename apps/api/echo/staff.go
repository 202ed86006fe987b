package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

var errNoPermsToSetRoles = "not enough rights to set these roles"

type staffApi struct {
	svc      *staff.Service
	validate *validator.Validate
}

func registerStaffAPI(g *echo.Group, authn authMiddlewares, svc *staff.Service, validate *validator.Validate) {
	api := staffApi{
		svc:      svc,
		validate: validate,
	}

	// profile of the token subject
	mg := authn.tokenGroup(g, "/staff/me")
	mg.POST("", api.register)
	mg.GET("", api.me, requireStaffMiddleware(true /* allowPending */))

	sg := authn.group(g, "/staff")
	sg.GET("/roles", api.queryRoles)
	sg.GET("", api.query, managerMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	// detail endpoints
	dg := sg.Group("/:id", ctxStaffOrManagerMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
	dg.POST("/approve", api.approve, adminMiddleware())
}

// Handlers

// register creates the pending profile of a token subject. Name and email default to the token claims.
func (api *staffApi) register(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if _, err := getContextStaff(ctx); err == nil {
		return core.NewValidationError(errors.New("profile already registered"))
	}

	var data staff.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	if core.CleanString(data.Name) == "" {
		data.Name = claims.Name
	}
	if core.CleanString(data.Email) == "" {
		data.Email = claims.Email
	}

	s, err := api.svc.Register(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "registering staff")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *staffApi) me(ctx echo.Context) error {
	s, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}
	s, err = api.svc.Touch(ctx.Request().Context(), s)
	if err != nil {
		return errors.Wrap(err, "touching staff")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) query(ctx echo.Context) error {
	filter, err := bindStaffFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, staff.OrderingFields)

	list, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	if list == nil {
		list = []staff.Staff{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	s, err := getContextObject[staff.Staff](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) update(ctx echo.Context) error {
	s, err := getContextObject[staff.Staff](ctx)
	if err != nil {
		return err
	}

	var data staff.UpdateStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStaff")
	}

	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}
	// roles, approval & activation can only be changed by admins; others may only edit themselves
	if !ctxStaff.IsAdmin() && (data.RequiresAdmin() || s.ID != ctxStaff.ID) {
		return errHttpForbidden
	}

	// ctxStaff cannot set a role > their own max role
	if data.Roles != nil && !ctxStaff.CanAssume(data.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	s, err = api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating staff")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) approve(ctx echo.Context) error {
	s, err := getContextObject[staff.Staff](ctx)
	if err != nil {
		return err
	}
	s, err = api.svc.Approve(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "approving staff")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	s, err := getContextObject[staff.Staff](ctx)
	if err != nil {
		return err
	}

	// ctxStaff cannot delete themselves
	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}
	if s.ID == ctxStaff.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	query.Bind(ctx)
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}
	if core.ContainsString(query.IDs, ctxStaff.ID) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, staff.Roles)
}

// ctxStaffOrManagerMiddleware loads the `:id` staff member when they are the context staff member,
// or when the context staff member manages projects.
func ctxStaffOrManagerMiddleware(svc *staff.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxStaff, err := getContextStaff(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context staff")
			}
			if ctx.Param("id") != ctxStaff.ID && !ctxStaff.CanManage() {
				return staff.ErrNotFound
			}

			s, err := svc.Get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return err
			}
			ctx.Set(contextObjectKey, s)
			return next(ctx)
		}
	}
}
