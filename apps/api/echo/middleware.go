package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core/staff"
)

const contextObjectKey = "object"

var errObjectNotFoundInCtx = errors.New("object not found in echo.Context")

// authMiddlewares are the middlewares every authenticated route goes through.
type authMiddlewares struct {
	jwt   echo.MiddlewareFunc
	staff echo.MiddlewareFunc
}

// group returns a sub-group of g whose routes need a token, and a registered, active staff member.
// Unless pending is set, the staff member must also be approved.
func (am authMiddlewares) group(g *echo.Group, prefix string, pending ...bool) *echo.Group {
	allowPending := len(pending) > 0 && pending[0]
	return g.Group(prefix, am.jwt, am.staff, requireStaffMiddleware(allowPending))
}

// tokenGroup returns a sub-group of g whose routes only need a valid token.
func (am authMiddlewares) tokenGroup(g *echo.Group, prefix string) *echo.Group {
	return g.Group(prefix, am.jwt, am.staff)
}

func requireStaffMiddleware(allowPending bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := getContextStaff(ctx)
			if err != nil {
				return err
			}
			if !s.IsActive {
				return errAccountDeactivated
			}
			if !s.IsApproved && !allowPending {
				return errAccountPending
			}
			return next(ctx)
		}
	}
}

// permissionMiddleware lets the request through when the context staff member passes check.
func permissionMiddleware(check func(s *staff.Staff) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s, err := getContextStaff(ctx)
			if err != nil {
				return err
			}
			if !check(&s) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return permissionMiddleware((*staff.Staff).IsAdmin)
}

func managerMiddleware() echo.MiddlewareFunc {
	return permissionMiddleware((*staff.Staff).CanManage)
}

func editorMiddleware() echo.MiddlewareFunc {
	return permissionMiddleware((*staff.Staff).IsEditor)
}

// objectMiddleware loads the record identified by the `:id` path param into the context.
func objectMiddleware[T any](get func(ctx context.Context, id string) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := get(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return err
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}

func getContextObject[T any](ctx echo.Context) (T, error) {
	obj, ok := ctx.Get(contextObjectKey).(T)
	if !ok {
		return obj, errors.Wrap(errObjectNotFoundInCtx, "retrieving object from context")
	}
	return obj, nil
}
