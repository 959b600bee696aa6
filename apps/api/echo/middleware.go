package echoapi

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

// authedMiddlewares returns a builder of route middleware chains starting with JWT auth & callerMiddleware.
// Middleware is set per route: group middleware would also run on the group's public routes.
func authedMiddlewares(jwt echo.MiddlewareFunc) func(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return func(m ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{jwt, callerMiddleware}, m...)
	}
}

// callerMiddleware stores the authenticated user's ID & roles in the context. Must run after the JWT middleware.
func callerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, roles, err := getCaller(ctx)
		if err != nil {
			return errors.Wrap(err, "getting caller")
		}
		ctx.Set(callerKey, id)
		ctx.Set(rolesKey, roles)
		return next(ctx)
	}
}

// contextCaller returns what callerMiddleware stored.
func contextCaller(ctx echo.Context) (uuid.UUID, []string) {
	id, _ := ctx.Get(callerKey).(uuid.UUID)
	roles, _ := ctx.Get(rolesKey).([]string)
	return id, roles
}

func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		_, roles, err := getCaller(ctx)
		if err != nil {
			return errors.Wrap(err, "getting caller")
		}
		if core.IsAdmin(roles) {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// selfOrAdminMiddleware only lets through admins and the user identified by the id path param.
func selfOrAdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := parseID(ctx)
		if err != nil {
			return err
		}
		callerID, roles, err := getCaller(ctx)
		if err != nil {
			return errors.Wrap(err, "getting caller")
		}
		if callerID == id || core.IsAdmin(roles) {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
