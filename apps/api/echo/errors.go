package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired   = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden    = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errNoPermsToSetRole = echo.NewHTTPError(http.StatusForbidden, "only an admin can change roles")
)

// errorResponse maps err to a status code and a response body.
// Bodies are either a field -> message map or a plain message; ok is false for unexpected errors.
func errorResponse(err error, translator ut.Translator) (code int, message interface{}, ok bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, cause.Message, true
		}
		if herr, isHTTP := cause.Internal.(*echo.HTTPError); isHTTP {
			cause = herr
		}
		return cause.Code, cause.Message, true
	case validator.ValidationErrors:
		fields := make(map[string]string, len(cause))
		for _, fe := range cause {
			fields[fe.Field()] = fe.Translate(translator)
		}
		return http.StatusBadRequest, fields, true
	case *core.ValidationError:
		if len(cause.Fields) == 0 {
			return http.StatusBadRequest, cause.Error(), true
		}
		fields := make(map[string]string, len(cause.Fields))
		for _, fe := range cause.Fields {
			fields[fe.Field] = fe.Error
		}
		return http.StatusBadRequest, fields, true
	case *core.ArgumentError:
		return http.StatusBadRequest, cause.Error(), true
	case *core.NotFoundError:
		return http.StatusNotFound, cause.Error(), true
	case *core.AuthorizationError:
		return http.StatusForbidden, cause.Error(), true
	default:
		if cause == user.ErrInvalidCredentials {
			return http.StatusUnauthorized, cause.Error(), true
		}
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false
	}
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message, ok := errorResponse(err, translator)
		if !ok {
			msg := http.StatusText(code)
			fields := map[string]interface{}{"method": ctx.Request().Method, "path": ctx.Path()}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				caller := core.Caller{Username: claims.Username}
				caller.ID, _ = uuid.Parse(claims.Subject)
				logger.Error(msg, errors.Wrap(err, msg), fields, caller)
			} else {
				logger.Error(msg, errors.Wrap(err, msg), fields)
			}

			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				message = err.Error()
			}
		}
		if m, isStr := message.(string); isStr {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
