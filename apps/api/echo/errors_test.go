package echoapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
)

func Test_errorResponse(t *testing.T) {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	type input struct {
		Name string `json:"name" validate:"required"`
	}
	vErrs := validate.Struct(input{})
	roleErrs := validate.Struct(struct {
		Role string `json:"role" validate:"role"`
	}{Role: "Root"})

	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage interface{}
		wantOK      bool
	}{
		{name: "missing jwt", err: middleware.ErrJWTMissing, wantCode: http.StatusUnauthorized, wantMessage: "missing or malformed jwt", wantOK: true},
		{name: "http error", err: errors.Wrap(errHttpForbidden, "checking"), wantCode: http.StatusForbidden, wantMessage: "permission denied", wantOK: true},
		{
			name: "internal http error", err: echo.NewHTTPError(http.StatusInternalServerError).SetInternal(errHttpNotFound),
			wantCode: http.StatusNotFound, wantMessage: "not found", wantOK: true,
		},
		{name: "validation errors", err: errors.Wrap(vErrs, "validating"), wantCode: http.StatusBadRequest, wantMessage: map[string]string{"name": "this field is required"}, wantOK: true},
		{name: "unknown role", err: roleErrs, wantCode: http.StatusBadRequest, wantMessage: map[string]string{"role": "role must be one of [User Admin]"}, wantOK: true},
		{
			name: "taken id", err: errors.Wrap(core.NewDuplicateIDError(), "creating card"),
			wantCode: http.StatusBadRequest, wantMessage: map[string]string{"id": "this id is already taken"}, wantOK: true,
		},
		{
			name: "validation error with fields", err: core.NewValidationError(errors.New("taken"), core.FieldError{Field: "username", Error: "taken"}),
			wantCode: http.StatusBadRequest, wantMessage: map[string]string{"username": "taken"}, wantOK: true,
		},
		{name: "validation error", err: core.NewValidationError(errors.New("bad input")), wantCode: http.StatusBadRequest, wantMessage: "bad input", wantOK: true},
		{name: "argument error", err: core.NewArgumentError("page must be >= 1"), wantCode: http.StatusBadRequest, wantMessage: "page must be >= 1", wantOK: true},
		{name: "not found", err: errors.Wrap(core.NewNotFoundError("card"), "finding"), wantCode: http.StatusNotFound, wantMessage: "card not found", wantOK: true},
		{name: "forbidden", err: core.NewAuthorizationError("nope"), wantCode: http.StatusForbidden, wantMessage: "nope", wantOK: true},
		{name: "invalid credentials", err: errors.Wrap(user.ErrInvalidCredentials, "authenticating"), wantCode: http.StatusUnauthorized, wantMessage: "invalid credentials", wantOK: true},
		{name: "unexpected", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError, wantMessage: "Internal Server Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, message, ok := errorResponse(tt.err, translator)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMessage, message)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func Test_newAppHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantSignal bool
	}{
		{name: "shutdown", err: errors.Wrap(core.NewShutdownError("sql: database is closed"), "finding card"), wantCode: http.StatusInternalServerError, wantSignal: true},
		{name: "unexpected", err: errors.New("disk on fire"), wantCode: http.StatusInternalServerError},
		{name: "not found", err: core.NewNotFoundError("card"), wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var signalled bool
			handler := newAppHTTPErrorHandler(nopLogger{}, core.NewTranslator(), func() { signalled = true })

			rec := httptest.NewRecorder()
			handler(tt.err, echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/cards", nil), rec))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantSignal, signalled)
		})
	}
}
