package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/rm-a0/flippit-sub000/apps/api/echo"
	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/user"
	testutil "github.com/rm-a0/flippit-sub000/tests"
)

func parseToken(t *testing.T, conf *core.Config, token string) *echoapi.Claims {
	t.Helper()
	claims := new(echoapi.Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	require.NoError(t, err)
	return claims
}

func Test_home(t *testing.T) {
	app := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to the Flippit API!", rec.Body.String())
}

func Test_authApi_login(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.users, "Alice", "alice", "Pass123!", core.RoleAdmin)
	invalidCreds := marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()})

	tests := []httpTest{
		{name: "unknown user", body: marchallObj(t, echoapi.LoginRequest{Username: "bob", Password: "Pass123!"}), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
		{name: "wrong password", body: marchallObj(t, echoapi.LoginRequest{Username: "alice", Password: "nope"}), wantCode: http.StatusUnauthorized, wantData: invalidCreds},
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{name: "malformed body", body: []byte(`{"username":`), wantCode: http.StatusBadRequest},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/login"
	}
	app.run(t, tests)

	t.Run("valid", func(t *testing.T) {
		rec := app.serve(t, httpTest{
			method: http.MethodPost,
			path:   "/api/auth/login",
			body:   marchallObj(t, echoapi.LoginRequest{Username: " ALICE ", Password: "Pass123!"}),
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.TokenResponse
		decode(t, rec, &resp)
		claims := parseToken(t, app.conf, resp.Token)
		assert.Equal(t, usr.ID.String(), claims.Subject)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, []string{core.RoleAdmin}, claims.Roles)
		assert.Equal(t, claims.IssuedAt, claims.OrigIssuedAt)
	})
}

func Test_authApi_register(t *testing.T) {
	app := setup(t)
	testutil.CreateUser(t, app.users, "Taken", "taken", "Pass123!", "")

	body := func(uname, pwd, confirm string) []byte {
		return marchallObj(t, user.RegisterModel{Username: uname, Password: pwd, PasswordConfirm: confirm})
	}

	tests := []httpTest{
		{
			name: "username taken", body: body("Taken", "Str0ng!Pwd", "Str0ng!Pwd"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "weak password", body: body("newbie", "password", "password"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "confirmation differs", body: body("newbie", "Str0ng!Pwd", "Str0ng!Pwd2"), wantCode: http.StatusBadRequest,
		},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/register"
	}
	app.run(t, tests)

	t.Run("valid", func(t *testing.T) {
		rec := app.serve(t, httpTest{method: http.MethodPost, path: "/api/auth/register", body: body("Newbie", "Str0ng!Pwd", "Str0ng!Pwd")})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got user.DetailModel
		decode(t, rec, &got)
		assert.Equal(t, "newbie", got.Username)
		assert.Equal(t, core.RoleUser, got.Role)

		// the new account can log in
		rec = app.serve(t, httpTest{
			method: http.MethodPost,
			path:   "/api/auth/login",
			body:   marchallObj(t, echoapi.LoginRequest{Username: "newbie", Password: "Str0ng!Pwd"}),
		})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})
}

func Test_authApi_refreshToken(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.users, "Alice", "alice", "Pass123!", "")
	ghost := user.User{ID: usr.ID, Name: "ghost"}
	ghost.ID[0] ^= 0xff // not stored

	expiredRefresh := func() string {
		claims := echoapi.GetUserClaims(app.conf, usr, time.Now().Add(-48*time.Hour).Unix())
		token, err := echoapi.GenerateToken(app.conf, claims)
		require.NoError(t, err)
		return token
	}()

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "bad token", token: "not.a.jwt", wantCode: http.StatusUnauthorized},
		{name: "unknown user", token: getToken(t, app.conf, ghost), wantCode: http.StatusUnauthorized},
		{name: "refresh expired", token: expiredRefresh, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
	}
	for i := range tests {
		tests[i].method = http.MethodPost
		tests[i].path = "/api/auth/token-refresh"
	}
	app.run(t, tests)

	t.Run("valid", func(t *testing.T) {
		origIat := time.Now().Add(-time.Hour).Unix()
		token, err := echoapi.GenerateToken(app.conf, echoapi.GetUserClaims(app.conf, usr, origIat))
		require.NoError(t, err)

		rec := app.serve(t, httpTest{method: http.MethodPost, path: "/api/auth/token-refresh", token: token})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp echoapi.TokenResponse
		decode(t, rec, &resp)
		claims := parseToken(t, app.conf, resp.Token)
		assert.Equal(t, origIat, claims.OrigIssuedAt, "original issue time is kept")
		assert.Equal(t, usr.ID.String(), claims.Subject)
	})

	t.Run("expired token", func(t *testing.T) {
		conf := *app.conf
		conf.Server.JWTExpirationDelta = -time.Minute
		token, err := echoapi.GenerateToken(&conf, echoapi.GetUserClaims(&conf, usr))
		require.NoError(t, err)

		rec := app.serve(t, httpTest{method: http.MethodPost, path: "/api/auth/token-refresh", token: token})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
