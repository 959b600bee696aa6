package echoapi

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
)

const (
	idParam   = "id"
	textParam = "text"
	callerKey = "caller"
	rolesKey  = "roles"
)

// bindPageQuery reads filter, sortBy, page & pageSize from the query string.
// Missing paging params keep their defaults; the service validates the result.
func bindPageQuery(ctx echo.Context) (core.PageQuery, error) {
	q := core.NewPageQuery()
	if err := ctx.Bind(&q); err != nil {
		return q, errors.Wrap(err, "binding to PageQuery")
	}
	return q, nil
}

// bindBody decodes the JSON request body into i. echo's Bind also maps path params onto
// fields of the same name, which would clash with the `id` param of detail routes.
func bindBody(ctx echo.Context, i interface{}) error {
	if err := json.NewDecoder(ctx.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error()).SetInternal(err)
	}
	return nil
}

// parseID reads a uuid path param. Malformed ids can match no resource, hence 404.
func parseID(ctx echo.Context, name ...string) (uuid.UUID, error) {
	param := idParam
	if len(name) > 0 {
		param = name[0]
	}
	id, err := uuid.Parse(ctx.Param(param))
	if err != nil {
		return uuid.Nil, errHttpNotFound
	}
	return id, nil
}

// emptyIfNil makes sure listings are serialized as [] rather than null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
