package echoapi

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
)

type cardApi struct {
	svc *card.Service
}

func registerCardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *card.Service) {
	api := cardApi{svc: svc}

	cg := g.Group("/cards")
	authed := authedMiddlewares(jwt)

	cg.GET("", api.query)
	cg.GET("/search", api.search)
	cg.GET("/:id", api.retrieve)

	cg.POST("", api.create, authed()...)
	cg.POST("/upsert", api.upsert, authed()...)
	cg.PUT("/:id", api.update, authed()...)
	cg.DELETE("/:id", api.destroy, authed()...)
}

// ownedBy returns the creator of a new resource: the caller, unless an admin supplied one.
func ownedBy(ctx echo.Context, supplied uuid.UUID) uuid.UUID {
	callerID, roles := contextCaller(ctx)
	if supplied != uuid.Nil && core.IsAdmin(roles) {
		return supplied
	}
	return callerID
}

func (api *cardApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	cards, err := api.svc.GetAll(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "querying cards")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cards))
}

func (api *cardApi) search(ctx echo.Context) error {
	cards, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam(textParam))
	if err != nil {
		return errors.Wrap(err, "searching cards")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cards))
}

func (api *cardApi) retrieve(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding card by ID")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cardApi) create(ctx echo.Context) error {
	var data card.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.CreatorID = ownedBy(ctx, data.CreatorID)

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating card")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cardApi) upsert(ctx echo.Context) error {
	var data card.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.CreatorID = ownedBy(ctx, data.CreatorID)

	callerID, roles := contextCaller(ctx)
	c, err := api.svc.CreateOrUpdate(ctx.Request().Context(), data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "saving card")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cardApi) update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var data card.DetailModel
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}

	callerID, roles := contextCaller(ctx)
	c, err := api.svc.Update(ctx.Request().Context(), id, data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "updating card")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cardApi) destroy(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	callerID, roles := contextCaller(ctx)
	if err = api.svc.Delete(ctx.Request().Context(), id, roles, callerID); err != nil {
		return errors.Wrap(err, "deleting card")
	}
	return ctx.NoContent(http.StatusNoContent)
}
