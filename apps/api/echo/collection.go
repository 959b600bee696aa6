package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
)

type collectionApi struct {
	svc       *collection.Service
	cardSvc   *card.Service
	lessonSvc *lesson.Service
}

func registerCollectionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *collection.Service,
	cardSvc *card.Service,
	lessonSvc *lesson.Service,
) {
	api := collectionApi{svc: svc, cardSvc: cardSvc, lessonSvc: lessonSvc}

	cg := g.Group("/collections")
	authed := authedMiddlewares(jwt)

	cg.GET("", api.query)
	cg.GET("/search", api.search)
	cg.GET("/:id", api.retrieve)
	cg.GET("/:id/cards", api.queryCards)
	cg.GET("/:id/completedLessons", api.queryLessons)

	cg.POST("", api.create, authed()...)
	cg.POST("/upsert", api.upsert, authed()...)
	cg.PUT("/:id", api.update, authed()...)
	cg.DELETE("/:id", api.destroy, authed()...)
}

func (api *collectionApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	cols, err := api.svc.GetAll(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "querying collections")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cols))
}

func (api *collectionApi) search(ctx echo.Context) error {
	cols, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam(textParam))
	if err != nil {
		return errors.Wrap(err, "searching collections")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cols))
}

func (api *collectionApi) retrieve(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	col, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding collection by ID")
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *collectionApi) queryCards(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	cards, err := api.cardSvc.GetByCollection(ctx.Request().Context(), id, q)
	if err != nil {
		return errors.Wrap(err, "querying collection cards")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cards))
}

func (api *collectionApi) queryLessons(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	lessons, err := api.lessonSvc.GetByCollection(ctx.Request().Context(), id, q)
	if err != nil {
		return errors.Wrap(err, "querying collection completed lessons")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(lessons))
}

func (api *collectionApi) create(ctx echo.Context) error {
	var data collection.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.CreatorID = ownedBy(ctx, data.CreatorID)

	col, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating collection")
	}
	return ctx.JSON(http.StatusCreated, col)
}

func (api *collectionApi) upsert(ctx echo.Context) error {
	var data collection.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.CreatorID = ownedBy(ctx, data.CreatorID)

	callerID, roles := contextCaller(ctx)
	col, err := api.svc.CreateOrUpdate(ctx.Request().Context(), data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "saving collection")
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *collectionApi) update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var data collection.DetailModel
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}

	callerID, roles := contextCaller(ctx)
	col, err := api.svc.Update(ctx.Request().Context(), id, data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "updating collection")
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *collectionApi) destroy(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	callerID, roles := contextCaller(ctx)
	if err = api.svc.Delete(ctx.Request().Context(), id, roles, callerID); err != nil {
		return errors.Wrap(err, "deleting collection")
	}
	return ctx.NoContent(http.StatusNoContent)
}
