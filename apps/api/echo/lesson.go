package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core/lesson"
)

type lessonApi struct {
	svc *lesson.Service
}

func registerLessonAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *lesson.Service) {
	api := lessonApi{svc: svc}

	lg := g.Group("/completedLessons")
	authed := authedMiddlewares(jwt)

	lg.GET("", api.query)
	lg.GET("/search", api.search)
	lg.GET("/:id", api.retrieve)

	lg.POST("", api.create, authed()...)
	lg.POST("/upsert", api.upsert, authed()...)
	lg.PUT("/:id", api.update, authed()...)
	lg.DELETE("/:id", api.destroy, authed()...)
}

func (api *lessonApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	lessons, err := api.svc.GetAll(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "querying completed lessons")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(lessons))
}

func (api *lessonApi) search(ctx echo.Context) error {
	lessons, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam(textParam))
	if err != nil {
		return errors.Wrap(err, "searching completed lessons")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(lessons))
}

func (api *lessonApi) retrieve(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	l, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding completed lesson by ID")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) create(ctx echo.Context) error {
	var data lesson.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.UserID = ownedBy(ctx, data.UserID)

	l, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating completed lesson")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *lessonApi) upsert(ctx echo.Context) error {
	var data lesson.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	data.UserID = ownedBy(ctx, data.UserID)

	callerID, roles := contextCaller(ctx)
	l, err := api.svc.CreateOrUpdate(ctx.Request().Context(), data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "saving completed lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *lessonApi) update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var data lesson.DetailModel
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}

	callerID, roles := contextCaller(ctx)
	l, err := api.svc.Update(ctx.Request().Context(), id, data, roles, callerID)
	if err != nil {
		return errors.Wrap(err, "updating completed lesson")
	}
	return ctx.JSON(http.StatusOK, l)
}

// destroy is restricted to admins by the service.
func (api *lessonApi) destroy(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	_, roles := contextCaller(ctx)
	if err = api.svc.Delete(ctx.Request().Context(), id, roles); err != nil {
		return errors.Wrap(err, "deleting completed lesson")
	}
	return ctx.NoContent(http.StatusNoContent)
}
