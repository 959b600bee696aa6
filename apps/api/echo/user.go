package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rm-a0/flippit-sub000/core"
	"github.com/rm-a0/flippit-sub000/core/card"
	"github.com/rm-a0/flippit-sub000/core/collection"
	"github.com/rm-a0/flippit-sub000/core/lesson"
	"github.com/rm-a0/flippit-sub000/core/user"
)

type userApi struct {
	svc       *user.Service
	cardSvc   *card.Service
	colSvc    *collection.Service
	lessonSvc *lesson.Service
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *user.Service,
	cardSvc *card.Service,
	colSvc *collection.Service,
	lessonSvc *lesson.Service,
) {
	api := userApi{svc: svc, cardSvc: cardSvc, colSvc: colSvc, lessonSvc: lessonSvc}

	ug := g.Group("/users")
	authed := authedMiddlewares(jwt)

	// public endpoints
	ug.GET("", api.query)
	ug.GET("/search", api.search)
	ug.GET("/:id", api.retrieve)
	ug.GET("/:id/cards", api.queryCards)
	ug.GET("/:id/collections", api.queryCollections)
	ug.GET("/:id/completedLessons", api.queryLessons)

	// authed endpoints
	ug.GET("/me", api.me, authed()...)
	ug.POST("", api.create, authed(adminMiddleware)...)
	ug.POST("/upsert", api.upsert, authed(adminMiddleware)...)
	ug.PUT("/:id", api.update, authed(selfOrAdminMiddleware)...)
	ug.DELETE("/:id", api.destroy, authed(selfOrAdminMiddleware)...)
}

func (api *userApi) query(ctx echo.Context) error {
	q, err := bindPageQuery(ctx)
	if err != nil {
		return err
	}
	users, err := api.svc.GetAll(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(users))
}

func (api *userApi) search(ctx echo.Context) error {
	users, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam(textParam))
	if err != nil {
		return errors.Wrap(err, "searching users")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(users))
}

func (api *userApi) me(ctx echo.Context) error {
	callerID, _ := contextCaller(ctx)
	usr, err := api.svc.GetByID(ctx.Request().Context(), callerID)
	if err != nil {
		return errors.Wrap(err, "finding context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

// getUser makes sure the user in the path exists before listing what it owns.
func (api *userApi) getUser(ctx echo.Context) (user.DetailModel, core.PageQuery, error) {
	id, err := parseID(ctx)
	if err != nil {
		return user.DetailModel{}, core.PageQuery{}, err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return user.DetailModel{}, core.PageQuery{}, errors.Wrap(err, "finding user by ID")
	}
	q, err := bindPageQuery(ctx)
	return usr, q, err
}

func (api *userApi) queryCards(ctx echo.Context) error {
	usr, q, err := api.getUser(ctx)
	if err != nil {
		return err
	}
	cards, err := api.cardSvc.GetByCreator(ctx.Request().Context(), usr.ID, q)
	if err != nil {
		return errors.Wrap(err, "querying user cards")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cards))
}

func (api *userApi) queryCollections(ctx echo.Context) error {
	usr, q, err := api.getUser(ctx)
	if err != nil {
		return err
	}
	cols, err := api.colSvc.GetByCreator(ctx.Request().Context(), usr.ID, q)
	if err != nil {
		return errors.Wrap(err, "querying user collections")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(cols))
}

func (api *userApi) queryLessons(ctx echo.Context) error {
	usr, q, err := api.getUser(ctx)
	if err != nil {
		return err
	}
	lessons, err := api.lessonSvc.GetByUser(ctx.Request().Context(), usr.ID, q)
	if err != nil {
		return errors.Wrap(err, "querying user completed lessons")
	}
	return ctx.JSON(http.StatusOK, emptyIfNil(lessons))
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *userApi) upsert(ctx echo.Context) error {
	var data user.DetailModel
	if err := bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}
	usr, err := api.svc.CreateOrUpdate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	var data user.DetailModel
	if err = bindBody(ctx, &data); err != nil {
		return errors.Wrap(err, "binding to DetailModel")
	}

	// `Role` can only be changed by admin
	if _, roles := contextCaller(ctx); !core.IsAdmin(roles) && data.Role != "" {
		usr, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding user by ID")
		}
		if data.Role != usr.Role {
			return errNoPermsToSetRole
		}
	}

	usr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}
