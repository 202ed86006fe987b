package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core/video"
)

type videoApi struct {
	svc *video.Service
}

func registerVideoAPI(g *echo.Group, authn authMiddlewares, svc *video.Service) {
	api := videoApi{svc: svc}

	vg := authn.group(g, "/videos")
	vg.GET("", api.query)

	// detail endpoints
	dg := vg.Group("/:id", objectMiddleware(api.svc.Get))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, managerMiddleware())
	dg.DELETE("", api.destroy, managerMiddleware())
	dg.PATCH("/status", api.changeStatus)
	dg.GET("/history", api.history)
}

// Handlers

func (api *videoApi) query(ctx echo.Context) error {
	filter, err := bindVideoFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, video.OrderingFields)

	list, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying videos")
	}
	if list == nil {
		list = []video.Video{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *videoApi) retrieve(ctx echo.Context) error {
	v, err := getContextObject[video.Video](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *videoApi) update(ctx echo.Context) error {
	v, err := getContextObject[video.Video](ctx)
	if err != nil {
		return err
	}
	var data video.VideoData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VideoData")
	}

	v, err = api.svc.Update(ctx.Request().Context(), v, data)
	if err != nil {
		return errors.Wrap(err, "updating video")
	}
	return ctx.JSON(http.StatusOK, v)
}

// changeStatus is open to managers, and to the editor of the video.
func (api *videoApi) changeStatus(ctx echo.Context) error {
	v, err := getContextObject[video.Video](ctx)
	if err != nil {
		return err
	}
	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}
	if !video.CanChangeStatus(ctxStaff, v) {
		return errHttpForbidden
	}

	var data video.StatusChange
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusChange")
	}
	v, err = api.svc.ChangeStatus(ctx.Request().Context(), v, data, ctxStaff)
	if err != nil {
		return errors.Wrap(err, "changing video status")
	}
	return ctx.JSON(http.StatusOK, v)
}

func (api *videoApi) history(ctx echo.Context) error {
	v, err := getContextObject[video.Video](ctx)
	if err != nil {
		return err
	}
	events, err := api.svc.History(ctx.Request().Context(), v.ID)
	if err != nil {
		return errors.Wrap(err, "querying video history")
	}
	if events == nil {
		events = []video.StatusEvent{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *videoApi) destroy(ctx echo.Context) error {
	v, err := getContextObject[video.Video](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), v); err != nil {
		return errors.Wrap(err, "deleting video")
	}
	return ctx.NoContent(http.StatusNoContent)
}
