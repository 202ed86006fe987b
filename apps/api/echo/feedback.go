package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core/feedback"
)

type feedbackApi struct {
	svc *feedback.Service
}

func registerFeedbackAPI(g *echo.Group, authn authMiddlewares, svc *feedback.Service) {
	api := feedbackApi{svc: svc}

	// un-authed endpoints: lecturers only hold a signed link
	g.POST("/public/feedback", api.submitViaLink)

	fg := authn.group(g, "/feedback")
	fg.GET("", api.query)
	fg.POST("", api.create, editorMiddleware())

	// detail endpoints
	dg := fg.Group("/:id", objectMiddleware(api.svc.Get))
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy, managerMiddleware())
}

// Handlers

func (api *feedbackApi) query(ctx echo.Context) error {
	list, err := api.svc.Query(ctx.Request().Context(), bindFeedbackFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying feedback")
	}
	if list == nil {
		list = []feedback.Feedback{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *feedbackApi) create(ctx echo.Context) error {
	var data feedback.FeedbackData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FeedbackData")
	}
	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}

	f, err := api.svc.Create(ctx.Request().Context(), data, ctxStaff)
	if err != nil {
		return errors.Wrap(err, "creating feedback")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feedbackApi) submitViaLink(ctx echo.Context) error {
	var data feedback.LinkSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LinkSubmission")
	}
	f, err := api.svc.SubmitViaLink(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting feedback")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *feedbackApi) retrieve(ctx echo.Context) error {
	f, err := getContextObject[feedback.Feedback](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *feedbackApi) destroy(ctx echo.Context) error {
	f, err := getContextObject[feedback.Feedback](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), f.ID); err != nil {
		return errors.Wrap(err, "deleting feedback")
	}
	return ctx.NoContent(http.StatusNoContent)
}
