package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

type projectApi struct {
	svc         *project.Service
	videoSvc    *video.Service
	feedbackSvc *feedback.Service
	lecturerSvc *lecturer.Service
}

func registerProjectAPI(
	g *echo.Group,
	authn authMiddlewares,
	svc *project.Service,
	videoSvc *video.Service,
	feedbackSvc *feedback.Service,
	lecturerSvc *lecturer.Service,
) {
	api := projectApi{
		svc:         svc,
		videoSvc:    videoSvc,
		feedbackSvc: feedbackSvc,
		lecturerSvc: lecturerSvc,
	}

	pg := authn.group(g, "/projects")
	pg.GET("", api.query)
	pg.POST("", api.create, managerMiddleware())
	pg.DELETE("", api.destroyMultiple, managerMiddleware())

	// detail endpoints
	dg := pg.Group("/:id", objectMiddleware(api.svc.Get))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, managerMiddleware())
	dg.DELETE("", api.destroy, managerMiddleware())

	dg.GET("/assignments", api.queryAssignments)
	dg.POST("/assignments", api.assign, managerMiddleware())
	dg.DELETE("/assignments/:staff_id", api.unassign, managerMiddleware())

	dg.GET("/videos", api.queryVideos)
	dg.POST("/videos", api.createVideo, managerMiddleware())

	dg.GET("/feedback", api.queryFeedback)
	dg.POST("/feedback-link", api.createFeedbackLink, managerMiddleware())
}

// Handlers

func (api *projectApi) query(ctx echo.Context) error {
	filter, err := bindProjectFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, project.OrderingFields)

	list, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if list == nil {
		list = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.ProjectData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectData")
	}
	ctxStaff, err := getContextStaff(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context staff")
	}

	p, err := api.svc.Create(ctx.Request().Context(), data, ctxStaff)
	if err != nil {
		return errors.Wrap(err, "creating project")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *projectApi) update(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	var data project.ProjectData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProjectData")
	}

	p, err = api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating project")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *projectApi) destroy(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting project")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	query.Bind(ctx)
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting projects")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *projectApi) queryAssignments(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	list, err := api.svc.Assignments(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if list == nil {
		list = []project.Assignment{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *projectApi) assign(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	var data project.AssignmentData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssignmentData")
	}

	a, err := api.svc.Assign(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "assigning staff")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *projectApi) unassign(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Unassign(ctx.Request().Context(), p.ID, ctx.Param("staff_id")); err != nil {
		return errors.Wrap(err, "unassigning staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Videos

func (api *projectApi) queryVideos(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	filter, err := bindVideoFilter(ctx)
	if err != nil {
		return err
	}
	filter.ProjectID = p.ID
	ordering := new(Ordering)
	ordering.Bind(ctx, video.OrderingFields)

	list, err := api.videoSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying videos")
	}
	if list == nil {
		list = []video.Video{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *projectApi) createVideo(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	var data video.VideoData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VideoData")
	}

	v, err := api.videoSvc.Create(ctx.Request().Context(), p.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating video")
	}
	return ctx.JSON(http.StatusCreated, v)
}

// Feedback

func (api *projectApi) queryFeedback(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	list, err := api.feedbackSvc.Query(ctx.Request().Context(), &feedback.QueryFilter{ProjectID: p.ID})
	if err != nil {
		return errors.Wrap(err, "querying feedback")
	}
	if list == nil {
		list = []feedback.Feedback{}
	}
	return ctx.JSON(http.StatusOK, list)
}

// createFeedbackLink signs a feedback link for the project's lecturer, to be shared by hand.
func (api *projectApi) createFeedbackLink(ctx echo.Context) error {
	p, err := getContextObject[project.Project](ctx)
	if err != nil {
		return err
	}
	l, err := api.lecturerSvc.Get(ctx.Request().Context(), p.LecturerID)
	if err != nil {
		return errors.Wrap(err, "finding lecturer")
	}

	link, err := api.feedbackSvc.MakeLink(p, l)
	if err != nil {
		return errors.Wrap(err, "making feedback link")
	}
	return ctx.JSON(http.StatusCreated, link)
}
