package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/analytics"
)

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, authn authMiddlewares, svc *analytics.Service) {
	api := analyticsApi{svc: svc}

	ag := authn.group(g, "/analytics")
	ag.GET("/overview", api.overview)
	ag.GET("/breakdown", api.breakdown)
	ag.GET("/workload", api.workload)
	ag.GET("/trends", api.trend)
	ag.GET("/feedback", api.feedbackSummary)
}

// Handlers

func (api *analyticsApi) overview(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}
	ov, err := api.svc.Overview(ctx.Request().Context(), filter, core.Now())
	if err != nil {
		return errors.Wrap(err, "computing overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *analyticsApi) breakdown(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}
	dim := analytics.Dimension(core.CleanString(ctx.QueryParam("by"), true /* lower */))
	if dim == "" {
		dim = analytics.ByFaculty
	}

	stats, err := api.svc.Breakdown(ctx.Request().Context(), filter, dim)
	if err != nil {
		return errors.Wrap(err, "computing breakdown")
	}
	if stats == nil {
		stats = []analytics.GroupStat{}
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *analyticsApi) workload(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}
	loads, err := api.svc.Workload(ctx.Request().Context(), filter, core.Now())
	if err != nil {
		return errors.Wrap(err, "computing workload")
	}
	if loads == nil {
		loads = []analytics.EditorLoad{}
	}
	return ctx.JSON(http.StatusOK, loads)
}

// trend reads `from` and `to` as the bucket window rather than as creation dates.
func (api *analyticsApi) trend(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}
	iv := analytics.Interval(strings.ToLower(core.CleanString(ctx.QueryParam("interval"))))
	if iv == "" {
		iv = analytics.Week
	}

	tr, err := api.svc.Trend(ctx.Request().Context(), filter, iv, filter.From, filter.To, core.Now())
	if err != nil {
		return errors.Wrap(err, "computing trend")
	}
	return ctx.JSON(http.StatusOK, tr)
}

func (api *analyticsApi) feedbackSummary(ctx echo.Context) error {
	filter, err := bindAnalyticsFilter(ctx)
	if err != nil {
		return err
	}
	summary, err := api.svc.FeedbackSummary(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "computing feedback summary")
	}
	if summary == nil {
		summary = []analytics.LecturerFeedback{}
	}
	return ctx.JSON(http.StatusOK, summary)
}
