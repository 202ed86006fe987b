package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
)

const (
	orderingParam = "ordering"
	dateLayout    = "2006-01-02"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads `?ordering=field,-field` and keeps the fields found in allowed.
func (ord *Ordering) Bind(ctx echo.Context, allowed map[string]string) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	var orderings []core.DBOrdering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		orderings = append(orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	ord.Orderings = core.CleanOrdering(orderings, allowed)
}

// query params

func paramErr(name string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: name, Error: err.Error()})
}

// queryValues returns every value of a repeatable param, also splitting comma separated values.
func queryValues(ctx echo.Context, name string) []string {
	var values []string
	for _, v := range ctx.QueryParams()[name] {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				values = append(values, item)
			}
		}
	}
	return values
}

func queryBool(ctx echo.Context, name string) (*bool, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, paramErr(name, errors.New("must be a boolean"))
	}
	return &b, nil
}

func queryDate(ctx echo.Context, name string) (time.Time, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, val)
	if err != nil {
		return time.Time{}, paramErr(name, errors.New("must be a date formatted as YYYY-MM-DD"))
	}
	return d, nil
}

// endOfDay returns the last instant of the day d starts.
func endOfDay(d time.Time) time.Time {
	if d.IsZero() {
		return d
	}
	return d.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// filters

func bindStaffFilter(ctx echo.Context) (*staff.QueryFilter, error) {
	isActive, err := queryBool(ctx, "is_active")
	if err != nil {
		return nil, err
	}
	isApproved, err := queryBool(ctx, "is_approved")
	if err != nil {
		return nil, err
	}
	return &staff.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Roles:      queryValues(ctx, "role"),
		IsActive:   isActive,
		IsApproved: isApproved,
	}, nil
}

func bindProjectFilter(ctx echo.Context) (*project.QueryFilter, error) {
	dueBefore, err := queryDate(ctx, "due_before")
	if err != nil {
		return nil, err
	}
	status := project.Status(core.CleanString(ctx.QueryParam("status"), true /* lower */))
	if status != "" && !status.IsValid() {
		return nil, paramErr("status", errors.New("unknown project status"))
	}
	return &project.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Status:     status,
		TermID:     core.CleanString(ctx.QueryParam("term_id")),
		ProgramID:  core.CleanString(ctx.QueryParam("program_id")),
		FacultyID:  core.CleanString(ctx.QueryParam("faculty_id")),
		LecturerID: core.CleanString(ctx.QueryParam("lecturer_id")),
		StaffID:    core.CleanString(ctx.QueryParam("staff_id")),
		DueBefore:  dueBefore,
	}, nil
}

func bindVideoFilter(ctx echo.Context) (*video.QueryFilter, error) {
	filter := &video.QueryFilter{
		ProjectID: core.CleanString(ctx.QueryParam("project_id")),
		EditorID:  core.CleanString(ctx.QueryParam("editor_id")),
		Search:    ctx.QueryParam("search"),
	}
	for _, val := range queryValues(ctx, "status") {
		st := video.Status(strings.ToLower(val))
		if !st.IsValid() {
			return nil, paramErr("status", errors.Errorf("unknown video status %q", val))
		}
		filter.Statuses = append(filter.Statuses, st)
	}
	overdue, err := queryBool(ctx, "overdue")
	if err != nil {
		return nil, err
	}
	if overdue != nil && *overdue {
		filter.OverdueAt = core.Now()
	}
	return filter, nil
}

func bindFeedbackFilter(ctx echo.Context) *feedback.QueryFilter {
	return &feedback.QueryFilter{
		ProjectID:  core.CleanString(ctx.QueryParam("project_id")),
		LecturerID: core.CleanString(ctx.QueryParam("lecturer_id")),
		VideoID:    core.CleanString(ctx.QueryParam("video_id")),
	}
}

// bindAnalyticsFilter reads the report scope. `to` includes the whole day.
func bindAnalyticsFilter(ctx echo.Context) (analytics.Filter, error) {
	from, err := queryDate(ctx, "from")
	if err != nil {
		return analytics.Filter{}, err
	}
	to, err := queryDate(ctx, "to")
	if err != nil {
		return analytics.Filter{}, err
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return analytics.Filter{}, paramErr("from", analytics.ErrInvalidWindow)
	}
	return analytics.Filter{
		TermID:     core.CleanString(ctx.QueryParam("term_id")),
		FacultyID:  core.CleanString(ctx.QueryParam("faculty_id")),
		ProgramID:  core.CleanString(ctx.QueryParam("program_id")),
		LecturerID: core.CleanString(ctx.QueryParam("lecturer_id")),
		EditorID:   core.CleanString(ctx.QueryParam("editor_id")),
		From:       from,
		To:         endOfDay(to),
	}, nil
}

// DestroyMultipleRequest holds the ids of a bulk delete: `?id=...&id=...`.
type DestroyMultipleRequest struct {
	IDs []string
}

func (dr *DestroyMultipleRequest) Bind(ctx echo.Context) {
	dr.IDs = queryValues(ctx, "id")
}
