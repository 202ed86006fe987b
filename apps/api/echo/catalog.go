package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/term"
)

type catalogApi struct {
	faculties *faculty.Service
	terms     *term.Service
	lecturers *lecturer.Service
}

func registerCatalogAPI(
	g *echo.Group,
	authn authMiddlewares,
	faculties *faculty.Service,
	terms *term.Service,
	lecturers *lecturer.Service,
) {
	api := catalogApi{
		faculties: faculties,
		terms:     terms,
		lecturers: lecturers,
	}

	fg := authn.group(g, "/faculties")
	fg.GET("", api.queryFaculties)
	fg.POST("", api.createFaculty, managerMiddleware())
	fdg := fg.Group("/:id", objectMiddleware(api.faculties.Get))
	fdg.GET("", api.retrieve)
	fdg.PUT("", api.updateFaculty, managerMiddleware())
	fdg.DELETE("", api.destroyFaculty, managerMiddleware())
	fdg.GET("/programs", api.queryPrograms)
	fdg.POST("/programs", api.createProgram, managerMiddleware())

	pg := authn.group(g, "/programs")
	pdg := pg.Group("/:id", objectMiddleware(api.faculties.GetProgram))
	pdg.GET("", api.retrieve)
	pdg.PUT("", api.updateProgram, managerMiddleware())
	pdg.DELETE("", api.destroyProgram, managerMiddleware())

	tg := authn.group(g, "/terms")
	tg.GET("", api.queryTerms)
	tg.POST("", api.createTerm, managerMiddleware())
	tdg := tg.Group("/:id", objectMiddleware(api.terms.Get))
	tdg.GET("", api.retrieve)
	tdg.PUT("", api.updateTerm, managerMiddleware())
	tdg.DELETE("", api.destroyTerm, managerMiddleware())

	lg := authn.group(g, "/lecturers")
	lg.GET("", api.queryLecturers)
	lg.POST("", api.createLecturer, managerMiddleware())
	ldg := lg.Group("/:id", objectMiddleware(api.lecturers.Get))
	ldg.GET("", api.retrieve)
	ldg.PUT("", api.updateLecturer, managerMiddleware())
	ldg.DELETE("", api.destroyLecturer, managerMiddleware())
}

// retrieve returns the object loaded by objectMiddleware, whatever its type.
func (api *catalogApi) retrieve(ctx echo.Context) error {
	obj := ctx.Get(contextObjectKey)
	if obj == nil {
		return errors.Wrap(errObjectNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, obj)
}

// Faculties

func (api *catalogApi) queryFaculties(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, faculty.OrderingFields)
	filter := &faculty.QueryFilter{Search: core.CleanString(ctx.QueryParam("search"))}

	list, err := api.faculties.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying faculties")
	}
	if list == nil {
		list = []faculty.Faculty{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *catalogApi) createFaculty(ctx echo.Context) error {
	var data faculty.FacultyData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FacultyData")
	}
	f, err := api.faculties.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating faculty")
	}
	return ctx.JSON(http.StatusCreated, f)
}

func (api *catalogApi) updateFaculty(ctx echo.Context) error {
	f, err := getContextObject[faculty.Faculty](ctx)
	if err != nil {
		return err
	}
	var data faculty.FacultyData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FacultyData")
	}
	f, err = api.faculties.Update(ctx.Request().Context(), f, data)
	if err != nil {
		return errors.Wrap(err, "updating faculty")
	}
	return ctx.JSON(http.StatusOK, f)
}

func (api *catalogApi) destroyFaculty(ctx echo.Context) error {
	f, err := getContextObject[faculty.Faculty](ctx)
	if err != nil {
		return err
	}
	if err := api.faculties.Delete(ctx.Request().Context(), f.ID); err != nil {
		return errors.Wrap(err, "deleting faculty")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Programs

func (api *catalogApi) queryPrograms(ctx echo.Context) error {
	f, err := getContextObject[faculty.Faculty](ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, faculty.OrderingFields)
	filter := &faculty.QueryFilter{
		Search:    core.CleanString(ctx.QueryParam("search")),
		FacultyID: f.ID,
	}

	list, err := api.faculties.QueryPrograms(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying programs")
	}
	if list == nil {
		list = []faculty.Program{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *catalogApi) createProgram(ctx echo.Context) error {
	f, err := getContextObject[faculty.Faculty](ctx)
	if err != nil {
		return err
	}
	var data faculty.ProgramData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgramData")
	}
	data.FacultyID = f.ID

	p, err := api.faculties.CreateProgram(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating program")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *catalogApi) updateProgram(ctx echo.Context) error {
	p, err := getContextObject[faculty.Program](ctx)
	if err != nil {
		return err
	}
	var data faculty.ProgramData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgramData")
	}
	if data.FacultyID == "" {
		data.FacultyID = p.FacultyID
	}
	p, err = api.faculties.UpdateProgram(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating program")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *catalogApi) destroyProgram(ctx echo.Context) error {
	p, err := getContextObject[faculty.Program](ctx)
	if err != nil {
		return err
	}
	if err := api.faculties.DeleteProgram(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting program")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Terms

func (api *catalogApi) queryTerms(ctx echo.Context) error {
	active, err := queryDate(ctx, "active_on")
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, term.OrderingFields)
	filter := &term.QueryFilter{
		Search: core.CleanString(ctx.QueryParam("search")),
		Active: active,
	}

	list, err := api.terms.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying terms")
	}
	if list == nil {
		list = []term.Term{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *catalogApi) createTerm(ctx echo.Context) error {
	var data term.TermData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TermData")
	}
	tm, err := api.terms.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating term")
	}
	return ctx.JSON(http.StatusCreated, tm)
}

func (api *catalogApi) updateTerm(ctx echo.Context) error {
	tm, err := getContextObject[term.Term](ctx)
	if err != nil {
		return err
	}
	var data term.TermData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TermData")
	}
	tm, err = api.terms.Update(ctx.Request().Context(), tm, data)
	if err != nil {
		return errors.Wrap(err, "updating term")
	}
	return ctx.JSON(http.StatusOK, tm)
}

func (api *catalogApi) destroyTerm(ctx echo.Context) error {
	tm, err := getContextObject[term.Term](ctx)
	if err != nil {
		return err
	}
	if err := api.terms.Delete(ctx.Request().Context(), tm.ID); err != nil {
		return errors.Wrap(err, "deleting term")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Lecturers

func (api *catalogApi) queryLecturers(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx, lecturer.OrderingFields)
	filter := &lecturer.QueryFilter{
		Search:    core.CleanString(ctx.QueryParam("search")),
		FacultyID: core.CleanString(ctx.QueryParam("faculty_id")),
	}

	list, err := api.lecturers.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying lecturers")
	}
	if list == nil {
		list = []lecturer.Lecturer{}
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *catalogApi) createLecturer(ctx echo.Context) error {
	var data lecturer.LecturerData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LecturerData")
	}
	l, err := api.lecturers.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating lecturer")
	}
	return ctx.JSON(http.StatusCreated, l)
}

func (api *catalogApi) updateLecturer(ctx echo.Context) error {
	l, err := getContextObject[lecturer.Lecturer](ctx)
	if err != nil {
		return err
	}
	var data lecturer.LecturerData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LecturerData")
	}
	l, err = api.lecturers.Update(ctx.Request().Context(), l, data)
	if err != nil {
		return errors.Wrap(err, "updating lecturer")
	}
	return ctx.JSON(http.StatusOK, l)
}

func (api *catalogApi) destroyLecturer(ctx echo.Context) error {
	l, err := getContextObject[lecturer.Lecturer](ctx)
	if err != nil {
		return err
	}
	if err := api.lecturers.Delete(ctx.Request().Context(), l.ID); err != nil {
		return errors.Wrap(err, "deleting lecturer")
	}
	return ctx.NoContent(http.StatusNoContent)
}
