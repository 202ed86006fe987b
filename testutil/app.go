package testutil

import (
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/core/video"
	appfs "github.com/trezcool/vidtrack/fs"
	"github.com/trezcool/vidtrack/storage/database/inmem"
)

// App wires every service on top of a fresh in-memory database.
type App struct {
	Conf       *core.Config
	DB         *inmemdb.DB
	Logger     *Logger
	Validate   *validator.Validate
	Translator ut.Translator

	StaffRepo    staff.Repository
	FacultyRepo  faculty.Repository
	TermRepo     term.Repository
	LecturerRepo lecturer.Repository
	ProjectRepo  project.Repository
	VideoRepo    video.Repository
	FeedbackRepo feedback.Repository

	StaffSvc     *staff.Service
	FacultySvc   *faculty.Service
	TermSvc      *term.Service
	LecturerSvc  *lecturer.Service
	ProjectSvc   *project.Service
	VideoSvc     *video.Service
	FeedbackSvc  *feedback.Service
	AnalyticsSvc *analytics.Service
}

// NewApp builds the services; mailSvc is usually the synchronous console mock.
func NewApp(t *testing.T, mailSvc core.EmailService) *App {
	conf := core.NewTestConfig()
	if err := core.ParseEmailTemplates(appfs.FS, appfs.EmailTemplatesDir, conf.FrontendBaseURL, true); err != nil {
		t.Fatalf("NewApp(): %v", err)
	}

	app := &App{
		Conf:   conf,
		DB:     inmemdb.Open(),
		Logger: NewLogger(),
	}
	app.Validate, app.Translator = NewValidatorAndTranslator()

	app.StaffRepo = inmemdb.NewStaffRepository(app.DB)
	app.FacultyRepo = inmemdb.NewFacultyRepository(app.DB)
	app.TermRepo = inmemdb.NewTermRepository(app.DB)
	app.LecturerRepo = inmemdb.NewLecturerRepository(app.DB)
	app.ProjectRepo = inmemdb.NewProjectRepository(app.DB)
	app.VideoRepo = inmemdb.NewVideoRepository(app.DB)
	app.FeedbackRepo = inmemdb.NewFeedbackRepository(app.DB)

	app.StaffSvc = staff.NewService(app.StaffRepo, app.Validate)
	app.FacultySvc = faculty.NewService(app.FacultyRepo, app.Validate)
	app.TermSvc = term.NewService(app.TermRepo, app.Validate)
	app.LecturerSvc = lecturer.NewService(app.LecturerRepo, app.FacultySvc, app.Validate)
	app.ProjectSvc = project.NewService(
		app.ProjectRepo,
		project.NewCatalog(app.LecturerSvc, app.FacultySvc, app.TermSvc),
		app.StaffSvc,
		mailSvc,
		app.Validate,
	)
	app.FeedbackSvc = feedback.NewService(
		app.FeedbackRepo, app.ProjectSvc, app.VideoRepo, app.LecturerSvc, mailSvc, app.Validate, app.Conf,
	)
	app.VideoSvc = video.NewService(app.VideoRepo, app.ProjectSvc, app.StaffSvc, app.FeedbackSvc, app.Logger, app.Validate)
	app.AnalyticsSvc = analytics.NewService(inmemdb.NewAnalyticsSource(app.DB))
	return app
}

// Catalog is a minimal set of catalog records projects can point to.
type Catalog struct {
	Faculty  faculty.Faculty
	Program  faculty.Program
	Term     term.Term
	Lecturer lecturer.Lecturer
}

func (app *App) SeedCatalog(t *testing.T) Catalog {
	f := CreateFaculty(t, app.FacultyRepo, "Engineering", "ENG")
	return Catalog{
		Faculty:  f,
		Program:  CreateProgram(t, app.FacultyRepo, f.ID, "Computer Science", "CS"),
		Term:     CreateTerm(t, app.TermRepo, "Spring 2024", "2024-02-01", "2024-06-30"),
		Lecturer: CreateLecturer(t, app.LecturerRepo, "Ada Lovelace", "ada@uni.test", f.ID),
	}
}

// NewProject creates a project of the catalog, bypassing the service.
func (app *App) NewProject(t *testing.T, cat Catalog, title string) project.Project {
	return CreateProject(t, app.ProjectRepo, project.Project{
		Title:      title,
		LecturerID: cat.Lecturer.ID,
		ProgramID:  cat.Program.ID,
		TermID:     cat.Term.ID,
	})
}
