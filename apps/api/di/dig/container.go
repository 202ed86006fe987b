package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/vidtrack/apps/api/echo"
	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/core/video"
	emailsvc "github.com/trezcool/vidtrack/services/email"
	logsvc "github.com/trezcool/vidtrack/services/logger"
	"github.com/trezcool/vidtrack/storage/database"
	inmemdb "github.com/trezcool/vidtrack/storage/database/inmem"
	boiledrepos "github.com/trezcool/vidtrack/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/vidtrack/storage/database/sqlx"
)

// Store is the database behind the repositories: SQL for postgres engines, Mem for inmem.
type Store struct {
	SQL *sqlx.DB
	Mem *inmemdb.DB
}

func (s *Store) Close() error {
	if s.SQL == nil {
		return nil
	}
	return s.SQL.Close()
}

type repositories struct {
	dig.Out

	Staff     staff.Repository
	Faculty   faculty.Repository
	Term      term.Repository
	Lecturer  lecturer.Repository
	Project   project.Repository
	Video     video.Repository
	Feedback  feedback.Repository
	Analytics analytics.Source
}

type serverParams struct {
	dig.In

	Conf         *core.Config
	Logger       core.Logger
	Validate     *validator.Validate
	Translator   ut.Translator
	StaffSvc     *staff.Service
	FacultySvc   *faculty.Service
	TermSvc      *term.Service
	LecturerSvc  *lecturer.Service
	ProjectSvc   *project.Service
	VideoSvc     *video.Service
	FeedbackSvc  *feedback.Service
	AnalyticsSvc *analytics.Service
}

func newLogger(l *logsvc.RollbarLogger) core.Logger {
	return l
}

func newStore(conf *core.Config, logger core.Logger) *Store {
	if conf.Database.Engine == database.EngineInMem {
		return &Store{Mem: inmemdb.Open()}
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return &Store{SQL: db}
}

func newRepositories(st *Store) repositories {
	if st.SQL == nil {
		return repositories{
			Staff:     inmemdb.NewStaffRepository(st.Mem),
			Faculty:   inmemdb.NewFacultyRepository(st.Mem),
			Term:      inmemdb.NewTermRepository(st.Mem),
			Lecturer:  inmemdb.NewLecturerRepository(st.Mem),
			Project:   inmemdb.NewProjectRepository(st.Mem),
			Video:     inmemdb.NewVideoRepository(st.Mem),
			Feedback:  inmemdb.NewFeedbackRepository(st.Mem),
			Analytics: inmemdb.NewAnalyticsSource(st.Mem),
		}
	}
	return repositories{
		Staff:     sqlxrepos.NewStaffRepository(st.SQL),
		Faculty:   sqlxrepos.NewFacultyRepository(st.SQL),
		Term:      sqlxrepos.NewTermRepository(st.SQL),
		Lecturer:  sqlxrepos.NewLecturerRepository(st.SQL),
		Project:   sqlxrepos.NewProjectRepository(st.SQL),
		Video:     sqlxrepos.NewVideoRepository(st.SQL),
		Feedback:  sqlxrepos.NewFeedbackRepository(st.SQL),
		Analytics: boiledrepos.NewAnalyticsSource(st.SQL),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)
	term.InitValidators(validate, translator)
	video.InitValidators(validate, translator)
	project.InitValidators(validate, translator)
	feedback.InitValidators(validate, translator)
	return validate
}

func newLecturerService(repo lecturer.Repository, faculties *faculty.Service, validate *validator.Validate) *lecturer.Service {
	return lecturer.NewService(repo, faculties, validate)
}

func newProjectService(
	repo project.Repository,
	lecturers *lecturer.Service,
	faculties *faculty.Service,
	terms *term.Service,
	staffSvc *staff.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
) *project.Service {
	return project.NewService(repo, project.NewCatalog(lecturers, faculties, terms), staffSvc, mailSvc, validate)
}

func newFeedbackService(
	repo feedback.Repository,
	projects *project.Service,
	videos video.Repository,
	lecturers *lecturer.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *feedback.Service {
	return feedback.NewService(repo, projects, videos, lecturers, mailSvc, validate, conf)
}

func newVideoService(
	repo video.Repository,
	projects *project.Service,
	staffSvc *staff.Service,
	notifier *feedback.Service,
	logger core.Logger,
	validate *validator.Validate,
) *video.Service {
	return video.NewService(repo, projects, staffSvc, notifier, logger, validate)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		Validate:     p.Validate,
		Translator:   p.Translator,
		StaffSvc:     p.StaffSvc,
		FacultySvc:   p.FacultySvc,
		TermSvc:      p.TermSvc,
		LecturerSvc:  p.LecturerSvc,
		ProjectSvc:   p.ProjectSvc,
		VideoSvc:     p.VideoSvc,
		FeedbackSvc:  p.FeedbackSvc,
		AnalyticsSvc: p.AnalyticsSvc,
	})
}

// New returns a new dependency injection dig.Container.
// newConfig defaults to core.NewConfig.
func New(newConfig ...func() *core.Config) *dig.Container {
	c := dig.New()

	if len(newConfig) > 0 {
		must(c.Provide(newConfig[0]))
	} else {
		must(c.Provide(core.NewConfig))
	}
	must(c.Provide(logsvc.NewRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newStore))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(staff.NewService))
	must(c.Provide(faculty.NewService))
	must(c.Provide(term.NewService))
	must(c.Provide(newLecturerService))
	must(c.Provide(newProjectService))
	must(c.Provide(newFeedbackService))
	must(c.Provide(newVideoService))
	must(c.Provide(analytics.NewService))
	must(c.Provide(newServer))

	if os.Getenv("DIG_VISUALIZE") != "" {
		_ = dig.Visualize(c, os.Stdout)
	}

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
