package project

import (
	"context"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/core/video"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("project")
	ErrAssignmentNotFound = core.NewNotFoundError("assignment")
	ErrStaffNotAssignable = errors.New("only active, approved staff can be assigned")
)

type (
	Repository interface {
		CreateProject(ctx context.Context, p Project) (Project, error)
		QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error)
		GetProject(ctx context.Context, id string) (Project, error)
		UpdateProject(ctx context.Context, p Project) (Project, error)
		DeleteProjects(ctx context.Context, ids ...string) (int, error)
		ListVideoStatuses(ctx context.Context, projectID string) ([]video.Status, error)

		// SaveAssignment creates the assignment or updates its role.
		SaveAssignment(ctx context.Context, a Assignment) (Assignment, error)
		QueryAssignments(ctx context.Context, projectID string) ([]Assignment, error)
		DeleteAssignment(ctx context.Context, projectID, staffID string) error
	}

	// Catalog resolves the records a project points to.
	Catalog interface {
		GetLecturer(ctx context.Context, id string) (lecturer.Lecturer, error)
		GetProgram(ctx context.Context, id string) (faculty.Program, error)
		GetTerm(ctx context.Context, id string) (term.Term, error)
	}

	StaffGetter interface {
		Get(ctx context.Context, id string) (staff.Staff, error)
	}

	Service struct {
		repo     Repository
		catalog  Catalog
		staff    StaffGetter
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

func NewService(repo Repository, catalog Catalog, staffSvc StaffGetter, mailSvc core.EmailService, validate *validator.Validate) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		staff:    staffSvc,
		mailSvc:  mailSvc,
		validate: validate,
	}
}

func fieldErr(field string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
}

func (svc *Service) checkReferences(ctx context.Context, pd ProjectData) error {
	if _, err := svc.catalog.GetLecturer(ctx, pd.LecturerID); err != nil {
		if core.IsNotFound(err) {
			return fieldErr("lecturer_id", err)
		}
		return errors.Wrap(err, "finding lecturer")
	}
	if _, err := svc.catalog.GetProgram(ctx, pd.ProgramID); err != nil {
		if core.IsNotFound(err) {
			return fieldErr("program_id", err)
		}
		return errors.Wrap(err, "finding program")
	}
	if _, err := svc.catalog.GetTerm(ctx, pd.TermID); err != nil {
		if core.IsNotFound(err) {
			return fieldErr("term_id", err)
		}
		return errors.Wrap(err, "finding term")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, pd ProjectData, actor staff.Staff) (Project, error) {
	if err := pd.Validate(svc.validate); err != nil {
		return Project{}, err
	}
	if err := svc.checkReferences(ctx, pd); err != nil {
		return Project{}, err
	}
	now := core.Now()
	return svc.repo.CreateProject(ctx, Project{
		ID:          uuid.New().String(),
		Title:       pd.Title,
		Description: pd.Description,
		CourseCode:  pd.CourseCode,
		LecturerID:  pd.LecturerID,
		ProgramID:   pd.ProgramID,
		TermID:      pd.TermID,
		Status:      StatusNotStarted,
		DueDate:     pd.dueDate(),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryProjects(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

// Exists returns ErrNotFound when there is no project with the given id.
func (svc *Service) Exists(ctx context.Context, id string) error {
	_, err := svc.repo.GetProject(ctx, id)
	return err
}

func (svc *Service) Update(ctx context.Context, orig Project, pd ProjectData) (Project, error) {
	if err := pd.Validate(svc.validate); err != nil {
		return Project{}, err
	}
	if err := svc.checkReferences(ctx, pd); err != nil {
		return Project{}, err
	}
	p := orig
	p.Title = pd.Title
	p.Description = pd.Description
	p.CourseCode = pd.CourseCode
	p.LecturerID = pd.LecturerID
	p.ProgramID = pd.ProgramID
	p.TermID = pd.TermID
	p.DueDate = pd.dueDate()
	p.UpdatedAt = core.Now()
	return svc.repo.UpdateProject(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteProjects(ctx, ids...)
	return err
}

// SyncStatus re-derives the project status from its videos and saves it when it changed.
func (svc *Service) SyncStatus(ctx context.Context, id string) error {
	p, err := svc.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	statuses, err := svc.repo.ListVideoStatuses(ctx, id)
	if err != nil {
		return errors.Wrap(err, "listing video statuses")
	}
	if !p.applyStatus(DeriveStatus(statuses), core.Now()) {
		return nil
	}
	_, err = svc.repo.UpdateProject(ctx, p)
	return err
}

// Assign adds a staff member to the project, or changes their role, and lets them know by email.
func (svc *Service) Assign(ctx context.Context, p Project, ad AssignmentData) (Assignment, error) {
	ad.StaffID = core.CleanString(ad.StaffID)
	if err := svc.validate.Struct(ad); err != nil {
		return Assignment{}, err
	}
	s, err := svc.staff.Get(ctx, ad.StaffID)
	if err != nil {
		if core.IsNotFound(err) {
			return Assignment{}, fieldErr("staff_id", err)
		}
		return Assignment{}, errors.Wrap(err, "finding staff")
	}
	if !s.IsActive || !s.IsApproved {
		return Assignment{}, fieldErr("staff_id", ErrStaffNotAssignable)
	}

	a, err := svc.repo.SaveAssignment(ctx, Assignment{
		ProjectID:  p.ID,
		StaffID:    s.ID,
		Role:       ad.Role,
		AssignedAt: core.Now(),
	})
	if err != nil {
		return Assignment{}, err
	}
	svc.sendAssignedMail(p, s, a.Role)
	return a, nil
}

func (svc *Service) sendAssignedMail(p Project, s staff.Staff, role string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: s.Name, Address: s.Email}},
		Subject:      "New project assignment",
		TemplateName: "project_assigned",
		TemplateData: map[string]interface{}{
			"StaffName":    s.Name,
			"ProjectTitle": p.Title,
			"ProjectID":    p.ID,
			"Role":         role,
		},
	})
}

func (svc *Service) Unassign(ctx context.Context, projectID, staffID string) error {
	return svc.repo.DeleteAssignment(ctx, projectID, staffID)
}

func (svc *Service) Assignments(ctx context.Context, projectID string) ([]Assignment, error) {
	if _, err := svc.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return svc.repo.QueryAssignments(ctx, projectID)
}
