package lecturer

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("lecturer")
	ErrEmailExists = errors.New("a lecturer with this email already exists")
)

type (
	Repository interface {
		CheckLecturerEmail(ctx context.Context, email string, excludedIDs ...string) error
		CreateLecturer(ctx context.Context, l Lecturer) (Lecturer, error)
		QueryLecturers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Lecturer, error)
		GetLecturer(ctx context.Context, id string) (Lecturer, error)
		UpdateLecturer(ctx context.Context, l Lecturer) (Lecturer, error)
		DeleteLecturer(ctx context.Context, id string) error
	}

	// FacultyGetter looks up the faculty a lecturer belongs to.
	FacultyGetter interface {
		Get(ctx context.Context, id string) (faculty.Faculty, error)
	}

	Service struct {
		repo      Repository
		faculties FacultyGetter
		validate  *validator.Validate
	}
)

func NewService(repo Repository, faculties FacultyGetter, validate *validator.Validate) *Service {
	return &Service{repo: repo, faculties: faculties, validate: validate}
}

func (svc *Service) clean(ctx context.Context, ld *LecturerData, excludedIDs ...string) error {
	if err := ld.Validate(svc.validate); err != nil {
		return err
	}
	if ld.Email != "" {
		if err := svc.repo.CheckLecturerEmail(ctx, ld.Email, excludedIDs...); err != nil {
			if err == ErrEmailExists {
				return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
			}
			return errors.Wrap(err, "checking lecturer email")
		}
	}
	if ld.FacultyID != "" {
		if _, err := svc.faculties.Get(ctx, ld.FacultyID); err != nil {
			if core.IsNotFound(err) {
				return core.NewValidationError(err, core.FieldError{Field: "faculty_id", Error: err.Error()})
			}
			return errors.Wrap(err, "finding faculty")
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ld LecturerData) (Lecturer, error) {
	if err := svc.clean(ctx, &ld); err != nil {
		return Lecturer{}, err
	}
	now := core.Now()
	return svc.repo.CreateLecturer(ctx, Lecturer{
		ID:        uuid.New().String(),
		Name:      ld.Name,
		Email:     ld.Email,
		FacultyID: ld.FacultyID,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Lecturer, error) {
	return svc.repo.QueryLecturers(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Lecturer, error) {
	return svc.repo.GetLecturer(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Lecturer, ld LecturerData) (Lecturer, error) {
	if err := svc.clean(ctx, &ld, orig.ID); err != nil {
		return Lecturer{}, err
	}
	l := orig
	l.Name = ld.Name
	l.Email = ld.Email
	l.FacultyID = ld.FacultyID
	l.UpdatedAt = core.Now()
	return svc.repo.UpdateLecturer(ctx, l)
}

// Delete removes a lecturer; it fails with a core.ConflictError while projects reference them.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteLecturer(ctx, id)
}
