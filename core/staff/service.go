package staff

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("staff")
	ErrEmailExists = errors.New("a staff member with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		QueryStaff(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error)
		GetStaff(ctx context.Context, id string) (Staff, error)
		GetStaffByEmail(ctx context.Context, email string) (Staff, error)
		UpdateStaff(ctx context.Context, s Staff) (Staff, error)
		DeleteStaff(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, excludedIDs...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Create adds a staff member. Members created this way are approved when ns.IsApproved is set.
func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Staff{}, err
	}
	if err := svc.checkUniqueness(ctx, ns.Email); err != nil {
		return Staff{}, err
	}
	id := ns.ID
	if id == "" {
		id = uuid.New().String()
	}
	roles := ns.Roles
	if len(roles) == 0 {
		roles = []string{RoleViewer}
	}

	now := core.Now()
	s := Staff{
		ID:         id,
		Name:       ns.Name,
		Email:      ns.Email,
		Roles:      roles,
		IsActive:   true,
		IsApproved: ns.IsApproved,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateStaff(ctx, s)
}

// Register creates the pending profile of a token subject seen for the first time.
func (svc *Service) Register(ctx context.Context, subject string, ns NewStaff) (Staff, error) {
	if subject == "" {
		return Staff{}, core.NewValidationError(errors.New("missing token subject"))
	}
	if _, err := svc.repo.GetStaff(ctx, subject); err == nil {
		return Staff{}, core.NewValidationError(errors.New("profile already registered"))
	} else if !core.IsNotFound(err) {
		return Staff{}, errors.Wrap(err, "finding staff by ID")
	}
	ns.ID = subject
	ns.Roles = []string{RoleViewer}
	ns.IsApproved = false
	return svc.Create(ctx, ns)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryStaff(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Staff, error) {
	return svc.repo.GetStaff(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Staff, error) {
	return svc.repo.GetStaffByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, orig Staff, us UpdateStaff) (Staff, error) {
	if err := us.Validate(orig, svc.validate); err != nil {
		return Staff{}, err
	}
	s := orig
	s.Name = us.Name
	if us.Roles != nil {
		s.Roles = us.Roles
	}
	if us.IsActive != nil {
		s.IsActive = *us.IsActive
	}
	if us.IsApproved != nil {
		s.IsApproved = *us.IsApproved
	}
	s.UpdatedAt = core.Now()
	return svc.repo.UpdateStaff(ctx, s)
}

// Approve grants access to a pending staff member.
func (svc *Service) Approve(ctx context.Context, id string) (Staff, error) {
	s, err := svc.repo.GetStaff(ctx, id)
	if err != nil {
		return Staff{}, err
	}
	if s.IsApproved {
		return s, nil
	}
	s.IsApproved = true
	s.UpdatedAt = core.Now()
	return svc.repo.UpdateStaff(ctx, s)
}

// Touch records that s has just been seen.
func (svc *Service) Touch(ctx context.Context, s Staff) (Staff, error) {
	now := core.Now()
	s.LastSeenAt = &now
	return svc.repo.UpdateStaff(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := svc.repo.DeleteStaff(ctx, ids...)
	return err
}
