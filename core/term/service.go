package term

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
)

var (
	// errors
	ErrNotFound   = core.NewNotFoundError("term")
	ErrNameExists = errors.New("a term with this name already exists")
)

type (
	Repository interface {
		CheckTermName(ctx context.Context, name string, excludedIDs ...string) error
		CreateTerm(ctx context.Context, t Term) (Term, error)
		QueryTerms(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Term, error)
		GetTerm(ctx context.Context, id string) (Term, error)
		UpdateTerm(ctx context.Context, t Term) (Term, error)
		DeleteTerm(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkName(ctx context.Context, name string, excludedIDs ...string) error {
	if err := svc.repo.CheckTermName(ctx, name, excludedIDs...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return errors.Wrap(err, "checking term name")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, td TermData) (Term, error) {
	if err := td.Validate(svc.validate); err != nil {
		return Term{}, err
	}
	if err := svc.checkName(ctx, td.Name); err != nil {
		return Term{}, err
	}
	start, end := td.dates()
	now := core.Now()
	return svc.repo.CreateTerm(ctx, Term{
		ID:        uuid.New().String(),
		Name:      td.Name,
		StartsOn:  start,
		EndsOn:    end,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Term, error) {
	return svc.repo.QueryTerms(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Term, error) {
	return svc.repo.GetTerm(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Term, td TermData) (Term, error) {
	if err := td.Validate(svc.validate); err != nil {
		return Term{}, err
	}
	if err := svc.checkName(ctx, td.Name, orig.ID); err != nil {
		return Term{}, err
	}
	t := orig
	t.Name = td.Name
	t.StartsOn, t.EndsOn = td.dates()
	t.UpdatedAt = core.Now()
	return svc.repo.UpdateTerm(ctx, t)
}

// Delete removes a term; it fails with a core.ConflictError while projects reference it.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTerm(ctx, id)
}
