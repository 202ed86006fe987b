package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/term"
)

const termColumns = "id, name, starts_on, ends_on, created_at, updated_at"

type termRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	StartsOn  time.Time `db:"starts_on"`
	EndsOn    time.Time `db:"ends_on"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r termRow) toTerm() term.Term {
	return term.Term{
		ID:        r.ID,
		Name:      r.Name,
		StartsOn:  core.Date(r.StartsOn),
		EndsOn:    core.Date(r.EndsOn),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type termRepository struct {
	db *sqlx.DB
}

var _ term.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *sqlx.DB) term.Repository {
	return &termRepository{db: db}
}

func (repo termRepository) trap(err error, msg string) error {
	return trapErr(err, term.ErrNotFound, "term", msg)
}

func (repo termRepository) CheckTermName(ctx context.Context, name string, excludedIDs ...string) error {
	w := &where{}
	w.add("LOWER(name) = LOWER(?)", name)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		w.add("NOT (id = ANY(?::uuid[]))", pq.StringArray(ids))
	}
	found, err := exists(ctx, repo.db, "SELECT 1 FROM term"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking term name")
	}
	if found {
		return term.ErrNameExists
	}
	return nil
}

func (repo termRepository) CreateTerm(ctx context.Context, t term.Term) (term.Term, error) {
	q := `INSERT INTO term (` + termColumns + `) VALUES (:id, :name, :starts_on, :ends_on, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, termRow(t)); err != nil {
		return term.Term{}, repo.trap(err, "inserting term")
	}
	return t, nil
}

func (repo termRepository) QueryTerms(ctx context.Context, filter *term.QueryFilter, ordering []core.DBOrdering) ([]term.Term, error) {
	w := &where{}
	if filter != nil {
		if filter.Search != "" {
			w.add("name ILIKE ?", "%"+filter.Search+"%")
		}
		if !filter.Active.IsZero() {
			d := core.Date(filter.Active)
			w.add("starts_on <= ? AND ends_on >= ?", d, d)
		}
	}
	q := "SELECT " + termColumns + " FROM term" + w.String() + " ORDER BY " + core.OrderBy(ordering, "starts_on DESC, id ASC")

	var rows []termRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	list := make([]term.Term, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toTerm())
	}
	return list, nil
}

func (repo termRepository) GetTerm(ctx context.Context, id string) (term.Term, error) {
	if !validID(id) {
		return term.Term{}, term.ErrNotFound
	}
	var r termRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+termColumns+" FROM term WHERE id = $1", id); err != nil {
		return term.Term{}, repo.trap(err, "finding term")
	}
	return r.toTerm(), nil
}

func (repo termRepository) UpdateTerm(ctx context.Context, t term.Term) (term.Term, error) {
	q := `UPDATE term SET name = :name, starts_on = :starts_on, ends_on = :ends_on, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, termRow(t)); err != nil {
		return term.Term{}, repo.trap(err, "updating term")
	}
	return t, nil
}

func (repo termRepository) DeleteTerm(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "term", "term", id, term.ErrNotFound)
}
