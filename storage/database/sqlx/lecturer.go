package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/lecturer"
)

const lecturerColumns = "id, name, email, faculty_id, created_at, updated_at"

type lecturerRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     null.String `db:"email"`
	FacultyID null.String `db:"faculty_id"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func toLecturerRow(l lecturer.Lecturer) lecturerRow {
	return lecturerRow{
		ID:        l.ID,
		Name:      l.Name,
		Email:     null.NewString(l.Email, l.Email != ""),
		FacultyID: null.NewString(l.FacultyID, l.FacultyID != ""),
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}
}

func (r lecturerRow) toLecturer() lecturer.Lecturer {
	return lecturer.Lecturer{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email.String,
		FacultyID: r.FacultyID.String,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type lecturerRepository struct {
	db *sqlx.DB
}

var _ lecturer.Repository = (*lecturerRepository)(nil) // interface compliance check

func NewLecturerRepository(db *sqlx.DB) lecturer.Repository {
	return &lecturerRepository{db: db}
}

func (repo lecturerRepository) trap(err error, msg string) error {
	return trapErr(err, lecturer.ErrNotFound, "lecturer", msg)
}

func (repo lecturerRepository) CheckLecturerEmail(ctx context.Context, email string, excludedIDs ...string) error {
	w := &where{}
	w.add("LOWER(email) = LOWER(?)", email)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		w.add("NOT (id = ANY(?::uuid[]))", pq.StringArray(ids))
	}
	found, err := exists(ctx, repo.db, "SELECT 1 FROM lecturer"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking lecturer email")
	}
	if found {
		return lecturer.ErrEmailExists
	}
	return nil
}

func (repo lecturerRepository) CreateLecturer(ctx context.Context, l lecturer.Lecturer) (lecturer.Lecturer, error) {
	q := `INSERT INTO lecturer (` + lecturerColumns + `) VALUES (:id, :name, :email, :faculty_id, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toLecturerRow(l)); err != nil {
		return lecturer.Lecturer{}, repo.trap(err, "inserting lecturer")
	}
	return l, nil
}

func (repo lecturerRepository) QueryLecturers(ctx context.Context, filter *lecturer.QueryFilter, ordering []core.DBOrdering) ([]lecturer.Lecturer, error) {
	w := &where{}
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR email ILIKE ?)", val, val)
		}
		if filter.FacultyID != "" {
			if !validID(filter.FacultyID) {
				return []lecturer.Lecturer{}, nil
			}
			w.add("faculty_id = ?", filter.FacultyID)
		}
	}
	q := "SELECT " + lecturerColumns + " FROM lecturer" + w.String() + " ORDER BY " + core.OrderBy(ordering, "name ASC, id ASC")

	var rows []lecturerRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying lecturers")
	}
	list := make([]lecturer.Lecturer, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toLecturer())
	}
	return list, nil
}

func (repo lecturerRepository) GetLecturer(ctx context.Context, id string) (lecturer.Lecturer, error) {
	if !validID(id) {
		return lecturer.Lecturer{}, lecturer.ErrNotFound
	}
	var r lecturerRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+lecturerColumns+" FROM lecturer WHERE id = $1", id); err != nil {
		return lecturer.Lecturer{}, repo.trap(err, "finding lecturer")
	}
	return r.toLecturer(), nil
}

func (repo lecturerRepository) UpdateLecturer(ctx context.Context, l lecturer.Lecturer) (lecturer.Lecturer, error) {
	q := `UPDATE lecturer SET name = :name, email = :email, faculty_id = :faculty_id, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, toLecturerRow(l)); err != nil {
		return lecturer.Lecturer{}, repo.trap(err, "updating lecturer")
	}
	return l, nil
}

func (repo lecturerRepository) DeleteLecturer(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "lecturer", "lecturer", id, lecturer.ErrNotFound)
}
