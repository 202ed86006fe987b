package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
)

type facultyRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r facultyRow) toFaculty() faculty.Faculty {
	return faculty.Faculty{ID: r.ID, Name: r.Name, Code: r.Code, CreatedAt: r.CreatedAt.UTC(), UpdatedAt: r.UpdatedAt.UTC()}
}

type programRow struct {
	ID        string    `db:"id"`
	FacultyID string    `db:"faculty_id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r programRow) toProgram() faculty.Program {
	return faculty.Program{
		ID:        r.ID,
		FacultyID: r.FacultyID,
		Name:      r.Name,
		Code:      r.Code,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type facultyRepository struct {
	db *sqlx.DB
}

var _ faculty.Repository = (*facultyRepository)(nil) // interface compliance check

func NewFacultyRepository(db *sqlx.DB) faculty.Repository {
	return &facultyRepository{db: db}
}

func (repo facultyRepository) CheckFacultyCode(ctx context.Context, code string, excludedIDs ...string) error {
	w := &where{}
	w.add("code = ?", code)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		w.add("NOT (id = ANY(?::uuid[]))", pq.StringArray(ids))
	}
	found, err := exists(ctx, repo.db, "SELECT 1 FROM faculty"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking faculty code")
	}
	if found {
		return faculty.ErrCodeExists
	}
	return nil
}

func (repo facultyRepository) CreateFaculty(ctx context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	q := `INSERT INTO faculty (id, name, code, created_at, updated_at) VALUES (:id, :name, :code, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, facultyRow(f)); err != nil {
		return faculty.Faculty{}, trapErr(err, faculty.ErrNotFound, "faculty", "inserting faculty")
	}
	return f, nil
}

func (repo facultyRepository) QueryFaculties(ctx context.Context, filter *faculty.QueryFilter, ordering []core.DBOrdering) ([]faculty.Faculty, error) {
	w := &where{}
	if filter != nil && filter.Search != "" {
		val := "%" + filter.Search + "%"
		w.add("(name ILIKE ? OR code ILIKE ?)", val, val)
	}
	q := "SELECT id, name, code, created_at, updated_at FROM faculty" + w.String() + " ORDER BY " + core.OrderBy(ordering, "name ASC, id ASC")

	var rows []facultyRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying faculties")
	}
	list := make([]faculty.Faculty, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toFaculty())
	}
	return list, nil
}

func (repo facultyRepository) GetFaculty(ctx context.Context, id string) (faculty.Faculty, error) {
	if !validID(id) {
		return faculty.Faculty{}, faculty.ErrNotFound
	}
	var r facultyRow
	if err := repo.db.GetContext(ctx, &r, "SELECT id, name, code, created_at, updated_at FROM faculty WHERE id = $1", id); err != nil {
		return faculty.Faculty{}, trapErr(err, faculty.ErrNotFound, "faculty", "finding faculty")
	}
	return r.toFaculty(), nil
}

func (repo facultyRepository) UpdateFaculty(ctx context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	q := `UPDATE faculty SET name = :name, code = :code, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, facultyRow(f)); err != nil {
		return faculty.Faculty{}, trapErr(err, faculty.ErrNotFound, "faculty", "updating faculty")
	}
	return f, nil
}

func (repo facultyRepository) DeleteFaculty(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "faculty", "faculty", id, faculty.ErrNotFound)
}

func (repo facultyRepository) CheckProgramCode(ctx context.Context, facultyID, code string, excludedIDs ...string) error {
	w := &where{}
	w.add("faculty_id = ?", facultyID)
	w.add("code = ?", code)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		w.add("NOT (id = ANY(?::uuid[]))", pq.StringArray(ids))
	}
	found, err := exists(ctx, repo.db, "SELECT 1 FROM program"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking program code")
	}
	if found {
		return faculty.ErrCodeExists
	}
	return nil
}

func (repo facultyRepository) CreateProgram(ctx context.Context, p faculty.Program) (faculty.Program, error) {
	q := `INSERT INTO program (id, faculty_id, name, code, created_at, updated_at)
		VALUES (:id, :faculty_id, :name, :code, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, programRow(p)); err != nil {
		return faculty.Program{}, trapErr(err, faculty.ErrProgramNotFound, "program", "inserting program")
	}
	return p, nil
}

func (repo facultyRepository) QueryPrograms(ctx context.Context, filter *faculty.QueryFilter, ordering []core.DBOrdering) ([]faculty.Program, error) {
	w := &where{}
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR code ILIKE ?)", val, val)
		}
		if filter.FacultyID != "" {
			if !validID(filter.FacultyID) {
				return []faculty.Program{}, nil
			}
			w.add("faculty_id = ?", filter.FacultyID)
		}
	}
	q := "SELECT id, faculty_id, name, code, created_at, updated_at FROM program" + w.String() +
		" ORDER BY " + core.OrderBy(ordering, "name ASC, id ASC")

	var rows []programRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying programs")
	}
	list := make([]faculty.Program, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toProgram())
	}
	return list, nil
}

func (repo facultyRepository) GetProgram(ctx context.Context, id string) (faculty.Program, error) {
	if !validID(id) {
		return faculty.Program{}, faculty.ErrProgramNotFound
	}
	var r programRow
	q := "SELECT id, faculty_id, name, code, created_at, updated_at FROM program WHERE id = $1"
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return faculty.Program{}, trapErr(err, faculty.ErrProgramNotFound, "program", "finding program")
	}
	return r.toProgram(), nil
}

func (repo facultyRepository) UpdateProgram(ctx context.Context, p faculty.Program) (faculty.Program, error) {
	q := `UPDATE program SET name = :name, code = :code, updated_at = :updated_at WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, programRow(p)); err != nil {
		return faculty.Program{}, trapErr(err, faculty.ErrProgramNotFound, "program", "updating program")
	}
	return p, nil
}

func (repo facultyRepository) DeleteProgram(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "program", "program", id, faculty.ErrProgramNotFound)
}
