package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

const projectColumns = "id, title, description, course_code, lecturer_id, program_id, term_id, status, due_date, " +
	"completed_at, created_by, created_at, updated_at"

type projectRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	CourseCode  string      `db:"course_code"`
	LecturerID  string      `db:"lecturer_id"`
	ProgramID   string      `db:"program_id"`
	TermID      string      `db:"term_id"`
	Status      string      `db:"status"`
	DueDate     null.Time   `db:"due_date"`
	CompletedAt null.Time   `db:"completed_at"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func nullTime(t *time.Time) null.Time {
	return null.TimeFromPtr(t)
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func toProjectRow(p project.Project) projectRow {
	return projectRow{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CourseCode:  p.CourseCode,
		LecturerID:  p.LecturerID,
		ProgramID:   p.ProgramID,
		TermID:      p.TermID,
		Status:      string(p.Status),
		DueDate:     nullTime(p.DueDate),
		CompletedAt: nullTime(p.CompletedAt),
		CreatedBy:   null.NewString(p.CreatedBy, p.CreatedBy != ""),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (r projectRow) toProject() project.Project {
	return project.Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CourseCode:  r.CourseCode,
		LecturerID:  r.LecturerID,
		ProgramID:   r.ProgramID,
		TermID:      r.TermID,
		Status:      project.Status(r.Status),
		DueDate:     timePtr(r.DueDate),
		CompletedAt: timePtr(r.CompletedAt),
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type assignmentRow struct {
	ProjectID  string    `db:"project_id"`
	StaffID    string    `db:"staff_id"`
	Role       string    `db:"role"`
	AssignedAt time.Time `db:"assigned_at"`
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *sqlx.DB) project.Repository {
	return &projectRepository{db: db}
}

func (repo projectRepository) trap(err error, msg string) error {
	return trapErr(err, project.ErrNotFound, "project", msg)
}

func (repo projectRepository) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	q := `INSERT INTO project (` + projectColumns + `)
		VALUES (:id, :title, :description, :course_code, :lecturer_id, :program_id, :term_id, :status, :due_date,
		        :completed_at, :created_by, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toProjectRow(p)); err != nil {
		return project.Project{}, repo.trap(err, "inserting project")
	}
	return p, nil
}

// filterIDs adds id conditions; it returns false when some id can never match.
func filterIDs(w *where, conds ...[2]string) bool {
	for _, c := range conds {
		col, id := c[0], c[1]
		if id == "" {
			continue
		}
		if !validID(id) {
			return false
		}
		w.add(col+" = ?", id)
	}
	return true
}

func (repo projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	w := &where{}
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(title ILIKE ? OR course_code ILIKE ?)", val, val)
		}
		if filter.Status != "" {
			w.add("status = ?", string(filter.Status))
		}
		ok := filterIDs(w,
			[2]string{"term_id", filter.TermID},
			[2]string{"program_id", filter.ProgramID},
			[2]string{"lecturer_id", filter.LecturerID},
		)
		if !ok || (filter.FacultyID != "" && !validID(filter.FacultyID)) {
			return []project.Project{}, nil
		}
		if filter.FacultyID != "" {
			w.add("program_id IN (SELECT id FROM program WHERE faculty_id = ?)", filter.FacultyID)
		}
		if filter.StaffID != "" {
			w.add("id IN (SELECT project_id FROM assignment WHERE staff_id = ?)", filter.StaffID)
		}
		if !filter.DueBefore.IsZero() {
			w.add("due_date < ?", core.Date(filter.DueBefore))
		}
	}
	q := "SELECT " + projectColumns + " FROM project" + w.String() + " ORDER BY " + core.OrderBy(ordering, "created_at DESC, id ASC")

	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	list := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toProject())
	}
	return list, nil
}

func (repo projectRepository) GetProject(ctx context.Context, id string) (project.Project, error) {
	if !validID(id) {
		return project.Project{}, project.ErrNotFound
	}
	var r projectRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+projectColumns+" FROM project WHERE id = $1", id); err != nil {
		return project.Project{}, repo.trap(err, "finding project")
	}
	return r.toProject(), nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	q := `UPDATE project SET title = :title, description = :description, course_code = :course_code,
		lecturer_id = :lecturer_id, program_id = :program_id, term_id = :term_id, status = :status,
		due_date = :due_date, completed_at = :completed_at, updated_at = :updated_at
		WHERE id = :id`
	if _, err := repo.db.NamedExecContext(ctx, q, toProjectRow(p)); err != nil {
		return project.Project{}, repo.trap(err, "updating project")
	}
	return p, nil
}

func (repo projectRepository) DeleteProjects(ctx context.Context, ids ...string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM project WHERE id = ANY($1::uuid[])", pq.StringArray(ids))
	if err != nil {
		return 0, repo.trap(err, "deleting projects")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted projects")
	}
	return int(n), nil
}

func (repo projectRepository) ListVideoStatuses(ctx context.Context, projectID string) ([]video.Status, error) {
	if !validID(projectID) {
		return nil, project.ErrNotFound
	}
	var raw []string
	if err := repo.db.SelectContext(ctx, &raw, "SELECT status FROM video WHERE project_id = $1", projectID); err != nil {
		return nil, errors.Wrap(err, "listing video statuses")
	}
	statuses := make([]video.Status, 0, len(raw))
	for _, s := range raw {
		statuses = append(statuses, video.Status(s))
	}
	return statuses, nil
}

func (repo projectRepository) SaveAssignment(ctx context.Context, a project.Assignment) (project.Assignment, error) {
	q := `INSERT INTO assignment (project_id, staff_id, role, assigned_at)
		VALUES (:project_id, :staff_id, :role, :assigned_at)
		ON CONFLICT (project_id, staff_id) DO UPDATE SET role = EXCLUDED.role`
	if _, err := repo.db.NamedExecContext(ctx, q, assignmentRow(a)); err != nil {
		return project.Assignment{}, trapErr(err, project.ErrAssignmentNotFound, "assignment", "saving assignment")
	}
	// the original assignment date survives a role change
	var r assignmentRow
	err := repo.db.GetContext(ctx, &r,
		"SELECT project_id, staff_id, role, assigned_at FROM assignment WHERE project_id = $1 AND staff_id = $2",
		a.ProjectID, a.StaffID)
	if err != nil {
		return project.Assignment{}, trapErr(err, project.ErrAssignmentNotFound, "assignment", "finding assignment")
	}
	r.AssignedAt = r.AssignedAt.UTC()
	return project.Assignment(r), nil
}

func (repo projectRepository) QueryAssignments(ctx context.Context, projectID string) ([]project.Assignment, error) {
	if !validID(projectID) {
		return []project.Assignment{}, nil
	}
	var rows []assignmentRow
	q := "SELECT project_id, staff_id, role, assigned_at FROM assignment WHERE project_id = $1 ORDER BY assigned_at ASC, staff_id ASC"
	if err := repo.db.SelectContext(ctx, &rows, q, projectID); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	list := make([]project.Assignment, 0, len(rows))
	for _, r := range rows {
		r.AssignedAt = r.AssignedAt.UTC()
		list = append(list, project.Assignment(r))
	}
	return list, nil
}

func (repo projectRepository) DeleteAssignment(ctx context.Context, projectID, staffID string) error {
	if !validID(projectID) {
		return project.ErrAssignmentNotFound
	}
	res, err := repo.db.ExecContext(ctx, "DELETE FROM assignment WHERE project_id = $1 AND staff_id = $2", projectID, staffID)
	if err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.ErrAssignmentNotFound
	}
	return nil
}
