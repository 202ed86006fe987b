// Package boiledrepos loads reporting data with sqlboiler raw queries.
package boiledrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

// scopeJoins brings in the catalog rows a project is filed under; it expects the project aliased as "p".
const scopeJoins = `
	JOIN program pr ON pr.id = p.program_id
	JOIN faculty f ON f.id = pr.faculty_id
	JOIN lecturer l ON l.id = p.lecturer_id
	JOIN term t ON t.id = p.term_id`

const scopeColumns = `f.id AS faculty_id, f.name AS faculty_name, pr.id AS program_id, pr.name AS program_name,
	l.id AS lecturer_id, l.name AS lecturer_name, t.id AS term_id, t.name AS term_name`

type scopeRow struct {
	FacultyID    string `boil:"faculty_id"`
	FacultyName  string `boil:"faculty_name"`
	ProgramID    string `boil:"program_id"`
	ProgramName  string `boil:"program_name"`
	LecturerID   string `boil:"lecturer_id"`
	LecturerName string `boil:"lecturer_name"`
	TermID       string `boil:"term_id"`
	TermName     string `boil:"term_name"`
}

func (r scopeRow) scope() analytics.Scope {
	return analytics.Scope(r)
}

type projectFactRow struct {
	ProjectID   string    `boil:"project_id"`
	Status      string    `boil:"status"`
	CreatedAt   time.Time `boil:"created_at"`
	CompletedAt null.Time `boil:"completed_at"`
	Scope       scopeRow  `boil:",bind"`
}

type videoFactRow struct {
	VideoID         string      `boil:"video_id"`
	ProjectID       string      `boil:"project_id"`
	Status          string      `boil:"status"`
	EditorID        null.String `boil:"editor_id"`
	EditorName      null.String `boil:"editor_name"`
	DurationSeconds int         `boil:"duration_seconds"`
	DueDate         null.Time   `boil:"due_date"`
	CreatedAt       time.Time   `boil:"created_at"`
	CompletedAt     null.Time   `boil:"completed_at"`
	Scope           scopeRow    `boil:",bind"`
}

type feedbackFactRow struct {
	FeedbackID string    `boil:"feedback_id"`
	ProjectID  string    `boil:"project_id"`
	Rating     int       `boil:"rating"`
	CreatedAt  time.Time `boil:"created_at"`
	Scope      scopeRow  `boil:",bind"`
}

// params numbers postgres placeholders as conditions are added.
type params struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each "?" with the next placeholder.
func (p *params) add(cond string, args ...interface{}) {
	for _, arg := range args {
		p.args = append(p.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(p.args)), 1)
	}
	p.conds = append(p.conds, cond)
}

func (p *params) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.conds, " AND ")
}

// scopeParams turns the catalog part of f into conditions; dateCol is the creation date compared to From/To.
func scopeParams(f analytics.Filter, dateCol string) *params {
	p := &params{}
	if f.TermID != "" {
		p.add("t.id::text = ?", f.TermID)
	}
	if f.FacultyID != "" {
		p.add("f.id::text = ?", f.FacultyID)
	}
	if f.ProgramID != "" {
		p.add("pr.id::text = ?", f.ProgramID)
	}
	if f.LecturerID != "" {
		p.add("l.id::text = ?", f.LecturerID)
	}
	if !f.From.IsZero() {
		p.add(dateCol+" >= ?", f.From.UTC())
	}
	if !f.To.IsZero() {
		p.add(dateCol+" <= ?", f.To.UTC())
	}
	return p
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

type analyticsSource struct {
	exec boil.ContextExecutor
}

var _ analytics.Source = (*analyticsSource)(nil) // interface compliance check

func NewAnalyticsSource(exec boil.ContextExecutor) analytics.Source {
	return &analyticsSource{exec: exec}
}

func (src analyticsSource) ProjectFacts(ctx context.Context, f analytics.Filter) ([]analytics.ProjectFact, error) {
	p := scopeParams(f, "p.created_at")
	if f.EditorID != "" {
		p.add("EXISTS (SELECT 1 FROM video v WHERE v.project_id = p.id AND v.editor_id = ?)", f.EditorID)
	}
	q := `SELECT p.id AS project_id, p.status, p.created_at, p.completed_at, ` + scopeColumns +
		` FROM project p` + scopeJoins + p.where() + ` ORDER BY p.created_at, p.id`

	var rows []*projectFactRow
	if err := queries.Raw(q, p.args...).Bind(ctx, src.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying project facts")
	}
	list := make([]analytics.ProjectFact, 0, len(rows))
	for _, r := range rows {
		list = append(list, analytics.ProjectFact{
			ProjectID:   r.ProjectID,
			Status:      project.Status(r.Status),
			CreatedAt:   r.CreatedAt.UTC(),
			CompletedAt: timePtr(r.CompletedAt),
			Scope:       r.Scope.scope(),
		})
	}
	return list, nil
}

func (src analyticsSource) VideoFacts(ctx context.Context, f analytics.Filter) ([]analytics.VideoFact, error) {
	p := scopeParams(f, "v.created_at")
	if f.EditorID != "" {
		p.add("v.editor_id = ?", f.EditorID)
	}
	q := `SELECT v.id AS video_id, v.project_id, v.status, v.editor_id, s.name AS editor_name, v.duration_seconds,
		v.due_date, v.created_at, v.completed_at, ` + scopeColumns + `
		FROM video v
		JOIN project p ON p.id = v.project_id
		LEFT JOIN staff s ON s.id = v.editor_id` + scopeJoins + p.where() + ` ORDER BY v.created_at, v.id`

	var rows []*videoFactRow
	if err := queries.Raw(q, p.args...).Bind(ctx, src.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying video facts")
	}
	list := make([]analytics.VideoFact, 0, len(rows))
	for _, r := range rows {
		list = append(list, analytics.VideoFact{
			VideoID:         r.VideoID,
			ProjectID:       r.ProjectID,
			Status:          video.Status(r.Status),
			EditorID:        r.EditorID.String,
			EditorName:      r.EditorName.String,
			DurationSeconds: r.DurationSeconds,
			DueDate:         timePtr(r.DueDate),
			CreatedAt:       r.CreatedAt.UTC(),
			CompletedAt:     timePtr(r.CompletedAt),
			Scope:           r.Scope.scope(),
		})
	}
	return list, nil
}

func (src analyticsSource) FeedbackFacts(ctx context.Context, f analytics.Filter) ([]analytics.FeedbackFact, error) {
	f.EditorID = "" // does not apply to feedback
	p := scopeParams(f, "fb.created_at")
	q := `SELECT fb.id AS feedback_id, fb.project_id, fb.rating, fb.created_at, ` + scopeColumns + `
		FROM feedback fb
		JOIN project p ON p.id = fb.project_id` + scopeJoins + p.where() + ` ORDER BY fb.created_at, fb.id`

	var rows []*feedbackFactRow
	if err := queries.Raw(q, p.args...).Bind(ctx, src.exec, &rows); err != nil {
		return nil, errors.Wrap(err, "querying feedback facts")
	}
	list := make([]analytics.FeedbackFact, 0, len(rows))
	for _, r := range rows {
		list = append(list, analytics.FeedbackFact{
			FeedbackID: r.FeedbackID,
			ProjectID:  r.ProjectID,
			Rating:     r.Rating,
			CreatedAt:  r.CreatedAt.UTC(),
			Scope:      r.Scope.scope(),
		})
	}
	return list, nil
}
