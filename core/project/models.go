package project

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

// Assignment roles
const (
	RoleProducer = "producer"
	RoleEditor   = "editor"
	RoleReviewer = "reviewer"
)

var AssignmentRoles = []string{RoleProducer, RoleEditor, RoleReviewer}

// Project is a set of course videos commissioned by a lecturer.
type Project struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CourseCode  string     `json:"course_code"`
	LecturerID  string     `json:"lecturer_id"`
	ProgramID   string     `json:"program_id"`
	TermID      string     `json:"term_id"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// applyStatus sets st and keeps CompletedAt in line with it. It reports whether anything changed.
func (p *Project) applyStatus(st Status, now time.Time) bool {
	if p.Status == st {
		return false
	}
	p.Status = st
	if st == StatusComplete {
		p.CompletedAt = &now
	} else {
		p.CompletedAt = nil
	}
	p.UpdatedAt = now
	return true
}

type Assignment struct {
	ProjectID  string    `json:"project_id"`
	StaffID    string    `json:"staff_id"`
	Role       string    `json:"role"`
	AssignedAt time.Time `json:"assigned_at"`
}

// ProjectData is the payload used to create or update a Project. Status is derived, never provided.
type ProjectData struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=4000"`
	CourseCode  string `json:"course_code" validate:"omitempty,max=32"`
	LecturerID  string `json:"lecturer_id" validate:"required"`
	ProgramID   string `json:"program_id" validate:"required"`
	TermID      string `json:"term_id" validate:"required"`
	DueDate     string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (pd *ProjectData) Validate(validate *validator.Validate) error {
	pd.Title = core.CleanString(pd.Title)
	pd.Description = strings.TrimSpace(pd.Description)
	pd.CourseCode = core.CleanCode(pd.CourseCode)
	pd.LecturerID = core.CleanString(pd.LecturerID)
	pd.ProgramID = core.CleanString(pd.ProgramID)
	pd.TermID = core.CleanString(pd.TermID)
	pd.DueDate = core.CleanString(pd.DueDate)
	return validate.Struct(pd)
}

func (pd ProjectData) dueDate() *time.Time {
	if pd.DueDate == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", pd.DueDate)
	if err != nil {
		return nil
	}
	return &d
}

type AssignmentData struct {
	StaffID string `json:"staff_id" validate:"required"`
	Role    string `json:"role" validate:"required,assignmentrole"`
}

type QueryFilter struct {
	Search     string
	Status     Status
	TermID     string
	ProgramID  string
	FacultyID  string
	LecturerID string
	StaffID    string    // projects the staff member is assigned to
	DueBefore  time.Time // projects due strictly before this date
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match checks the project's own columns. FacultyID and StaffID need joins and are left to the stores.
func (qf *QueryFilter) Match(p Project) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.CourseCode), q) {
			return false
		}
	}
	if qf.Status != "" && p.Status != qf.Status {
		return false
	}
	if qf.TermID != "" && p.TermID != qf.TermID {
		return false
	}
	if qf.ProgramID != "" && p.ProgramID != qf.ProgramID {
		return false
	}
	if qf.LecturerID != "" && p.LecturerID != qf.LecturerID {
		return false
	}
	if !qf.DueBefore.IsZero() && (p.DueDate == nil || !p.DueDate.Before(qf.DueBefore)) {
		return false
	}
	return true
}

// OrderingFields maps the fields project lists can be ordered by to their columns.
var OrderingFields = map[string]string{
	"title":        "title",
	"status":       "status",
	"due_date":     "due_date",
	"created_at":   "created_at",
	"completed_at": "completed_at",
}
