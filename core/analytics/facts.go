// Package analytics aggregates production facts into dashboard reports.
// Every report is a pure function of the facts loaded from a Source.
package analytics

import (
	"time"

	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

// Dimensions
const (
	ByFaculty  Dimension = "faculty"
	ByProgram  Dimension = "program"
	ByLecturer Dimension = "lecturer"
	ByTerm     Dimension = "term"
	ByEditor   Dimension = "editor"
)

const unassignedLabel = "Unassigned"

type Dimension string

var AllDimensions = []Dimension{ByFaculty, ByProgram, ByLecturer, ByTerm, ByEditor}

func (d Dimension) IsValid() bool {
	for _, dim := range AllDimensions {
		if d == dim {
			return true
		}
	}
	return false
}

// Scope holds the catalog ids and labels a fact is filed under.
type Scope struct {
	FacultyID    string
	FacultyName  string
	ProgramID    string
	ProgramName  string
	LecturerID   string
	LecturerName string
	TermID       string
	TermName     string
}

type VideoFact struct {
	VideoID         string
	ProjectID       string
	Status          video.Status
	EditorID        string
	EditorName      string
	DurationSeconds int
	DueDate         *time.Time
	CreatedAt       time.Time
	CompletedAt     *time.Time
	Scope
}

type ProjectFact struct {
	ProjectID   string
	Status      project.Status
	CreatedAt   time.Time
	CompletedAt *time.Time
	Scope
}

// FeedbackFact is filed under the scope of the project it was given on.
type FeedbackFact struct {
	FeedbackID string
	ProjectID  string
	Rating     int
	CreatedAt  time.Time
	Scope
}

// Filter narrows the facts a report is computed on. Zero values do not filter.
// From and To bound the creation dates, both ends included.
type Filter struct {
	TermID     string
	FacultyID  string
	ProgramID  string
	LecturerID string
	EditorID   string
	From       time.Time
	To         time.Time
}

func (f Filter) matchScope(s Scope) bool {
	if f.TermID != "" && s.TermID != f.TermID {
		return false
	}
	if f.FacultyID != "" && s.FacultyID != f.FacultyID {
		return false
	}
	if f.ProgramID != "" && s.ProgramID != f.ProgramID {
		return false
	}
	if f.LecturerID != "" && s.LecturerID != f.LecturerID {
		return false
	}
	return true
}

func (f Filter) matchDate(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

// MatchVideo reports whether vf passes the filter.
func (f Filter) MatchVideo(vf VideoFact) bool {
	if f.EditorID != "" && vf.EditorID != f.EditorID {
		return false
	}
	return f.matchScope(vf.Scope) && f.matchDate(vf.CreatedAt)
}

// MatchProject reports whether pf passes the filter.
// hasEditor tells whether the project has a video edited by Filter.EditorID.
func (f Filter) MatchProject(pf ProjectFact, hasEditor bool) bool {
	if f.EditorID != "" && !hasEditor {
		return false
	}
	return f.matchScope(pf.Scope) && f.matchDate(pf.CreatedAt)
}

// MatchFeedback reports whether ff passes the filter. EditorID does not apply to feedback.
func (f Filter) MatchFeedback(ff FeedbackFact) bool {
	return f.matchScope(ff.Scope) && f.matchDate(ff.CreatedAt)
}
