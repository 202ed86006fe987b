package video

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

type Status string

// Statuses, in production order
const (
	StatusPlanned   Status = "planned"
	StatusScripting Status = "scripting"
	StatusRecording Status = "recording"
	StatusEditing   Status = "editing"
	StatusReview    Status = "review"
	StatusRevision  Status = "revision"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var AllStatuses = []Status{
	StatusPlanned,
	StatusScripting,
	StatusRecording,
	StatusEditing,
	StatusReview,
	StatusRevision,
	StatusCompleted,
	StatusCancelled,
}

func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no more work is expected on a video in status s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Video struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	Title           string     `json:"title"`
	Position        int        `json:"position"`
	EditorID        string     `json:"editor_id"`
	Status          Status     `json:"status"`
	DurationSeconds int        `json:"duration_seconds"`
	DueDate         *time.Time `json:"due_date"`
	Notes           string     `json:"notes"`
	StatusChangedAt time.Time  `json:"status_changed_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// IsOverdue reports whether v is still in production past its due date.
func (v Video) IsOverdue(now time.Time) bool {
	return !v.Status.IsTerminal() && v.DueDate != nil && v.DueDate.Before(core.Date(now))
}

// CanChangeStatus reports whether s may move v through the workflow:
// managers on any video, editors on the videos they edit.
func CanChangeStatus(s staff.Staff, v Video) bool {
	if !s.IsActive || !s.IsApproved {
		return false
	}
	if s.IsManager() {
		return true
	}
	return s.IsEditor() && v.EditorID != "" && v.EditorID == s.ID
}

// StatusEvent is one entry of a video's status history.
type StatusEvent struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

// VideoData is the payload used to create or update a Video.
// A zero Position appends the video at the end of its project.
type VideoData struct {
	Title           string `json:"title" validate:"required,notblank"`
	Position        int    `json:"position" validate:"gte=0"`
	EditorID        string `json:"editor_id"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	DueDate         string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Notes           string `json:"notes" validate:"max=4000"`
}

func (vd *VideoData) Validate(validate *validator.Validate) error {
	vd.Title = core.CleanString(vd.Title)
	vd.EditorID = core.CleanString(vd.EditorID)
	vd.DueDate = core.CleanString(vd.DueDate)
	vd.Notes = strings.TrimSpace(vd.Notes)
	return validate.Struct(vd)
}

func (vd VideoData) dueDate() *time.Time {
	if vd.DueDate == "" {
		return nil
	}
	d, err := time.Parse("2006-01-02", vd.DueDate)
	if err != nil {
		return nil
	}
	return &d
}

type StatusChange struct {
	Status Status `json:"status" validate:"required,videostatus"`
}

type QueryFilter struct {
	ProjectID string
	EditorID  string
	Statuses  []Status
	Search    string
	OverdueAt time.Time // non-terminal videos due before this date
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf *QueryFilter) Match(v Video) bool {
	if qf == nil {
		return true
	}
	if qf.ProjectID != "" && v.ProjectID != qf.ProjectID {
		return false
	}
	if qf.EditorID != "" && v.EditorID != qf.EditorID {
		return false
	}
	if len(qf.Statuses) > 0 {
		var found bool
		for _, st := range qf.Statuses {
			if v.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.Search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(qf.Search)) {
		return false
	}
	if !qf.OverdueAt.IsZero() && !v.IsOverdue(qf.OverdueAt) {
		return false
	}
	return true
}

// OrderingFields maps the fields video lists can be ordered by to their columns.
var OrderingFields = map[string]string{
	"position":          "position",
	"title":             "title",
	"status":            "status",
	"due_date":          "due_date",
	"status_changed_at": "status_changed_at",
	"created_at":        "created_at",
}
