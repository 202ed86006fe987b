package feedback

import (
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

// Sources
const (
	SourceStaff = "staff" // recorded by a staff member, eg. after a meeting
	SourceLink  = "link"  // submitted by the lecturer through a feedback link
)

var (
	ratingTag  = "rating"
	ratingText = "rating must be between 1 and 5"
)

type Feedback struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	VideoID     string    `json:"video_id"`
	LecturerID  string    `json:"lecturer_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	CommentHTML string    `json:"comment_html"`
	Source      string    `json:"source"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// FeedbackData is the payload staff members use to record feedback.
type FeedbackData struct {
	ProjectID string `json:"project_id" validate:"required"`
	VideoID   string `json:"video_id"`
	Rating    int    `json:"rating" validate:"rating"`
	Comment   string `json:"comment" validate:"max=4000"`
}

func (fd *FeedbackData) Validate(validate *validator.Validate) error {
	fd.ProjectID = core.CleanString(fd.ProjectID)
	fd.VideoID = core.CleanString(fd.VideoID)
	fd.Comment = strings.TrimSpace(fd.Comment)
	return validate.Struct(fd)
}

// LinkSubmission is the payload lecturers post from a feedback link.
type LinkSubmission struct {
	UID     string `json:"uid" validate:"required"`
	Token   string `json:"token" validate:"required"`
	VideoID string `json:"video_id"`
	Rating  int    `json:"rating" validate:"rating"`
	Comment string `json:"comment" validate:"max=4000"`
}

func (ls *LinkSubmission) Validate(validate *validator.Validate) error {
	ls.UID = core.CleanString(ls.UID)
	ls.Token = core.CleanString(ls.Token)
	ls.VideoID = core.CleanString(ls.VideoID)
	ls.Comment = strings.TrimSpace(ls.Comment)
	return validate.Struct(ls)
}

type QueryFilter struct {
	ProjectID  string
	LecturerID string
	VideoID    string
}

func (qf *QueryFilter) Match(f Feedback) bool {
	if qf == nil {
		return true
	}
	if qf.ProjectID != "" && f.ProjectID != qf.ProjectID {
		return false
	}
	if qf.LecturerID != "" && f.LecturerID != qf.LecturerID {
		return false
	}
	if qf.VideoID != "" && f.VideoID != qf.VideoID {
		return false
	}
	return true
}

// InitValidators registers the feedback validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ratingTag, ratingValidation)
	core.RegisterCustomTranslation(validate, translator, ratingTag, ratingText)
}

func ratingValidation(fl validator.FieldLevel) bool {
	r := fl.Field().Int()
	return r >= 1 && r <= 5
}
