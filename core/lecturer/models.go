package lecturer

import (
	"net/mail"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

// Lecturer commissions projects. Lecturers do not log in; they answer feedback links.
type Lecturer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	FacultyID string    `json:"faculty_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address returns the lecturer's mailbox, ok is false when no email is on file.
func (l Lecturer) Address() (mail.Address, bool) {
	if l.Email == "" {
		return mail.Address{}, false
	}
	return mail.Address{Name: l.Name, Address: l.Email}, true
}

// LecturerData is the payload used to create or update a Lecturer.
type LecturerData struct {
	Name      string `json:"name" validate:"required,notblank"`
	Email     string `json:"email" validate:"omitempty,email"`
	FacultyID string `json:"faculty_id"`
}

func (ld *LecturerData) Validate(validate *validator.Validate) error {
	ld.Name = core.CleanName(ld.Name)
	ld.Email = core.CleanString(ld.Email, true /* lower */)
	ld.FacultyID = core.CleanString(ld.FacultyID)
	return validate.Struct(ld)
}

type QueryFilter struct {
	Search    string
	FacultyID string
}

func (qf *QueryFilter) Match(l Lecturer) bool {
	if qf == nil {
		return true
	}
	if qf.FacultyID != "" && l.FacultyID != qf.FacultyID {
		return false
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		return strings.Contains(strings.ToLower(l.Name), q) || strings.Contains(l.Email, q)
	}
	return true
}

var OrderingFields = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}
