package faculty

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

type Faculty struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Program is a study program taught by a Faculty.
type Program struct {
	ID        string    `json:"id"`
	FacultyID string    `json:"faculty_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FacultyData is the payload used to create or update a Faculty.
type FacultyData struct {
	Name string `json:"name" validate:"required,notblank"`
	Code string `json:"code" validate:"required,max=16,code"`
}

func (fd *FacultyData) Validate(validate *validator.Validate) error {
	fd.Name = core.CleanString(fd.Name)
	fd.Code = core.CleanCode(fd.Code)
	return validate.Struct(fd)
}

// ProgramData is the payload used to create or update a Program.
type ProgramData struct {
	FacultyID string `json:"faculty_id" validate:"required"`
	Name      string `json:"name" validate:"required,notblank"`
	Code      string `json:"code" validate:"required,max=16,code"`
}

func (pd *ProgramData) Validate(validate *validator.Validate) error {
	pd.FacultyID = core.CleanString(pd.FacultyID)
	pd.Name = core.CleanString(pd.Name)
	pd.Code = core.CleanCode(pd.Code)
	return validate.Struct(pd)
}

type QueryFilter struct {
	Search    string
	FacultyID string
}

// Match reports whether a name/code pair passes the search filter.
func (qf *QueryFilter) Match(name, code string) bool {
	if qf == nil || qf.Search == "" {
		return true
	}
	q := strings.ToLower(qf.Search)
	return strings.Contains(strings.ToLower(name), q) || strings.Contains(strings.ToLower(code), q)
}

// OrderingFields maps the fields faculty and program lists can be ordered by to their columns.
var OrderingFields = map[string]string{
	"name":       "name",
	"code":       "code",
	"created_at": "created_at",
}
