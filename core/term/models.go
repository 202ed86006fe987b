package term

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

const dateLayout = "2006-01-02"

var (
	termDatesTag  = "termdates"
	termDatesText = "ends_on cannot be before starts_on"
)

// Term is an academic period projects are scheduled in.
type Term struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartsOn  time.Time `json:"starts_on"`
	EndsOn    time.Time `json:"ends_on"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether t falls within the term, both ends included.
func (tm Term) Contains(t time.Time) bool {
	d := core.Date(t)
	return !d.Before(tm.StartsOn) && !d.After(tm.EndsOn)
}

// TermData is the payload used to create or update a Term. Dates use the YYYY-MM-DD layout.
type TermData struct {
	Name     string `json:"name" validate:"required,notblank"`
	StartsOn string `json:"starts_on" validate:"required,datetime=2006-01-02"`
	EndsOn   string `json:"ends_on" validate:"required,datetime=2006-01-02"`
}

func (td *TermData) Validate(validate *validator.Validate) error {
	td.Name = core.CleanString(td.Name)
	td.StartsOn = core.CleanString(td.StartsOn)
	td.EndsOn = core.CleanString(td.EndsOn)
	return validate.Struct(td)
}

func (td TermData) dates() (time.Time, time.Time) {
	start, _ := time.Parse(dateLayout, td.StartsOn)
	end, _ := time.Parse(dateLayout, td.EndsOn)
	return start, end
}

type QueryFilter struct {
	Search string
	Active time.Time // terms containing this date
}

// InitValidators registers the term validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(termStructValidation, TermData{})
	core.RegisterCustomTranslation(validate, translator, termDatesTag, termDatesText)
}

// termStructValidation checks the order of the term dates.
func termStructValidation(sl validator.StructLevel) {
	td, ok := sl.Current().Interface().(TermData)
	if !ok {
		return
	}
	start, errS := time.Parse(dateLayout, td.StartsOn)
	end, errE := time.Parse(dateLayout, td.EndsOn)
	if errS != nil || errE != nil {
		return // reported by field validations
	}
	if end.Before(start) {
		sl.ReportError(td.EndsOn, "ends_on", "EndsOn", termDatesTag, "")
	}
}

var OrderingFields = map[string]string{
	"name":      "name",
	"starts_on": "starts_on",
	"ends_on":   "ends_on",
}
