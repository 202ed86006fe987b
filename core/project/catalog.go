package project

import (
	"context"

	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/term"
)

type catalog struct {
	lecturers *lecturer.Service
	faculties *faculty.Service
	terms     *term.Service
}

var _ Catalog = (*catalog)(nil)

// NewCatalog serves project references from the catalog services.
func NewCatalog(lecturers *lecturer.Service, faculties *faculty.Service, terms *term.Service) Catalog {
	return &catalog{lecturers: lecturers, faculties: faculties, terms: terms}
}

func (c *catalog) GetLecturer(ctx context.Context, id string) (lecturer.Lecturer, error) {
	return c.lecturers.Get(ctx, id)
}

func (c *catalog) GetProgram(ctx context.Context, id string) (faculty.Program, error) {
	return c.faculties.GetProgram(ctx, id)
}

func (c *catalog) GetTerm(ctx context.Context, id string) (term.Term, error) {
	return c.terms.Get(ctx, id)
}
