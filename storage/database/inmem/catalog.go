package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/term"
)

func catalogKey(name, code string, createdAt string, field string) string {
	switch field {
	case "name":
		return name
	case "code":
		return code
	case "created_at":
		return createdAt
	}
	return ""
}

// faculties and programs

type facultyRepository struct {
	db *DB
}

var _ faculty.Repository = (*facultyRepository)(nil) // interface compliance check

func NewFacultyRepository(db *DB) faculty.Repository {
	return &facultyRepository{db: db}
}

func (repo *facultyRepository) CheckFacultyCode(_ context.Context, code string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, f := range repo.db.faculties {
		if f.Code == code && !excluded(f.ID, excludedIDs) {
			return faculty.ErrCodeExists
		}
	}
	return nil
}

func (repo *facultyRepository) CreateFaculty(_ context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.faculties {
		if other.ID == f.ID || other.Code == f.Code {
			return faculty.Faculty{}, duplicateErr("faculty")
		}
	}
	repo.db.faculties[f.ID] = &f
	return f, nil
}

func (repo *facultyRepository) QueryFaculties(_ context.Context, filter *faculty.QueryFilter, ordering []core.DBOrdering) ([]faculty.Faculty, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]faculty.Faculty, 0, len(repo.db.faculties))
	for _, f := range repo.db.faculties {
		if filter.Match(f.Name, f.Code) {
			list = append(list, *f)
		}
	}
	sortRows(list, ordering, []core.DBOrdering{asc("name")},
		func(f faculty.Faculty, field string) string { return catalogKey(f.Name, f.Code, timeKey(f.CreatedAt), field) },
		func(f faculty.Faculty) string { return f.ID })
	return list, nil
}

func (repo *facultyRepository) GetFaculty(_ context.Context, id string) (faculty.Faculty, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if f, ok := repo.db.faculties[id]; ok {
		return *f, nil
	}
	return faculty.Faculty{}, faculty.ErrNotFound
}

func (repo *facultyRepository) UpdateFaculty(_ context.Context, f faculty.Faculty) (faculty.Faculty, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.faculties[f.ID]; !ok {
		return faculty.Faculty{}, faculty.ErrNotFound
	}
	for _, other := range repo.db.faculties {
		if other.ID != f.ID && other.Code == f.Code {
			return faculty.Faculty{}, duplicateErr("faculty")
		}
	}
	repo.db.faculties[f.ID] = &f
	return f, nil
}

func (repo *facultyRepository) DeleteFaculty(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.faculties[id]; !ok {
		return faculty.ErrNotFound
	}
	for _, p := range repo.db.programs {
		if p.FacultyID == id {
			return core.NewConflictError("faculty")
		}
	}
	delete(repo.db.faculties, id)
	for _, l := range repo.db.lecturers {
		if l.FacultyID == id {
			l.FacultyID = ""
		}
	}
	return nil
}

func (repo *facultyRepository) CheckProgramCode(_ context.Context, facultyID, code string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, p := range repo.db.programs {
		if p.FacultyID == facultyID && p.Code == code && !excluded(p.ID, excludedIDs) {
			return faculty.ErrCodeExists
		}
	}
	return nil
}

func (repo *facultyRepository) CreateProgram(_ context.Context, p faculty.Program) (faculty.Program, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.faculties[p.FacultyID]; !ok {
		return faculty.Program{}, core.NewConflictError("program")
	}
	for _, other := range repo.db.programs {
		if other.ID == p.ID || (other.FacultyID == p.FacultyID && other.Code == p.Code) {
			return faculty.Program{}, duplicateErr("program")
		}
	}
	repo.db.programs[p.ID] = &p
	return p, nil
}

func (repo *facultyRepository) QueryPrograms(_ context.Context, filter *faculty.QueryFilter, ordering []core.DBOrdering) ([]faculty.Program, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]faculty.Program, 0, len(repo.db.programs))
	for _, p := range repo.db.programs {
		if filter != nil && filter.FacultyID != "" && p.FacultyID != filter.FacultyID {
			continue
		}
		if filter.Match(p.Name, p.Code) {
			list = append(list, *p)
		}
	}
	sortRows(list, ordering, []core.DBOrdering{asc("name")},
		func(p faculty.Program, field string) string { return catalogKey(p.Name, p.Code, timeKey(p.CreatedAt), field) },
		func(p faculty.Program) string { return p.ID })
	return list, nil
}

func (repo *facultyRepository) GetProgram(_ context.Context, id string) (faculty.Program, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.programs[id]; ok {
		return *p, nil
	}
	return faculty.Program{}, faculty.ErrProgramNotFound
}

func (repo *facultyRepository) UpdateProgram(_ context.Context, p faculty.Program) (faculty.Program, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.programs[p.ID]; !ok {
		return faculty.Program{}, faculty.ErrProgramNotFound
	}
	for _, other := range repo.db.programs {
		if other.ID != p.ID && other.FacultyID == p.FacultyID && other.Code == p.Code {
			return faculty.Program{}, duplicateErr("program")
		}
	}
	repo.db.programs[p.ID] = &p
	return p, nil
}

func (repo *facultyRepository) DeleteProgram(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.programs[id]; !ok {
		return faculty.ErrProgramNotFound
	}
	for _, p := range repo.db.projects {
		if p.ProgramID == id {
			return core.NewConflictError("program")
		}
	}
	delete(repo.db.programs, id)
	return nil
}

// terms

type termRepository struct {
	db *DB
}

var _ term.Repository = (*termRepository)(nil) // interface compliance check

func NewTermRepository(db *DB) term.Repository {
	return &termRepository{db: db}
}

func (repo *termRepository) CheckTermName(_ context.Context, name string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, t := range repo.db.terms {
		if strings.EqualFold(t.Name, name) && !excluded(t.ID, excludedIDs) {
			return term.ErrNameExists
		}
	}
	return nil
}

func (repo *termRepository) CreateTerm(_ context.Context, t term.Term) (term.Term, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, other := range repo.db.terms {
		if other.ID == t.ID || other.Name == t.Name {
			return term.Term{}, duplicateErr("term")
		}
	}
	repo.db.terms[t.ID] = &t
	return t, nil
}

func (repo *termRepository) QueryTerms(_ context.Context, filter *term.QueryFilter, ordering []core.DBOrdering) ([]term.Term, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]term.Term, 0, len(repo.db.terms))
	for _, t := range repo.db.terms {
		if filter != nil {
			if filter.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(filter.Search)) {
				continue
			}
			if !filter.Active.IsZero() && !t.Contains(filter.Active) {
				continue
			}
		}
		list = append(list, *t)
	}
	sortRows(list, ordering, []core.DBOrdering{desc("starts_on")},
		func(t term.Term, field string) string {
			switch field {
			case "name":
				return t.Name
			case "starts_on":
				return timeKey(t.StartsOn)
			case "ends_on":
				return timeKey(t.EndsOn)
			}
			return ""
		},
		func(t term.Term) string { return t.ID })
	return list, nil
}

func (repo *termRepository) GetTerm(_ context.Context, id string) (term.Term, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.terms[id]; ok {
		return *t, nil
	}
	return term.Term{}, term.ErrNotFound
}

func (repo *termRepository) UpdateTerm(_ context.Context, t term.Term) (term.Term, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.terms[t.ID]; !ok {
		return term.Term{}, term.ErrNotFound
	}
	repo.db.terms[t.ID] = &t
	return t, nil
}

func (repo *termRepository) DeleteTerm(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.terms[id]; !ok {
		return term.ErrNotFound
	}
	for _, p := range repo.db.projects {
		if p.TermID == id {
			return core.NewConflictError("term")
		}
	}
	delete(repo.db.terms, id)
	return nil
}

// lecturers

type lecturerRepository struct {
	db *DB
}

var _ lecturer.Repository = (*lecturerRepository)(nil) // interface compliance check

func NewLecturerRepository(db *DB) lecturer.Repository {
	return &lecturerRepository{db: db}
}

func (repo *lecturerRepository) CheckLecturerEmail(_ context.Context, email string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, l := range repo.db.lecturers {
		if l.Email != "" && strings.EqualFold(l.Email, email) && !excluded(l.ID, excludedIDs) {
			return lecturer.ErrEmailExists
		}
	}
	return nil
}

func (repo *lecturerRepository) CreateLecturer(_ context.Context, l lecturer.Lecturer) (lecturer.Lecturer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if l.FacultyID != "" {
		if _, ok := repo.db.faculties[l.FacultyID]; !ok {
			return lecturer.Lecturer{}, core.NewConflictError("lecturer")
		}
	}
	for _, other := range repo.db.lecturers {
		if other.ID == l.ID || (l.Email != "" && strings.EqualFold(other.Email, l.Email)) {
			return lecturer.Lecturer{}, duplicateErr("lecturer")
		}
	}
	repo.db.lecturers[l.ID] = &l
	return l, nil
}

func (repo *lecturerRepository) QueryLecturers(_ context.Context, filter *lecturer.QueryFilter, ordering []core.DBOrdering) ([]lecturer.Lecturer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]lecturer.Lecturer, 0, len(repo.db.lecturers))
	for _, l := range repo.db.lecturers {
		if filter.Match(*l) {
			list = append(list, *l)
		}
	}
	sortRows(list, ordering, []core.DBOrdering{asc("name")},
		func(l lecturer.Lecturer, field string) string {
			switch field {
			case "name":
				return l.Name
			case "email":
				if l.Email == "" {
					return nullKey
				}
				return l.Email
			case "created_at":
				return timeKey(l.CreatedAt)
			}
			return ""
		},
		func(l lecturer.Lecturer) string { return l.ID })
	return list, nil
}

func (repo *lecturerRepository) GetLecturer(_ context.Context, id string) (lecturer.Lecturer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if l, ok := repo.db.lecturers[id]; ok {
		return *l, nil
	}
	return lecturer.Lecturer{}, lecturer.ErrNotFound
}

func (repo *lecturerRepository) UpdateLecturer(_ context.Context, l lecturer.Lecturer) (lecturer.Lecturer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lecturers[l.ID]; !ok {
		return lecturer.Lecturer{}, lecturer.ErrNotFound
	}
	if l.FacultyID != "" {
		if _, ok := repo.db.faculties[l.FacultyID]; !ok {
			return lecturer.Lecturer{}, core.NewConflictError("lecturer")
		}
	}
	repo.db.lecturers[l.ID] = &l
	return l, nil
}

func (repo *lecturerRepository) DeleteLecturer(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.lecturers[id]; !ok {
		return lecturer.ErrNotFound
	}
	for _, p := range repo.db.projects {
		if p.LecturerID == id {
			return core.NewConflictError("lecturer")
		}
	}
	delete(repo.db.lecturers, id)
	return nil
}
