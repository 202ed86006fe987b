package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db}
}

func copyProject(p project.Project) project.Project {
	p.DueDate = copyTime(p.DueDate)
	p.CompletedAt = copyTime(p.CompletedAt)
	return p
}

func projectKey(p project.Project, field string) string {
	switch field {
	case "title":
		return p.Title
	case "status":
		return string(p.Status)
	case "due_date":
		return timePtrKey(p.DueDate)
	case "created_at":
		return timeKey(p.CreatedAt)
	case "completed_at":
		return timePtrKey(p.CompletedAt)
	}
	return ""
}

// checkRefs emulates the project foreign keys. Callers hold the lock.
func (repo *projectRepository) checkRefs(p project.Project) error {
	_, okL := repo.db.lecturers[p.LecturerID]
	_, okP := repo.db.programs[p.ProgramID]
	_, okT := repo.db.terms[p.TermID]
	if !okL || !okP || !okT {
		return core.NewConflictError("project")
	}
	return nil
}

func (repo *projectRepository) CreateProject(_ context.Context, p project.Project) (project.Project, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.projects[p.ID]; ok {
		return project.Project{}, duplicateErr("project")
	}
	if err := repo.checkRefs(p); err != nil {
		return project.Project{}, err
	}
	p = copyProject(p)
	repo.db.projects[p.ID] = &p
	return copyProject(p), nil
}

// matchJoins applies the filters that need other tables. Callers hold the lock.
func (repo *projectRepository) matchJoins(filter *project.QueryFilter, p project.Project) bool {
	if filter == nil {
		return true
	}
	if filter.FacultyID != "" {
		prog, ok := repo.db.programs[p.ProgramID]
		if !ok || prog.FacultyID != filter.FacultyID {
			return false
		}
	}
	if filter.StaffID != "" {
		if _, ok := repo.db.assignments[assignmentKey{projectID: p.ID, staffID: filter.StaffID}]; !ok {
			return false
		}
	}
	return true
}

func (repo *projectRepository) QueryProjects(_ context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]project.Project, 0, len(repo.db.projects))
	for _, p := range repo.db.projects {
		if filter.Match(*p) && repo.matchJoins(filter, *p) {
			list = append(list, copyProject(*p))
		}
	}
	sortRows(list, ordering, []core.DBOrdering{desc("created_at")}, projectKey, func(p project.Project) string { return p.ID })
	return list, nil
}

func (repo *projectRepository) GetProject(_ context.Context, id string) (project.Project, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.projects[id]; ok {
		return copyProject(*p), nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) UpdateProject(_ context.Context, p project.Project) (project.Project, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.projects[p.ID]
	if !ok {
		return project.Project{}, project.ErrNotFound
	}
	if err := repo.checkRefs(p); err != nil {
		return project.Project{}, err
	}
	p.CreatedBy = orig.CreatedBy
	p = copyProject(p)
	repo.db.projects[p.ID] = &p
	return copyProject(p), nil
}

// DeleteProjects removes the projects along with their videos, assignments and feedback.
func (repo *projectRepository) DeleteProjects(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.projects[id]; !ok {
			continue
		}
		delete(repo.db.projects, id)
		n++

		for key := range repo.db.assignments {
			if key.projectID == id {
				delete(repo.db.assignments, key)
			}
		}
		for vid, v := range repo.db.videos {
			if v.ProjectID == id {
				repo.db.deleteVideo(vid)
			}
		}
		for fid, f := range repo.db.feedback {
			if f.ProjectID == id {
				delete(repo.db.feedback, fid)
			}
		}
	}
	return n, nil
}

func (repo *projectRepository) ListVideoStatuses(_ context.Context, projectID string) ([]video.Status, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if _, ok := repo.db.projects[projectID]; !ok {
		return nil, project.ErrNotFound
	}
	statuses := make([]video.Status, 0)
	for _, v := range repo.db.videos {
		if v.ProjectID == projectID {
			statuses = append(statuses, v.Status)
		}
	}
	return statuses, nil
}

func (repo *projectRepository) SaveAssignment(_ context.Context, a project.Assignment) (project.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	_, okP := repo.db.projects[a.ProjectID]
	_, okS := repo.db.staff[a.StaffID]
	if !okP || !okS {
		return project.Assignment{}, core.NewConflictError("assignment")
	}
	key := assignmentKey{projectID: a.ProjectID, staffID: a.StaffID}
	if orig, ok := repo.db.assignments[key]; ok {
		orig.Role = a.Role
		return *orig, nil
	}
	repo.db.assignments[key] = &a
	return a, nil
}

func (repo *projectRepository) QueryAssignments(_ context.Context, projectID string) ([]project.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]project.Assignment, 0)
	for key, a := range repo.db.assignments {
		if key.projectID == projectID {
			list = append(list, *a)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].AssignedAt.Equal(list[j].AssignedAt) {
			return list[i].AssignedAt.Before(list[j].AssignedAt)
		}
		return list[i].StaffID < list[j].StaffID
	})
	return list, nil
}

func (repo *projectRepository) DeleteAssignment(_ context.Context, projectID, staffID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := assignmentKey{projectID: projectID, staffID: staffID}
	if _, ok := repo.db.assignments[key]; !ok {
		return project.ErrAssignmentNotFound
	}
	delete(repo.db.assignments, key)
	return nil
}
