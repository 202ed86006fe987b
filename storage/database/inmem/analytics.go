package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/project"
)

type analyticsSource struct {
	db *DB
}

var _ analytics.Source = (*analyticsSource)(nil) // interface compliance check

func NewAnalyticsSource(db *DB) analytics.Source {
	return &analyticsSource{db: db}
}

// scope joins the catalog rows of p. Callers hold the lock.
func (src *analyticsSource) scope(p project.Project) analytics.Scope {
	s := analytics.Scope{
		ProgramID:  p.ProgramID,
		LecturerID: p.LecturerID,
		TermID:     p.TermID,
	}
	if prog, ok := src.db.programs[p.ProgramID]; ok {
		s.ProgramName = prog.Name
		s.FacultyID = prog.FacultyID
		if f, ok := src.db.faculties[prog.FacultyID]; ok {
			s.FacultyName = f.Name
		}
	}
	if l, ok := src.db.lecturers[p.LecturerID]; ok {
		s.LecturerName = l.Name
	}
	if t, ok := src.db.terms[p.TermID]; ok {
		s.TermName = t.Name
	}
	return s
}

func (src *analyticsSource) ProjectFacts(_ context.Context, f analytics.Filter) ([]analytics.ProjectFact, error) {
	src.db.mutex.RLock()
	defer src.db.mutex.RUnlock()

	edited := make(map[string]bool)
	if f.EditorID != "" {
		for _, v := range src.db.videos {
			if v.EditorID == f.EditorID {
				edited[v.ProjectID] = true
			}
		}
	}

	list := make([]analytics.ProjectFact, 0, len(src.db.projects))
	for _, p := range src.db.projects {
		pf := analytics.ProjectFact{
			ProjectID:   p.ID,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
			CompletedAt: copyTime(p.CompletedAt),
			Scope:       src.scope(*p),
		}
		if f.MatchProject(pf, edited[p.ID]) {
			list = append(list, pf)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProjectID < list[j].ProjectID })
	return list, nil
}

func (src *analyticsSource) VideoFacts(_ context.Context, f analytics.Filter) ([]analytics.VideoFact, error) {
	src.db.mutex.RLock()
	defer src.db.mutex.RUnlock()

	list := make([]analytics.VideoFact, 0, len(src.db.videos))
	for _, v := range src.db.videos {
		p, ok := src.db.projects[v.ProjectID]
		if !ok {
			continue
		}
		vf := analytics.VideoFact{
			VideoID:         v.ID,
			ProjectID:       v.ProjectID,
			Status:          v.Status,
			EditorID:        v.EditorID,
			DurationSeconds: v.DurationSeconds,
			DueDate:         copyTime(v.DueDate),
			CreatedAt:       v.CreatedAt,
			CompletedAt:     copyTime(v.CompletedAt),
			Scope:           src.scope(*p),
		}
		if s, ok := src.db.staff[v.EditorID]; ok {
			vf.EditorName = s.Name
		}
		if f.MatchVideo(vf) {
			list = append(list, vf)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].VideoID < list[j].VideoID })
	return list, nil
}

func (src *analyticsSource) FeedbackFacts(_ context.Context, f analytics.Filter) ([]analytics.FeedbackFact, error) {
	src.db.mutex.RLock()
	defer src.db.mutex.RUnlock()

	list := make([]analytics.FeedbackFact, 0, len(src.db.feedback))
	for _, fb := range src.db.feedback {
		p, ok := src.db.projects[fb.ProjectID]
		if !ok {
			continue
		}
		ff := analytics.FeedbackFact{
			FeedbackID: fb.ID,
			ProjectID:  fb.ProjectID,
			Rating:     fb.Rating,
			CreatedAt:  fb.CreatedAt,
			Scope:      src.scope(*p),
		}
		if f.MatchFeedback(ff) {
			list = append(list, ff)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].FeedbackID < list[j].FeedbackID })
	return list, nil
}
