package inmemdb

import (
	"context"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/feedback"
)

type feedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) feedback.Repository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) CreateFeedback(_ context.Context, f feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.feedback[f.ID]; ok {
		return feedback.Feedback{}, duplicateErr("feedback")
	}
	_, okP := repo.db.projects[f.ProjectID]
	_, okL := repo.db.lecturers[f.LecturerID]
	if !okP || !okL {
		return feedback.Feedback{}, core.NewConflictError("feedback")
	}
	if f.VideoID != "" {
		if _, ok := repo.db.videos[f.VideoID]; !ok {
			return feedback.Feedback{}, core.NewConflictError("feedback")
		}
	}
	repo.db.feedback[f.ID] = &f
	return f, nil
}

func (repo *feedbackRepository) QueryFeedback(_ context.Context, filter *feedback.QueryFilter) ([]feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]feedback.Feedback, 0, len(repo.db.feedback))
	for _, f := range repo.db.feedback {
		if filter.Match(*f) {
			list = append(list, *f)
		}
	}
	sortRows(list, nil, []core.DBOrdering{desc("created_at")},
		func(f feedback.Feedback, _ string) string { return timeKey(f.CreatedAt) },
		func(f feedback.Feedback) string { return f.ID })
	return list, nil
}

func (repo *feedbackRepository) GetFeedback(_ context.Context, id string) (feedback.Feedback, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if f, ok := repo.db.feedback[id]; ok {
		return *f, nil
	}
	return feedback.Feedback{}, feedback.ErrNotFound
}

func (repo *feedbackRepository) DeleteFeedback(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.feedback[id]; !ok {
		return feedback.ErrNotFound
	}
	delete(repo.db.feedback, id)
	return nil
}
