package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidtrack/core/feedback"
)

const feedbackColumns = "id, project_id, video_id, lecturer_id, rating, comment, source, created_by, created_at"

type feedbackRow struct {
	ID         string      `db:"id"`
	ProjectID  string      `db:"project_id"`
	VideoID    null.String `db:"video_id"`
	LecturerID string      `db:"lecturer_id"`
	Rating     int         `db:"rating"`
	Comment    string      `db:"comment"`
	Source     string      `db:"source"`
	CreatedBy  null.String `db:"created_by"`
	CreatedAt  time.Time   `db:"created_at"`
}

func toFeedbackRow(f feedback.Feedback) feedbackRow {
	return feedbackRow{
		ID:         f.ID,
		ProjectID:  f.ProjectID,
		VideoID:    null.NewString(f.VideoID, f.VideoID != ""),
		LecturerID: f.LecturerID,
		Rating:     f.Rating,
		Comment:    f.Comment,
		Source:     f.Source,
		CreatedBy:  null.NewString(f.CreatedBy, f.CreatedBy != ""),
		CreatedAt:  f.CreatedAt.UTC(),
	}
}

func (r feedbackRow) toFeedback() feedback.Feedback {
	return feedback.Feedback{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		VideoID:    r.VideoID.String,
		LecturerID: r.LecturerID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		Source:     r.Source,
		CreatedBy:  r.CreatedBy.String,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type feedbackRepository struct {
	db *sqlx.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) feedback.Repository {
	return &feedbackRepository{db: db}
}

func (repo feedbackRepository) CreateFeedback(ctx context.Context, f feedback.Feedback) (feedback.Feedback, error) {
	q := `INSERT INTO feedback (` + feedbackColumns + `)
		VALUES (:id, :project_id, :video_id, :lecturer_id, :rating, :comment, :source, :created_by, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toFeedbackRow(f)); err != nil {
		return feedback.Feedback{}, trapErr(err, feedback.ErrNotFound, "feedback", "inserting feedback")
	}
	return f, nil
}

func (repo feedbackRepository) QueryFeedback(ctx context.Context, filter *feedback.QueryFilter) ([]feedback.Feedback, error) {
	w := &where{}
	if filter != nil {
		ok := filterIDs(w,
			[2]string{"project_id", filter.ProjectID},
			[2]string{"lecturer_id", filter.LecturerID},
			[2]string{"video_id", filter.VideoID},
		)
		if !ok {
			return []feedback.Feedback{}, nil
		}
	}
	q := "SELECT " + feedbackColumns + " FROM feedback" + w.String() + " ORDER BY created_at DESC, id ASC"

	var rows []feedbackRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying feedback")
	}
	list := make([]feedback.Feedback, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toFeedback())
	}
	return list, nil
}

func (repo feedbackRepository) GetFeedback(ctx context.Context, id string) (feedback.Feedback, error) {
	if !validID(id) {
		return feedback.Feedback{}, feedback.ErrNotFound
	}
	var r feedbackRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+feedbackColumns+" FROM feedback WHERE id = $1", id); err != nil {
		return feedback.Feedback{}, trapErr(err, feedback.ErrNotFound, "feedback", "finding feedback")
	}
	return r.toFeedback(), nil
}

func (repo feedbackRepository) DeleteFeedback(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "feedback", "feedback", id, feedback.ErrNotFound)
}
