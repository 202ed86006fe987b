package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/video"
)

const videoColumns = "id, project_id, title, position, editor_id, status, duration_seconds, due_date, notes, " +
	"status_changed_at, completed_at, created_at, updated_at"

type videoRow struct {
	ID              string      `db:"id"`
	ProjectID       string      `db:"project_id"`
	Title           string      `db:"title"`
	Position        int         `db:"position"`
	EditorID        null.String `db:"editor_id"`
	Status          string      `db:"status"`
	DurationSeconds int         `db:"duration_seconds"`
	DueDate         null.Time   `db:"due_date"`
	Notes           string      `db:"notes"`
	StatusChangedAt time.Time   `db:"status_changed_at"`
	CompletedAt     null.Time   `db:"completed_at"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func toVideoRow(v video.Video) videoRow {
	return videoRow{
		ID:              v.ID,
		ProjectID:       v.ProjectID,
		Title:           v.Title,
		Position:        v.Position,
		EditorID:        null.NewString(v.EditorID, v.EditorID != ""),
		Status:          string(v.Status),
		DurationSeconds: v.DurationSeconds,
		DueDate:         nullTime(v.DueDate),
		Notes:           v.Notes,
		StatusChangedAt: v.StatusChangedAt.UTC(),
		CompletedAt:     nullTime(v.CompletedAt),
		CreatedAt:       v.CreatedAt.UTC(),
		UpdatedAt:       v.UpdatedAt.UTC(),
	}
}

func (r videoRow) toVideo() video.Video {
	return video.Video{
		ID:              r.ID,
		ProjectID:       r.ProjectID,
		Title:           r.Title,
		Position:        r.Position,
		EditorID:        r.EditorID.String,
		Status:          video.Status(r.Status),
		DurationSeconds: r.DurationSeconds,
		DueDate:         timePtr(r.DueDate),
		Notes:           r.Notes,
		StatusChangedAt: r.StatusChangedAt.UTC(),
		CompletedAt:     timePtr(r.CompletedAt),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type statusEventRow struct {
	ID         string      `db:"id"`
	VideoID    string      `db:"video_id"`
	FromStatus string      `db:"from_status"`
	ToStatus   string      `db:"to_status"`
	ChangedBy  null.String `db:"changed_by"`
	ChangedAt  time.Time   `db:"changed_at"`
}

type videoRepository struct {
	db *sqlx.DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *sqlx.DB) video.Repository {
	return &videoRepository{db: db}
}

func (repo videoRepository) trap(err error, msg string) error {
	return trapErr(err, video.ErrNotFound, "video", msg)
}

const insertVideo = `INSERT INTO video (` + videoColumns + `)
	VALUES (:id, :project_id, :title, :position, :editor_id, :status, :duration_seconds, :due_date, :notes,
	        :status_changed_at, :completed_at, :created_at, :updated_at)`

const updateVideo = `UPDATE video SET title = :title, position = :position, editor_id = :editor_id, status = :status,
	duration_seconds = :duration_seconds, due_date = :due_date, notes = :notes, status_changed_at = :status_changed_at,
	completed_at = :completed_at, updated_at = :updated_at
	WHERE id = :id`

func (repo videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertVideo, toVideoRow(v)); err != nil {
		return video.Video{}, repo.trap(err, "inserting video")
	}
	return v, nil
}

func (repo videoRepository) QueryVideos(ctx context.Context, filter *video.QueryFilter, ordering []core.DBOrdering) ([]video.Video, error) {
	w := &where{}
	if filter != nil {
		if !filterIDs(w, [2]string{"project_id", filter.ProjectID}) {
			return []video.Video{}, nil
		}
		if filter.EditorID != "" {
			w.add("editor_id = ?", filter.EditorID)
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]string, 0, len(filter.Statuses))
			for _, st := range filter.Statuses {
				statuses = append(statuses, string(st))
			}
			w.in("status", statuses)
		}
		if filter.Search != "" {
			w.add("title ILIKE ?", "%"+filter.Search+"%")
		}
		if !filter.OverdueAt.IsZero() {
			w.add("due_date < ?", core.Date(filter.OverdueAt))
			w.add("NOT (status = ANY(?))", pq.StringArray{string(video.StatusCompleted), string(video.StatusCancelled)})
		}
	}
	q := "SELECT " + videoColumns + " FROM video" + w.String() + " ORDER BY " + core.OrderBy(ordering, "position ASC, created_at ASC")

	var rows []videoRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying videos")
	}
	list := make([]video.Video, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toVideo())
	}
	return list, nil
}

func (repo videoRepository) GetVideo(ctx context.Context, id string) (video.Video, error) {
	if !validID(id) {
		return video.Video{}, video.ErrNotFound
	}
	var r videoRow
	if err := repo.db.GetContext(ctx, &r, "SELECT "+videoColumns+" FROM video WHERE id = $1", id); err != nil {
		return video.Video{}, repo.trap(err, "finding video")
	}
	return r.toVideo(), nil
}

func (repo videoRepository) UpdateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	if _, err := repo.db.NamedExecContext(ctx, updateVideo, toVideoRow(v)); err != nil {
		return video.Video{}, repo.trap(err, "updating video")
	}
	return v, nil
}

func (repo videoRepository) DeleteVideo(ctx context.Context, id string) error {
	return deleteByID(ctx, repo.db, "video", "video", id, video.ErrNotFound)
}

func (repo videoRepository) NextPosition(ctx context.Context, projectID string) (int, error) {
	if !validID(projectID) {
		return 1, nil
	}
	var pos int
	if err := repo.db.GetContext(ctx, &pos, "SELECT COALESCE(MAX(position), 0) + 1 FROM video WHERE project_id = $1", projectID); err != nil {
		return 0, errors.Wrap(err, "computing next video position")
	}
	return pos, nil
}

func (repo videoRepository) ChangeStatus(ctx context.Context, v video.Video, ev video.StatusEvent) (video.Video, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return video.Video{}, errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.NamedExecContext(ctx, updateVideo, toVideoRow(v))
	if err != nil {
		return video.Video{}, repo.trap(err, "updating video status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return video.Video{}, video.ErrNotFound
	}

	evRow := statusEventRow{
		ID:         ev.ID,
		VideoID:    ev.VideoID,
		FromStatus: string(ev.FromStatus),
		ToStatus:   string(ev.ToStatus),
		ChangedBy:  null.NewString(ev.ChangedBy, ev.ChangedBy != ""),
		ChangedAt:  ev.ChangedAt.UTC(),
	}
	q := `INSERT INTO video_status_event (id, video_id, from_status, to_status, changed_by, changed_at)
		VALUES (:id, :video_id, :from_status, :to_status, :changed_by, :changed_at)`
	if _, err := tx.NamedExecContext(ctx, q, evRow); err != nil {
		return video.Video{}, repo.trap(err, "recording status event")
	}

	if err := tx.Commit(); err != nil {
		return video.Video{}, errors.Wrap(err, "committing status change")
	}
	return v, nil
}

func (repo videoRepository) QueryStatusEvents(ctx context.Context, videoID string) ([]video.StatusEvent, error) {
	if !validID(videoID) {
		return []video.StatusEvent{}, nil
	}
	var rows []statusEventRow
	q := `SELECT id, video_id, from_status, to_status, changed_by, changed_at FROM video_status_event
		WHERE video_id = $1 ORDER BY changed_at ASC, id ASC`
	if err := repo.db.SelectContext(ctx, &rows, q, videoID); err != nil {
		return nil, errors.Wrap(err, "querying status events")
	}
	events := make([]video.StatusEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, video.StatusEvent{
			ID:         r.ID,
			VideoID:    r.VideoID,
			FromStatus: video.Status(r.FromStatus),
			ToStatus:   video.Status(r.ToStatus),
			ChangedBy:  r.ChangedBy.String,
			ChangedAt:  r.ChangedAt.UTC(),
		})
	}
	return events, nil
}
