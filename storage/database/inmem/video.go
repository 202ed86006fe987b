package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/video"
)

type videoRepository struct {
	db *DB
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(db *DB) video.Repository {
	return &videoRepository{db: db}
}

func copyVideo(v video.Video) video.Video {
	v.DueDate = copyTime(v.DueDate)
	v.CompletedAt = copyTime(v.CompletedAt)
	return v
}

func videoKey(v video.Video, field string) string {
	switch field {
	case "position":
		return intKey(v.Position)
	case "title":
		return v.Title
	case "status":
		return string(v.Status)
	case "due_date":
		return timePtrKey(v.DueDate)
	case "status_changed_at":
		return timeKey(v.StatusChangedAt)
	case "created_at":
		return timeKey(v.CreatedAt)
	}
	return ""
}

// deleteVideo drops v and what cascades from it. Callers hold the lock.
func (db *DB) deleteVideo(id string) {
	delete(db.videos, id)
	events := db.events[:0]
	for _, ev := range db.events {
		if ev.VideoID != id {
			events = append(events, ev)
		}
	}
	db.events = events
	for _, f := range db.feedback {
		if f.VideoID == id {
			f.VideoID = ""
		}
	}
}

// checkRefs emulates the video foreign keys. Callers hold the lock.
func (repo *videoRepository) checkRefs(v video.Video) error {
	if _, ok := repo.db.projects[v.ProjectID]; !ok {
		return core.NewConflictError("video")
	}
	if v.EditorID != "" {
		if _, ok := repo.db.staff[v.EditorID]; !ok {
			return core.NewConflictError("video")
		}
	}
	return nil
}

func (repo *videoRepository) CreateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.videos[v.ID]; ok {
		return video.Video{}, duplicateErr("video")
	}
	if err := repo.checkRefs(v); err != nil {
		return video.Video{}, err
	}
	v = copyVideo(v)
	repo.db.videos[v.ID] = &v
	return copyVideo(v), nil
}

func (repo *videoRepository) QueryVideos(_ context.Context, filter *video.QueryFilter, ordering []core.DBOrdering) ([]video.Video, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]video.Video, 0, len(repo.db.videos))
	for _, v := range repo.db.videos {
		if filter.Match(*v) {
			list = append(list, copyVideo(*v))
		}
	}
	sortRows(list, ordering, []core.DBOrdering{asc("position"), asc("created_at")}, videoKey, func(v video.Video) string { return v.ID })
	return list, nil
}

func (repo *videoRepository) GetVideo(_ context.Context, id string) (video.Video, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if v, ok := repo.db.videos[id]; ok {
		return copyVideo(*v), nil
	}
	return video.Video{}, video.ErrNotFound
}

func (repo *videoRepository) update(v video.Video) (video.Video, error) {
	orig, ok := repo.db.videos[v.ID]
	if !ok {
		return video.Video{}, video.ErrNotFound
	}
	v.ProjectID = orig.ProjectID
	if err := repo.checkRefs(v); err != nil {
		return video.Video{}, err
	}
	v = copyVideo(v)
	repo.db.videos[v.ID] = &v
	return copyVideo(v), nil
}

func (repo *videoRepository) UpdateVideo(_ context.Context, v video.Video) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	return repo.update(v)
}

func (repo *videoRepository) DeleteVideo(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.videos[id]; !ok {
		return video.ErrNotFound
	}
	repo.db.deleteVideo(id)
	return nil
}

func (repo *videoRepository) NextPosition(_ context.Context, projectID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var max int
	for _, v := range repo.db.videos {
		if v.ProjectID == projectID && v.Position > max {
			max = v.Position
		}
	}
	return max + 1, nil
}

func (repo *videoRepository) ChangeStatus(_ context.Context, v video.Video, ev video.StatusEvent) (video.Video, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	saved, err := repo.update(v)
	if err != nil {
		return video.Video{}, err
	}
	repo.db.events = append(repo.db.events, ev)
	return saved, nil
}

func (repo *videoRepository) QueryStatusEvents(_ context.Context, videoID string) ([]video.StatusEvent, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	events := make([]video.StatusEvent, 0)
	for _, ev := range repo.db.events {
		if ev.VideoID == videoID {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].ChangedAt.Before(events[j].ChangedAt) })
	return events, nil
}
