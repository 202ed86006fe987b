package video

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("video")
	ErrInvalidEditor = errors.New("editor must be an active, approved staff member with the editor role")
)

type (
	Repository interface {
		CreateVideo(ctx context.Context, v Video) (Video, error)
		QueryVideos(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Video, error)
		GetVideo(ctx context.Context, id string) (Video, error)
		UpdateVideo(ctx context.Context, v Video) (Video, error)
		DeleteVideo(ctx context.Context, id string) error
		NextPosition(ctx context.Context, projectID string) (int, error)
		// ChangeStatus persists v and records ev atomically.
		ChangeStatus(ctx context.Context, v Video, ev StatusEvent) (Video, error)
		QueryStatusEvents(ctx context.Context, videoID string) ([]StatusEvent, error)
	}

	// Projects is the part of the project service videos rely on.
	Projects interface {
		Exists(ctx context.Context, id string) error
		SyncStatus(ctx context.Context, id string) error
	}

	StaffGetter interface {
		Get(ctx context.Context, id string) (staff.Staff, error)
	}

	// ReviewNotifier tells the lecturer that a video is ready for review.
	ReviewNotifier interface {
		NotifyReview(ctx context.Context, v Video) error
	}

	Service struct {
		repo     Repository
		projects Projects
		staff    StaffGetter
		notifier ReviewNotifier
		logger   core.Logger
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	projects Projects,
	staffSvc StaffGetter,
	notifier ReviewNotifier,
	logger core.Logger,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:     repo,
		projects: projects,
		staff:    staffSvc,
		notifier: notifier,
		logger:   logger,
		validate: validate,
	}
}

func (svc *Service) checkEditor(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	s, err := svc.staff.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "editor_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding editor")
	}
	if !s.IsActive || !s.IsApproved || !s.IsEditor() {
		return core.NewValidationError(ErrInvalidEditor, core.FieldError{Field: "editor_id", Error: ErrInvalidEditor.Error()})
	}
	return nil
}

func (svc *Service) syncProject(ctx context.Context, projectID string) error {
	if err := svc.projects.SyncStatus(ctx, projectID); err != nil {
		return errors.Wrap(err, "syncing project status")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, projectID string, vd VideoData) (Video, error) {
	if err := vd.Validate(svc.validate); err != nil {
		return Video{}, err
	}
	if err := svc.projects.Exists(ctx, projectID); err != nil {
		return Video{}, err
	}
	if err := svc.checkEditor(ctx, vd.EditorID); err != nil {
		return Video{}, err
	}
	position := vd.Position
	if position == 0 {
		next, err := svc.repo.NextPosition(ctx, projectID)
		if err != nil {
			return Video{}, errors.Wrap(err, "computing video position")
		}
		position = next
	}

	now := core.Now()
	v, err := svc.repo.CreateVideo(ctx, Video{
		ID:              uuid.New().String(),
		ProjectID:       projectID,
		Title:           vd.Title,
		Position:        position,
		EditorID:        vd.EditorID,
		Status:          StatusPlanned,
		DurationSeconds: vd.DurationSeconds,
		DueDate:         vd.dueDate(),
		Notes:           vd.Notes,
		StatusChangedAt: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return Video{}, err
	}
	return v, svc.syncProject(ctx, projectID)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Video, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryVideos(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Video, error) {
	return svc.repo.GetVideo(ctx, id)
}

func (svc *Service) Update(ctx context.Context, orig Video, vd VideoData) (Video, error) {
	if err := vd.Validate(svc.validate); err != nil {
		return Video{}, err
	}
	if vd.EditorID != orig.EditorID {
		if err := svc.checkEditor(ctx, vd.EditorID); err != nil {
			return Video{}, err
		}
	}
	v := orig
	v.Title = vd.Title
	if vd.Position > 0 {
		v.Position = vd.Position
	}
	v.EditorID = vd.EditorID
	v.DurationSeconds = vd.DurationSeconds
	v.DueDate = vd.dueDate()
	v.Notes = vd.Notes
	v.UpdatedAt = core.Now()
	return svc.repo.UpdateVideo(ctx, v)
}

// ChangeStatus moves v to sc.Status on behalf of actor and re-derives the project status.
// Any transition is allowed, including reopening a terminal video; a change to the current status does nothing.
func (svc *Service) ChangeStatus(ctx context.Context, orig Video, sc StatusChange, actor staff.Staff) (Video, error) {
	if err := svc.validate.Struct(sc); err != nil {
		return Video{}, err
	}
	if sc.Status == orig.Status {
		return orig, nil
	}

	now := core.Now()
	v := orig
	v.Status = sc.Status
	v.StatusChangedAt = now
	v.UpdatedAt = now
	if sc.Status == StatusCompleted {
		v.CompletedAt = &now
	} else {
		v.CompletedAt = nil
	}
	ev := StatusEvent{
		ID:         uuid.New().String(),
		VideoID:    v.ID,
		FromStatus: orig.Status,
		ToStatus:   sc.Status,
		ChangedBy:  actor.ID,
		ChangedAt:  now,
	}

	v, err := svc.repo.ChangeStatus(ctx, v, ev)
	if err != nil {
		return Video{}, err
	}
	if err := svc.syncProject(ctx, v.ProjectID); err != nil {
		return Video{}, err
	}

	if v.Status == StatusReview && svc.notifier != nil {
		if err := svc.notifier.NotifyReview(ctx, v); err != nil {
			svc.logger.Error(fmt.Sprintf("notifying review of video %s: %v", v.ID, err), err, actor)
		}
	}
	return v, nil
}

func (svc *Service) History(ctx context.Context, id string) ([]StatusEvent, error) {
	if _, err := svc.repo.GetVideo(ctx, id); err != nil {
		return nil, err
	}
	return svc.repo.QueryStatusEvents(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, v Video) error {
	if err := svc.repo.DeleteVideo(ctx, v.ID); err != nil {
		return err
	}
	return svc.syncProject(ctx, v.ProjectID)
}
