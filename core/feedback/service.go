package feedback

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("feedback")
	ErrVideoNotInProject = errors.New("this video does not belong to the project")
	ErrNoLecturerEmail   = errors.New("the lecturer has no email address")
)

type (
	Repository interface {
		CreateFeedback(ctx context.Context, f Feedback) (Feedback, error)
		QueryFeedback(ctx context.Context, filter *QueryFilter) ([]Feedback, error)
		GetFeedback(ctx context.Context, id string) (Feedback, error)
		DeleteFeedback(ctx context.Context, id string) error
	}

	ProjectGetter interface {
		Get(ctx context.Context, id string) (project.Project, error)
	}

	// VideoGetter is satisfied by the video repository.
	VideoGetter interface {
		GetVideo(ctx context.Context, id string) (video.Video, error)
	}

	LecturerGetter interface {
		Get(ctx context.Context, id string) (lecturer.Lecturer, error)
	}

	// Link is what a lecturer needs to submit feedback without an account.
	Link struct {
		UID       string    `json:"uid"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}

	Service struct {
		repo      Repository
		projects  ProjectGetter
		videos    VideoGetter
		lecturers LecturerGetter
		mailSvc   core.EmailService
		signer    linkSigner
		validate  *validator.Validate
	}
)

func NewService(
	repo Repository,
	projects ProjectGetter,
	videos VideoGetter,
	lecturers LecturerGetter,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
) *Service {
	return &Service{
		repo:      repo,
		projects:  projects,
		videos:    videos,
		lecturers: lecturers,
		mailSvc:   mailSvc,
		signer:    linkSigner{secretKey: []byte(conf.SecretKey), timeout: conf.FeedbackTokenTimeout},
		validate:  validate,
	}
}

func withHTML(f Feedback) Feedback {
	f.CommentHTML = RenderComment(f.Comment)
	return f
}

func (svc *Service) checkVideo(ctx context.Context, projectID, videoID string) error {
	if videoID == "" {
		return nil
	}
	v, err := svc.videos.GetVideo(ctx, videoID)
	if err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(err, core.FieldError{Field: "video_id", Error: err.Error()})
		}
		return errors.Wrap(err, "finding video")
	}
	if v.ProjectID != projectID {
		return core.NewValidationError(ErrVideoNotInProject, core.FieldError{Field: "video_id", Error: ErrVideoNotInProject.Error()})
	}
	return nil
}

// Create records feedback given to a staff member on behalf of the project's lecturer.
func (svc *Service) Create(ctx context.Context, fd FeedbackData, actor staff.Staff) (Feedback, error) {
	if err := fd.Validate(svc.validate); err != nil {
		return Feedback{}, err
	}
	p, err := svc.projects.Get(ctx, fd.ProjectID)
	if err != nil {
		if core.IsNotFound(err) {
			return Feedback{}, core.NewValidationError(err, core.FieldError{Field: "project_id", Error: err.Error()})
		}
		return Feedback{}, errors.Wrap(err, "finding project")
	}
	if err := svc.checkVideo(ctx, p.ID, fd.VideoID); err != nil {
		return Feedback{}, err
	}
	f, err := svc.repo.CreateFeedback(ctx, Feedback{
		ID:         uuid.New().String(),
		ProjectID:  p.ID,
		VideoID:    fd.VideoID,
		LecturerID: p.LecturerID,
		Rating:     fd.Rating,
		Comment:    fd.Comment,
		Source:     SourceStaff,
		CreatedBy:  actor.ID,
		CreatedAt:  core.Now(),
	})
	if err != nil {
		return Feedback{}, err
	}
	return withHTML(f), nil
}

// MakeLink signs a feedback link for the lecturer of p.
func (svc *Service) MakeLink(p project.Project, l lecturer.Lecturer) (Link, error) {
	ts := numDaysSince2001(NowFunc())
	token, err := svc.signer.makeTokenWithTimestamp(p.ID, l.ID, l.Email, ts)
	if err != nil {
		return Link{}, errors.Wrap(err, "signing feedback link")
	}
	return Link{
		UID:       EncodeUID(p.ID, l.ID),
		Token:     token,
		ExpiresAt: svc.signer.expiresAt(ts),
	}, nil
}

// resolveLink returns the project and lecturer a link was signed for.
func (svc *Service) resolveLink(ctx context.Context, uid, token string) (project.Project, lecturer.Lecturer, error) {
	projectID, lecturerID, err := DecodeUID(uid)
	if err != nil {
		return project.Project{}, lecturer.Lecturer{}, core.NewValidationError(err)
	}
	p, err := svc.projects.Get(ctx, projectID)
	if err != nil {
		if core.IsNotFound(err) {
			return project.Project{}, lecturer.Lecturer{}, core.NewValidationError(ErrInvalidLink)
		}
		return project.Project{}, lecturer.Lecturer{}, errors.Wrap(err, "finding project")
	}
	if p.LecturerID != lecturerID {
		return project.Project{}, lecturer.Lecturer{}, core.NewValidationError(ErrInvalidLink)
	}
	l, err := svc.lecturers.Get(ctx, lecturerID)
	if err != nil {
		if core.IsNotFound(err) {
			return project.Project{}, lecturer.Lecturer{}, core.NewValidationError(ErrInvalidLink)
		}
		return project.Project{}, lecturer.Lecturer{}, errors.Wrap(err, "finding lecturer")
	}
	if err := svc.signer.verifyToken(p.ID, l.ID, l.Email, token); err != nil {
		return project.Project{}, lecturer.Lecturer{}, core.NewValidationError(err)
	}
	return p, l, nil
}

// SubmitViaLink records feedback sent by a lecturer from a signed link.
func (svc *Service) SubmitViaLink(ctx context.Context, ls LinkSubmission) (Feedback, error) {
	if err := ls.Validate(svc.validate); err != nil {
		return Feedback{}, err
	}
	p, l, err := svc.resolveLink(ctx, ls.UID, ls.Token)
	if err != nil {
		return Feedback{}, err
	}
	if err := svc.checkVideo(ctx, p.ID, ls.VideoID); err != nil {
		return Feedback{}, err
	}
	f, err := svc.repo.CreateFeedback(ctx, Feedback{
		ID:         uuid.New().String(),
		ProjectID:  p.ID,
		VideoID:    ls.VideoID,
		LecturerID: l.ID,
		Rating:     ls.Rating,
		Comment:    ls.Comment,
		Source:     SourceLink,
		CreatedAt:  core.Now(),
	})
	if err != nil {
		return Feedback{}, err
	}
	return withHTML(f), nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Feedback, error) {
	list, err := svc.repo.QueryFeedback(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = withHTML(list[i])
	}
	return list, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Feedback, error) {
	f, err := svc.repo.GetFeedback(ctx, id)
	if err != nil {
		return Feedback{}, err
	}
	return withHTML(f), nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteFeedback(ctx, id)
}

// NotifyReview emails the project's lecturer a feedback link for v.
func (svc *Service) NotifyReview(ctx context.Context, v video.Video) error {
	p, err := svc.projects.Get(ctx, v.ProjectID)
	if err != nil {
		return errors.Wrap(err, "finding project")
	}
	l, err := svc.lecturers.Get(ctx, p.LecturerID)
	if err != nil {
		return errors.Wrap(err, "finding lecturer")
	}
	to, ok := l.Address()
	if !ok {
		return ErrNoLecturerEmail
	}
	link, err := svc.MakeLink(p, l)
	if err != nil {
		return err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      "Your video is ready for review",
		TemplateName: "feedback_request",
		TemplateData: map[string]interface{}{
			"LecturerName":  l.Name,
			"VideoTitle":    v.Title,
			"ProjectTitle":  p.Title,
			"UID":           link.UID,
			"Token":         link.Token,
			"ExpiresInDays": svc.signer.timeoutDays(),
		},
	})
	return nil
}
