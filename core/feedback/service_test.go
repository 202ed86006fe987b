package feedback_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
	emailsvc "github.com/trezcool/vidtrack/services/email"
	"github.com/trezcool/vidtrack/testutil"
)

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t, emailsvc.NewConsoleServiceMock(core.NewTestConfig(), testutil.NewLogger()))
	cat := app.SeedCatalog(t)
	p := app.NewProject(t, cat, "Algorithms")
	other := app.NewProject(t, cat, "Databases")
	v := testutil.CreateVideo(t, app.VideoRepo, video.Video{ProjectID: p.ID, Title: "Intro", Position: 1})
	foreign := testutil.CreateVideo(t, app.VideoRepo, video.Video{ProjectID: other.ID, Title: "SQL", Position: 1})
	editor := testutil.CreateStaff(t, app.StaffRepo, "Eddy", "eddy@vid.test", []string{staff.RoleEditor}, true)

	f, err := app.FeedbackSvc.Create(ctx, feedback.FeedbackData{
		ProjectID: p.ID,
		VideoID:   v.ID,
		Rating:    4,
		Comment:   "Great **pacing**",
	}, editor)
	require.NoError(t, err)
	assert.Equal(t, cat.Lecturer.ID, f.LecturerID)
	assert.Equal(t, feedback.SourceStaff, f.Source)
	assert.Equal(t, editor.ID, f.CreatedBy)
	assert.Contains(t, f.CommentHTML, "<p>Great <strong>pacing</strong></p>")

	tests := []struct {
		name      string
		data      feedback.FeedbackData
		wantField string
	}{
		{"rating too low", feedback.FeedbackData{ProjectID: p.ID, Rating: 0}, "rating"},
		{"rating too high", feedback.FeedbackData{ProjectID: p.ID, Rating: 6}, "rating"},
		{"unknown project", feedback.FeedbackData{ProjectID: "nope", Rating: 3}, "project_id"},
		{"unknown video", feedback.FeedbackData{ProjectID: p.ID, VideoID: "nope", Rating: 3}, "video_id"},
		{"video of another project", feedback.FeedbackData{ProjectID: p.ID, VideoID: foreign.ID, Rating: 3}, "video_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.FeedbackSvc.Create(ctx, tt.data, editor)
			require.Error(t, err)
			assert.Contains(t, testutil.FieldNames(err), tt.wantField)
		})
	}

	list, err := app.FeedbackSvc.Query(ctx, &feedback.QueryFilter{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.CommentHTML, list[0].CommentHTML)

	require.NoError(t, app.FeedbackSvc.Delete(ctx, f.ID))
	_, err = app.FeedbackSvc.Get(ctx, f.ID)
	assert.True(t, core.IsNotFound(err))
}

func TestService_SubmitViaLink(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t, emailsvc.NewConsoleServiceMock(core.NewTestConfig(), testutil.NewLogger()))
	cat := app.SeedCatalog(t)
	p := app.NewProject(t, cat, "Algorithms")
	otherLect := testutil.CreateLecturer(t, app.LecturerRepo, "Alan Turing", "alan@uni.test", cat.Faculty.ID)

	link, err := app.FeedbackSvc.MakeLink(p, cat.Lecturer)
	require.NoError(t, err)
	assert.True(t, link.ExpiresAt.After(time.Now()))

	f, err := app.FeedbackSvc.SubmitViaLink(ctx, feedback.LinkSubmission{UID: link.UID, Token: link.Token, Rating: 5})
	require.NoError(t, err)
	assert.Equal(t, feedback.SourceLink, f.Source)
	assert.Equal(t, cat.Lecturer.ID, f.LecturerID)
	assert.Empty(t, f.CreatedBy)

	// signed for someone who is not the project's lecturer
	foreign, err := app.FeedbackSvc.MakeLink(p, otherLect)
	require.NoError(t, err)

	// expired
	feedback.NowFunc = func() time.Time { return time.Now().Add(-app.Conf.FeedbackTokenTimeout - 48*time.Hour) }
	expired, err := app.FeedbackSvc.MakeLink(p, cat.Lecturer)
	feedback.NowFunc = time.Now
	require.NoError(t, err)

	tests := []struct {
		name    string
		sub     feedback.LinkSubmission
		wantErr error
	}{
		{"bad uid", feedback.LinkSubmission{UID: "!!", Token: link.Token, Rating: 3}, feedback.ErrInvalidLink},
		{"bad token", feedback.LinkSubmission{UID: link.UID, Token: "abc-def", Rating: 3}, feedback.ErrInvalidLink},
		{"other lecturer", feedback.LinkSubmission{UID: foreign.UID, Token: foreign.Token, Rating: 3}, feedback.ErrInvalidLink},
		{"expired", feedback.LinkSubmission{UID: expired.UID, Token: expired.Token, Rating: 3}, feedback.ErrLinkExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := app.FeedbackSvc.SubmitViaLink(ctx, tt.sub)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tt.wantErr, vErr.Err)
		})
	}

	// the link verifies up to its reported expiry and not after
	feedback.NowFunc = func() time.Time { return link.ExpiresAt }
	_, err = app.FeedbackSvc.SubmitViaLink(ctx, feedback.LinkSubmission{UID: link.UID, Token: link.Token, Rating: 4})
	assert.NoError(t, err)
	feedback.NowFunc = func() time.Time { return link.ExpiresAt.Add(time.Second) }
	_, err = app.FeedbackSvc.SubmitViaLink(ctx, feedback.LinkSubmission{UID: link.UID, Token: link.Token, Rating: 4})
	feedback.NowFunc = time.Now
	if vErr, ok := err.(*core.ValidationError); assert.True(t, ok, "got %v", err) {
		assert.Equal(t, feedback.ErrLinkExpired, vErr.Err)
	}

	// changing the lecturer's email invalidates the link
	l := cat.Lecturer
	l.Email = "ada@new.test"
	_, err = app.LecturerRepo.UpdateLecturer(ctx, l)
	require.NoError(t, err)
	_, err = app.FeedbackSvc.SubmitViaLink(ctx, feedback.LinkSubmission{UID: link.UID, Token: link.Token, Rating: 5})
	require.Error(t, err)
}
