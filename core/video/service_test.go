package video_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
	emailsvc "github.com/trezcool/vidtrack/services/email"
	"github.com/trezcool/vidtrack/testutil"
)

type fixture struct {
	app     *testutil.App
	project project.Project
	manager staff.Staff
	editor  staff.Staff
	viewer  staff.Staff
}

func setup(t *testing.T) fixture {
	logger := testutil.NewLogger()
	app := testutil.NewApp(t, emailsvc.NewConsoleServiceMock(core.NewTestConfig(), logger))
	emailsvc.ResetSentMessages()
	cat := app.SeedCatalog(t)
	return fixture{
		app:     app,
		project: app.NewProject(t, cat, "Algorithms"),
		manager: testutil.CreateStaff(t, app.StaffRepo, "Mary", "mary@vid.test", []string{staff.RoleManager}, true),
		editor:  testutil.CreateStaff(t, app.StaffRepo, "Eddy", "eddy@vid.test", []string{staff.RoleEditor}, true),
		viewer:  testutil.CreateStaff(t, app.StaffRepo, "Vic", "vic@vid.test", []string{staff.RoleViewer}, true),
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	svc := fx.app.VideoSvc

	v1, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "  Intro  ", EditorID: fx.editor.ID})
	require.NoError(t, err)
	assert.Equal(t, "Intro", v1.Title)
	assert.Equal(t, 1, v1.Position)
	assert.Equal(t, video.StatusPlanned, v1.Status)

	v2, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Sorting", DueDate: "2024-05-01"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Position)
	require.NotNil(t, v2.DueDate)
	assert.Equal(t, "2024-05-01", v2.DueDate.Format("2006-01-02"))

	tests := []struct {
		name      string
		projectID string
		data      video.VideoData
		wantField string
	}{
		{"blank title", fx.project.ID, video.VideoData{Title: "   "}, "title"},
		{"bad due date", fx.project.ID, video.VideoData{Title: "x", DueDate: "01/05/2024"}, "due_date"},
		{"unknown editor", fx.project.ID, video.VideoData{Title: "x", EditorID: "nobody"}, "editor_id"},
		{"viewer as editor", fx.project.ID, video.VideoData{Title: "x", EditorID: fx.viewer.ID}, "editor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.projectID, tt.data)
			require.Error(t, err)
			assert.Contains(t, testutil.FieldNames(err), tt.wantField)
		})
	}

	_, err = svc.Create(ctx, "missing", video.VideoData{Title: "x"})
	assert.True(t, core.IsNotFound(err))
}

func TestService_ChangeStatus(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	svc := fx.app.VideoSvc

	v1, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Intro", EditorID: fx.editor.ID})
	require.NoError(t, err)
	v2, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Outro"})
	require.NoError(t, err)

	projectStatus := func() project.Status {
		p, err := fx.app.ProjectSvc.Get(ctx, fx.project.ID)
		require.NoError(t, err)
		return p.Status
	}
	assert.Equal(t, project.StatusNotStarted, projectStatus())

	v1, err = svc.ChangeStatus(ctx, v1, video.StatusChange{Status: video.StatusEditing}, fx.editor)
	require.NoError(t, err)
	assert.Equal(t, video.StatusEditing, v1.Status)
	assert.Nil(t, v1.CompletedAt)
	assert.Equal(t, project.StatusInProgress, projectStatus())

	// same status: no new history entry
	_, err = svc.ChangeStatus(ctx, v1, video.StatusChange{Status: video.StatusEditing}, fx.editor)
	require.NoError(t, err)

	v1, err = svc.ChangeStatus(ctx, v1, video.StatusChange{Status: video.StatusCompleted}, fx.manager)
	require.NoError(t, err)
	require.NotNil(t, v1.CompletedAt)
	assert.Equal(t, project.StatusInProgress, projectStatus())

	_, err = svc.ChangeStatus(ctx, v2, video.StatusChange{Status: video.StatusCancelled}, fx.manager)
	require.NoError(t, err)
	assert.Equal(t, project.StatusComplete, projectStatus())

	// reopening moves the project back
	v1, err = svc.ChangeStatus(ctx, v1, video.StatusChange{Status: video.StatusRevision}, fx.manager)
	require.NoError(t, err)
	assert.Nil(t, v1.CompletedAt)
	assert.Equal(t, project.StatusInProgress, projectStatus())

	history, err := svc.History(ctx, v1.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, video.StatusPlanned, history[0].FromStatus)
	assert.Equal(t, video.StatusEditing, history[0].ToStatus)
	assert.Equal(t, fx.editor.ID, history[0].ChangedBy)
	assert.Equal(t, video.StatusRevision, history[2].ToStatus)

	_, err = svc.ChangeStatus(ctx, v1, video.StatusChange{Status: "published"}, fx.manager)
	require.Error(t, err)
}

func TestService_ChangeStatus_review(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	svc := fx.app.VideoSvc

	v, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Intro"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, v, video.StatusChange{Status: video.StatusReview}, fx.manager)
	require.NoError(t, err)

	sent := emailsvc.LastSentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "ada@uni.test", sent[0].To[0].Address)
	assert.True(t, strings.Contains(sent[0].TextContent, `The video "Intro" of your project "Algorithms"`), sent[0].TextContent)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	fx := setup(t)
	svc := fx.app.VideoSvc

	done, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Done"})
	require.NoError(t, err)
	_, err = svc.ChangeStatus(ctx, done, video.StatusChange{Status: video.StatusCompleted}, fx.manager)
	require.NoError(t, err)
	pending, err := svc.Create(ctx, fx.project.ID, video.VideoData{Title: "Pending"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, pending))
	_, err = svc.Get(ctx, pending.ID)
	assert.True(t, core.IsNotFound(err))

	p, err := fx.app.ProjectSvc.Get(ctx, fx.project.ID)
	require.NoError(t, err)
	assert.Equal(t, project.StatusComplete, p.Status)
	assert.NotNil(t, p.CompletedAt)
}
