package echoapi_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
	"github.com/trezcool/vidtrack/testutil"
)

func Test_analyticsApi(t *testing.T) {
	env := setup(t)

	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	viewer := env.createStaff(t, "Vic Viewer", "vic@vid.test", staff.RoleViewer)
	token := getToken(t, viewer)

	p := env.NewProject(t, env.cat, "Algorithms")
	completedAt := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	longAgo := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateVideo(t, env.VideoRepo, video.Video{
		ProjectID: p.ID, Title: "Sorting", Position: 1, EditorID: editor.ID,
		Status: video.StatusCompleted, DurationSeconds: 300, CompletedAt: &completedAt,
	})
	testutil.CreateVideo(t, env.VideoRepo, video.Video{
		ProjectID: p.ID, Title: "Graphs", Position: 2, EditorID: editor.ID,
		Status: video.StatusEditing, DurationSeconds: 600, DueDate: &longAgo,
	})
	testutil.CreateVideo(t, env.VideoRepo, video.Video{ProjectID: p.ID, Title: "Trees", Position: 3})
	for _, rating := range []int{4, 5} {
		_, err := env.FeedbackRepo.CreateFeedback(context.Background(), feedback.Feedback{
			ID:         uuid.New().String(),
			ProjectID:  p.ID,
			LecturerID: env.cat.Lecturer.ID,
			Rating:     rating,
			Source:     feedback.SourceStaff,
			CreatedAt:  time.Now().UTC(),
		})
		require.NoError(t, err)
	}

	t.Run("Overview", func(t *testing.T) {
		var ov analytics.Overview
		env.call(t, http.MethodGet, "/v1/analytics/overview", token, nil, http.StatusOK, &ov)
		assert.Equal(t, 1, ov.Projects.Total)
		assert.Equal(t, 3, ov.Videos.Total)
		assert.Equal(t, 1, ov.Videos.ByStatus[video.StatusCompleted])
		assert.Equal(t, 1, ov.Videos.ByStatus[video.StatusEditing])
		assert.Equal(t, 0, ov.Videos.ByStatus[video.StatusCancelled])
		assert.Equal(t, 33.3, ov.Videos.CompletionPct)
		assert.Equal(t, 900, ov.Videos.DurationSeconds)
		assert.Equal(t, 300, ov.Videos.CompletedDurationSeconds)
		assert.Equal(t, 1, ov.Videos.Overdue)
		assert.Equal(t, 2, ov.Feedback.Count)
		assert.Equal(t, 4.5, ov.Feedback.AverageRating)
	})

	t.Run("Overview of another faculty", func(t *testing.T) {
		var ov analytics.Overview
		env.call(t, http.MethodGet, "/v1/analytics/overview?faculty_id=lol", token, nil, http.StatusOK, &ov)
		assert.Equal(t, 0, ov.Projects.Total)
		assert.Equal(t, 0, ov.Videos.Total)
	})

	t.Run("Breakdown", func(t *testing.T) {
		var stats []analytics.GroupStat
		env.call(t, http.MethodGet, "/v1/analytics/breakdown", token, nil, http.StatusOK, &stats)
		require.Len(t, stats, 1)
		assert.Equal(t, env.cat.Faculty.ID, stats[0].Key)
		assert.Equal(t, 3, stats[0].VideosTotal)
		assert.Equal(t, 1, stats[0].VideosCompleted)
	})

	t.Run("Workload", func(t *testing.T) {
		var loads []analytics.EditorLoad
		env.call(t, http.MethodGet, "/v1/analytics/workload", token, nil, http.StatusOK, &loads)
		require.Len(t, loads, 1)
		assert.Equal(t, editor.ID, loads[0].EditorID)
		assert.Equal(t, editor.Name, loads[0].EditorName)
		assert.Equal(t, 1, loads[0].Active)
		assert.Equal(t, 1, loads[0].Completed)
		assert.Equal(t, 1, loads[0].Overdue)
		assert.Equal(t, 600, loads[0].ActiveDurationSeconds)
	})

	t.Run("Trend", func(t *testing.T) {
		var tr analytics.Trend
		env.call(t, http.MethodGet, "/v1/analytics/trends?interval=week&from=2024-03-04&to=2024-03-24", token, nil, http.StatusOK, &tr)
		assert.Equal(t, analytics.Week, tr.Interval)
		require.Len(t, tr.Buckets, 3)
		assert.Equal(t, "2024-03-04", tr.Buckets[0].Start.Format("2006-01-02"))
		assert.Equal(t, 1, tr.Buckets[1].VideosCompleted)
		assert.Equal(t, 1, tr.Buckets[2].CumulativeCompleted)
	})

	t.Run("Feedback summary", func(t *testing.T) {
		var summary []analytics.LecturerFeedback
		env.call(t, http.MethodGet, "/v1/analytics/feedback", token, nil, http.StatusOK, &summary)
		require.Len(t, summary, 1)
		assert.Equal(t, env.cat.Lecturer.ID, summary[0].LecturerID)
		assert.Equal(t, 2, summary[0].Count)
		assert.Equal(t, 4.5, summary[0].AverageRating)
	})

	runTests(t, env, []httpTest{
		{name: "Auth required", path: "/v1/analytics/overview", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Unknown dimension", path: "/v1/analytics/breakdown?by=bad", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"by": "invalid breakdown dimension"}),
		},
		{
			name: "Unknown interval", path: "/v1/analytics/trends?interval=day", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"interval": "interval must be one of: week, month"}),
		},
		{
			name: "Window upside down", path: "/v1/analytics/trends?from=2024-03-10&to=2024-03-01", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"from": "from cannot be after to"}),
		},
		{
			name: "Bad date", path: "/v1/analytics/overview?from=yesterday", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"from": "must be a date formatted as YYYY-MM-DD"}),
		},
		{name: "No feedback", path: "/v1/analytics/feedback?lecturer_id=lol", token: token, wantData: marchallList(t)},
	})
}
