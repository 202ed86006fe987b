package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
	emailsvc "github.com/trezcool/vidtrack/services/email"
	"github.com/trezcool/vidtrack/testutil"
)

func Test_feedbackApi(t *testing.T) {
	env := setup(t)

	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	viewer := env.createStaff(t, "Vic Viewer", "vic@vid.test", staff.RoleViewer)
	token := getToken(t, manager)
	editorToken := getToken(t, editor)

	p := env.NewProject(t, env.cat, "Algorithms")
	other := env.NewProject(t, env.cat, "Compilers")
	v := testutil.CreateVideo(t, env.VideoRepo, video.Video{ProjectID: p.ID, Title: "Sorting", Position: 1, EditorID: editor.ID})
	otherVideo := testutil.CreateVideo(t, env.VideoRepo, video.Video{ProjectID: other.ID, Title: "Parsing", Position: 1})

	var staffFeedback feedback.Feedback
	t.Run("Editors record feedback", func(t *testing.T) {
		body := marchallObj(t, feedback.FeedbackData{ProjectID: p.ID, VideoID: v.ID, Rating: 4, Comment: "Great **pacing**"})
		env.call(t, http.MethodPost, "/v1/feedback", editorToken, body, http.StatusCreated, &staffFeedback)
		assert.Equal(t, p.ID, staffFeedback.ProjectID)
		assert.Equal(t, env.cat.Lecturer.ID, staffFeedback.LecturerID)
		assert.Equal(t, feedback.SourceStaff, staffFeedback.Source)
		assert.Equal(t, editor.ID, staffFeedback.CreatedBy)
		assert.Contains(t, staffFeedback.CommentHTML, "<strong>pacing</strong>")
	})

	runTests(t, env, []httpTest{
		{
			name: "Viewers cannot record feedback", method: http.MethodPost, path: "/v1/feedback", token: getToken(t, viewer),
			body:     marchallObj(t, feedback.FeedbackData{ProjectID: p.ID, Rating: 4}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Rating out of range", method: http.MethodPost, path: "/v1/feedback", token: editorToken,
			body:     marchallObj(t, feedback.FeedbackData{ProjectID: p.ID, Rating: 6}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"rating": "rating must be between 1 and 5"}),
		},
		{
			name: "Video of another project", method: http.MethodPost, path: "/v1/feedback", token: editorToken,
			body:     marchallObj(t, feedback.FeedbackData{ProjectID: p.ID, VideoID: otherVideo.ID, Rating: 3}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"video_id": "this video does not belong to the project"}),
		},
		{
			name: "Unknown project", method: http.MethodPost, path: "/v1/feedback", token: editorToken,
			body:     marchallObj(t, feedback.FeedbackData{ProjectID: "lol", Rating: 3}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"project_id": "project not found"}),
		},
		{name: "Retrieve", path: "/v1/feedback/" + staffFeedback.ID, token: getToken(t, viewer), wantData: marchallObj(t, staffFeedback)},
		{
			name: "Unknown", path: "/v1/feedback/lol", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "feedback not found"}),
		},
		{name: "Query by project", path: "/v1/feedback?project_id=" + other.ID, token: token, wantData: marchallList(t)},
		{
			name: "Editors cannot make links", method: http.MethodPost, path: "/v1/projects/" + p.ID + "/feedback-link", token: editorToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
	})

	var link feedback.Link
	t.Run("Managers make links", func(t *testing.T) {
		env.call(t, http.MethodPost, "/v1/projects/"+p.ID+"/feedback-link", token, nil, http.StatusCreated, &link)
		assert.NotEmpty(t, link.UID)
		assert.NotEmpty(t, link.Token)
	})

	t.Run("Lecturers submit through the link", func(t *testing.T) {
		body := marchallObj(t, feedback.LinkSubmission{UID: link.UID, Token: link.Token, VideoID: v.ID, Rating: 5, Comment: "Thanks!"})
		req, rec := newRequest(http.MethodPost, "/v1/public/feedback", body)
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got feedback.Feedback
		unmarshal(t, rec, &got)
		assert.Equal(t, feedback.SourceLink, got.Source)
		assert.Equal(t, env.cat.Lecturer.ID, got.LecturerID)
		assert.Empty(t, got.CreatedBy)

		var list []feedback.Feedback
		env.call(t, http.MethodGet, "/v1/projects/"+p.ID+"/feedback", token, nil, http.StatusOK, &list)
		assert.Len(t, list, 2)
	})

	runTests(t, env, []httpTest{
		{
			name: "Tampered token", method: http.MethodPost, path: "/v1/public/feedback",
			body:     marchallObj(t, feedback.LinkSubmission{UID: link.UID, Token: link.Token + "x", Rating: 5}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid feedback link"}),
		},
		{
			name: "Link of another project", method: http.MethodPost, path: "/v1/public/feedback",
			body:     marchallObj(t, feedback.LinkSubmission{UID: feedback.EncodeUID(other.ID, env.cat.Lecturer.ID), Token: link.Token, Rating: 5}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid feedback link"}),
		},
		{
			name: "Missing token", method: http.MethodPost, path: "/v1/public/feedback",
			body:     marchallObj(t, feedback.LinkSubmission{UID: link.UID, Rating: 5}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"token": "this field is required"}),
		},
		{
			name: "Editors cannot delete", method: http.MethodDelete, path: "/v1/feedback/" + staffFeedback.ID, token: editorToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Delete", method: http.MethodDelete, path: "/v1/feedback/" + staffFeedback.ID, token: token, wantCode: http.StatusNoContent},
		{name: "Deleted", path: "/v1/feedback/" + staffFeedback.ID, token: token, wantCode: http.StatusNotFound},
	})
}

func Test_feedbackApi_reviewRequest(t *testing.T) {
	env := setup(t)

	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	p := env.NewProject(t, env.cat, "Algorithms")
	v := testutil.CreateVideo(t, env.VideoRepo, video.Video{ProjectID: p.ID, Title: "Sorting", Position: 1, EditorID: editor.ID})

	body := marchallObj(t, video.StatusChange{Status: video.StatusReview})
	env.call(t, http.MethodPatch, "/v1/videos/"+v.ID+"/status", getToken(t, editor), body, http.StatusOK, nil)

	msgs := emailsvc.LastSentMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "feedback_request", msgs[0].TemplateName)
	assert.Equal(t, env.cat.Lecturer.Email, msgs[0].To[0].Address)
}
