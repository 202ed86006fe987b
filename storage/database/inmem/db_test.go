package inmemdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/analytics"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/video"
	"github.com/trezcool/vidtrack/storage/database/inmem"
	"github.com/trezcool/vidtrack/testutil"
)

func TestFacultyRepository_references(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewFacultyRepository(db)

	f := testutil.CreateFaculty(t, repo, "Engineering", "ENG")
	p := testutil.CreateProgram(t, repo, f.ID, "Computer Science", "CS")

	_, err := repo.CreateFaculty(ctx, faculty.Faculty{ID: "dup", Name: "Other", Code: "ENG"})
	_, isValidation := err.(*core.ValidationError)
	assert.True(t, isValidation, "got %v", err)

	err = repo.DeleteFaculty(ctx, f.ID)
	_, isConflict := err.(*core.ConflictError)
	assert.True(t, isConflict, "got %v", err)

	require.NoError(t, repo.DeleteProgram(ctx, p.ID))
	require.NoError(t, repo.DeleteFaculty(ctx, f.ID))
	assert.True(t, core.IsNotFound(repo.DeleteFaculty(ctx, f.ID)))
}

func TestStaffRepository_ordering(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewStaffRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bob := testutil.CreateStaff(t, repo, "bob", "bob@vid.test", []string{staff.RoleEditor}, true, base)
	amy := testutil.CreateStaff(t, repo, "Amy", "amy@vid.test", []string{staff.RoleManager}, true, base.Add(time.Hour))
	cid := testutil.CreateStaff(t, repo, "Cid", "cid@vid.test", []string{staff.RoleViewer}, false, base.Add(2*time.Hour))

	names := func(list []staff.Staff) []string {
		res := make([]string, 0, len(list))
		for _, s := range list {
			res = append(res, s.Name)
		}
		return res
	}

	list, err := repo.QueryStaff(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{amy.Name, bob.Name, cid.Name}, names(list))

	list, err = repo.QueryStaff(ctx, nil, []core.DBOrdering{{Field: "created_at"}})
	require.NoError(t, err)
	assert.Equal(t, []string{cid.Name, amy.Name, bob.Name}, names(list))

	approved := true
	list, err = repo.QueryStaff(ctx, &staff.QueryFilter{IsApproved: &approved, Roles: []string{staff.RoleEditor}}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{bob.Name}, names(list))
}

func TestDeleteStaff_releasesReferences(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t, nil)
	cat := app.SeedCatalog(t)
	p := app.NewProject(t, cat, "Algorithms")
	editor := testutil.CreateStaff(t, app.StaffRepo, "Eddy", "eddy@vid.test", []string{staff.RoleEditor}, true)
	v := testutil.CreateVideo(t, app.VideoRepo, video.Video{ProjectID: p.ID, Title: "Intro", EditorID: editor.ID})
	_, err := app.ProjectRepo.SaveAssignment(ctx, testAssignment(p.ID, editor.ID))
	require.NoError(t, err)

	n, err := app.StaffRepo.DeleteStaff(ctx, editor.ID, "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, err = app.VideoRepo.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, v.EditorID)
	list, err := app.ProjectRepo.QueryAssignments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyticsSource(t *testing.T) {
	ctx := context.Background()
	app := testutil.NewApp(t, nil)
	cat := app.SeedCatalog(t)
	p1 := app.NewProject(t, cat, "Algorithms")
	p2 := app.NewProject(t, cat, "Databases")
	editor := testutil.CreateStaff(t, app.StaffRepo, "Eddy", "eddy@vid.test", []string{staff.RoleEditor}, true)
	testutil.CreateVideo(t, app.VideoRepo, video.Video{ProjectID: p1.ID, Title: "Intro", EditorID: editor.ID})
	testutil.CreateVideo(t, app.VideoRepo, video.Video{ProjectID: p2.ID, Title: "SQL"})
	_, err := app.FeedbackRepo.CreateFeedback(ctx, feedback.Feedback{
		ID: "fb1", ProjectID: p2.ID, LecturerID: cat.Lecturer.ID, Rating: 4, Source: feedback.SourceStaff, CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	src := inmemdb.NewAnalyticsSource(app.DB)

	videos, err := src.VideoFacts(ctx, analytics.Filter{EditorID: editor.ID})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Eddy", videos[0].EditorName)
	assert.Equal(t, cat.Faculty.ID, videos[0].FacultyID)
	assert.Equal(t, "Engineering", videos[0].FacultyName)
	assert.Equal(t, "Spring 2024", videos[0].TermName)

	projects, err := src.ProjectFacts(ctx, analytics.Filter{EditorID: editor.ID})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, p1.ID, projects[0].ProjectID)

	projects, err = src.ProjectFacts(ctx, analytics.Filter{FacultyID: "other"})
	require.NoError(t, err)
	assert.Empty(t, projects)

	fb, err := src.FeedbackFacts(ctx, analytics.Filter{LecturerID: cat.Lecturer.ID})
	require.NoError(t, err)
	require.Len(t, fb, 1)
	assert.Equal(t, "Ada Lovelace", fb[0].LecturerName)
}

func testAssignment(projectID, staffID string) project.Assignment {
	return project.Assignment{ProjectID: projectID, StaffID: staffID, Role: project.RoleEditor, AssignedAt: time.Now()}
}
