package analytics

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceMock struct {
	err   error
	calls int32
}

func (s *sourceMock) ProjectFacts(_ context.Context, f Filter) ([]ProjectFact, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	editors := make(map[string]bool)
	for _, vf := range fixtureVideos() {
		if vf.EditorID == f.EditorID {
			editors[vf.ProjectID] = true
		}
	}
	var list []ProjectFact
	for _, pf := range fixtureProjects() {
		if f.MatchProject(pf, editors[pf.ProjectID]) {
			list = append(list, pf)
		}
	}
	return list, nil
}

func (s *sourceMock) VideoFacts(_ context.Context, f Filter) ([]VideoFact, error) {
	atomic.AddInt32(&s.calls, 1)
	var list []VideoFact
	for _, vf := range fixtureVideos() {
		if f.MatchVideo(vf) {
			list = append(list, vf)
		}
	}
	return list, nil
}

func (s *sourceMock) FeedbackFacts(_ context.Context, f Filter) ([]FeedbackFact, error) {
	atomic.AddInt32(&s.calls, 1)
	var list []FeedbackFact
	for _, ff := range fixtureFeedback() {
		if f.MatchFeedback(ff) {
			list = append(list, ff)
		}
	}
	return list, nil
}

func TestService_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("filtered by faculty", func(t *testing.T) {
		src := &sourceMock{}
		svc := NewService(src)
		ov, err := svc.Overview(ctx, Filter{FacultyID: "fac-art"}, fixedNow)
		require.NoError(t, err)
		assert.EqualValues(t, 3, src.calls)
		assert.Equal(t, 1, ov.Projects.Total)
		assert.Equal(t, 1, ov.Videos.Total)
		assert.Equal(t, 1, ov.Videos.Overdue)
		assert.Equal(t, 0, ov.Feedback.Count)
	})

	t.Run("filtered by editor", func(t *testing.T) {
		svc := NewService(&sourceMock{})
		ov, err := svc.Overview(ctx, Filter{EditorID: "ed-max"}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, 2, ov.Projects.Total)
		assert.Equal(t, 2, ov.Videos.Total)
		assert.Equal(t, float64(100), ov.Videos.CompletionPct)
	})

	t.Run("filtered by dates", func(t *testing.T) {
		svc := NewService(&sourceMock{})
		ov, err := svc.Overview(ctx, Filter{From: day(5, 1), To: day(5, 31)}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, 1, ov.Projects.Total)
		assert.Equal(t, 1, ov.Videos.Total)
		assert.Equal(t, 3, ov.Feedback.Count)
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("boom")
		svc := NewService(&sourceMock{err: boom})
		_, err := svc.Overview(ctx, Filter{}, fixedNow)
		assert.True(t, errors.Is(err, boom), "error = %v", err)
	})
}

func TestService_Breakdown(t *testing.T) {
	src := &sourceMock{}
	svc := NewService(src)

	_, err := svc.Breakdown(context.Background(), Filter{}, "nope")
	require.Error(t, err)
	assert.EqualValues(t, 0, src.calls, "invalid dimensions should not hit the source")

	stats, err := svc.Breakdown(context.Background(), Filter{LecturerID: "lec-bob"}, ByProgram)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Computer Science", stats[0].Label)
	assert.Equal(t, "History", stats[1].Label)
}

func TestService_Trend(t *testing.T) {
	svc := NewService(&sourceMock{})

	// the filter dates would exclude the videos created in april otherwise
	tr, err := svc.Trend(context.Background(), Filter{From: day(5, 1)}, Month, day(4, 1), day(5, 31), fixedNow)
	require.NoError(t, err)
	require.Len(t, tr.Buckets, 2)
	assert.Equal(t, 6, tr.Buckets[0].VideosCreated)

	_, err = svc.Trend(context.Background(), Filter{}, "year", day(1, 1), day(5, 1), fixedNow)
	assert.Error(t, err)
}

func TestService_FeedbackSummary(t *testing.T) {
	svc := NewService(&sourceMock{})
	list, err := svc.FeedbackSummary(context.Background(), Filter{LecturerID: "lec-ada"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 4.5, list[0].AverageRating)
}
