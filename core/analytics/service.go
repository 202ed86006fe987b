package analytics

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type (
	// Source loads the facts matching a Filter.
	Source interface {
		ProjectFacts(ctx context.Context, f Filter) ([]ProjectFact, error)
		VideoFacts(ctx context.Context, f Filter) ([]VideoFact, error)
		FeedbackFacts(ctx context.Context, f Filter) ([]FeedbackFact, error)
	}

	Service struct {
		source Source
	}

	facts struct {
		projects []ProjectFact
		videos   []VideoFact
		feedback []FeedbackFact
	}
)

// what to load
const (
	loadProjects = 1 << iota
	loadVideos
	loadFeedback
)

func NewService(source Source) *Service {
	return &Service{source: source}
}

// load fetches the requested facts concurrently.
func (svc *Service) load(ctx context.Context, f Filter, what int) (facts, error) {
	var fs facts
	g, ctx := errgroup.WithContext(ctx)
	if what&loadProjects != 0 {
		g.Go(func() (err error) {
			fs.projects, err = svc.source.ProjectFacts(ctx, f)
			return errors.Wrap(err, "loading project facts")
		})
	}
	if what&loadVideos != 0 {
		g.Go(func() (err error) {
			fs.videos, err = svc.source.VideoFacts(ctx, f)
			return errors.Wrap(err, "loading video facts")
		})
	}
	if what&loadFeedback != 0 {
		g.Go(func() (err error) {
			fs.feedback, err = svc.source.FeedbackFacts(ctx, f)
			return errors.Wrap(err, "loading feedback facts")
		})
	}
	if err := g.Wait(); err != nil {
		return facts{}, err
	}
	return fs, nil
}

func (svc *Service) Overview(ctx context.Context, f Filter, now time.Time) (Overview, error) {
	fs, err := svc.load(ctx, f, loadProjects|loadVideos|loadFeedback)
	if err != nil {
		return Overview{}, err
	}
	return ComputeOverview(fs.projects, fs.videos, fs.feedback, now), nil
}

func (svc *Service) Breakdown(ctx context.Context, f Filter, dim Dimension) ([]GroupStat, error) {
	if !dim.IsValid() {
		return ComputeBreakdown(dim, nil, nil)
	}
	fs, err := svc.load(ctx, f, loadProjects|loadVideos)
	if err != nil {
		return nil, err
	}
	return ComputeBreakdown(dim, fs.projects, fs.videos)
}

func (svc *Service) Workload(ctx context.Context, f Filter, now time.Time) ([]EditorLoad, error) {
	fs, err := svc.load(ctx, f, loadVideos)
	if err != nil {
		return nil, err
	}
	return ComputeWorkload(fs.videos, now), nil
}

// Trend buckets activity between from and to. The creation dates of the filter are ignored.
func (svc *Service) Trend(ctx context.Context, f Filter, iv Interval, from, to, now time.Time) (Trend, error) {
	if _, _, err := TrendWindow(iv, from, to, now); err != nil {
		return Trend{}, err
	}
	f.From, f.To = time.Time{}, time.Time{}
	fs, err := svc.load(ctx, f, loadProjects|loadVideos)
	if err != nil {
		return Trend{}, err
	}
	return ComputeTrend(iv, from, to, now, fs.projects, fs.videos)
}

func (svc *Service) FeedbackSummary(ctx context.Context, f Filter) ([]LecturerFeedback, error) {
	fs, err := svc.load(ctx, f, loadFeedback)
	if err != nil {
		return nil, err
	}
	return ComputeFeedbackSummary(fs.feedback), nil
}
