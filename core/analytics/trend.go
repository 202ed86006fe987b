package analytics

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

// Intervals
const (
	Week  Interval = "week"
	Month Interval = "month"
)

const (
	defaultBuckets = 12
	maxBuckets     = 366
)

var (
	ErrInvalidInterval = errors.New("interval must be one of: week, month")
	ErrInvalidWindow   = errors.New("from cannot be after to")
	ErrTooManyBuckets  = errors.Errorf("the window cannot span more than %d buckets", maxBuckets)
)

type Interval string

func (iv Interval) IsValid() bool {
	return iv == Week || iv == Month
}

// Start returns the start of the bucket containing t: Monday 00:00 UTC for weeks,
// the first day of the month 00:00 UTC for months.
func (iv Interval) Start(t time.Time) time.Time {
	d := core.Date(t)
	if iv == Month {
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	offset := (int(d.Weekday()) + 6) % 7 // days since Monday
	return d.AddDate(0, 0, -offset)
}

// Next returns the start of the bucket following the one starting at start.
func (iv Interval) Next(start time.Time) time.Time {
	if iv == Month {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

func (iv Interval) add(start time.Time, n int) time.Time {
	if iv == Month {
		return start.AddDate(0, n, 0)
	}
	return start.AddDate(0, 0, 7*n)
}

type (
	Trend struct {
		Interval Interval  `json:"interval"`
		From     time.Time `json:"from"`
		To       time.Time `json:"to"`
		Buckets  []Bucket  `json:"buckets"`
	}

	Bucket struct {
		Start               time.Time `json:"start"`
		VideosCreated       int       `json:"videos_created"`
		VideosCompleted     int       `json:"videos_completed"`
		ProjectsCompleted   int       `json:"projects_completed"`
		CumulativeCompleted int       `json:"cumulative_completed"`
	}
)

// TrendWindow resolves the buckets to report on. With no bounds it covers the
// last defaultBuckets buckets up to now; a missing bound is derived from the other one.
func TrendWindow(iv Interval, from, to, now time.Time) (time.Time, time.Time, error) {
	if iv == "" {
		iv = Week
	}
	if !iv.IsValid() {
		return time.Time{}, time.Time{}, core.NewValidationError(ErrInvalidInterval, core.FieldError{Field: "interval", Error: ErrInvalidInterval.Error()})
	}
	switch {
	case from.IsZero() && to.IsZero():
		to = iv.Start(now)
		from = iv.add(to, -(defaultBuckets - 1))
	case from.IsZero():
		to = iv.Start(to)
		from = iv.add(to, -(defaultBuckets - 1))
	case to.IsZero():
		from = iv.Start(from)
		to = iv.Start(now)
	default:
		from = iv.Start(from)
		to = iv.Start(to)
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, core.NewValidationError(ErrInvalidWindow, core.FieldError{Field: "from", Error: ErrInvalidWindow.Error()})
	}
	var n int
	for b := from; !b.After(to); b = iv.Next(b) {
		if n++; n > maxBuckets {
			return time.Time{}, time.Time{}, core.NewValidationError(ErrTooManyBuckets, core.FieldError{Field: "to", Error: ErrTooManyBuckets.Error()})
		}
	}
	return from, to, nil
}

// ComputeTrend counts videos created and completed, and projects completed, per bucket.
// The cumulative count includes the videos completed before the window.
func ComputeTrend(iv Interval, from, to, now time.Time, projects []ProjectFact, videos []VideoFact) (Trend, error) {
	if iv == "" {
		iv = Week
	}
	from, to, err := TrendWindow(iv, from, to, now)
	if err != nil {
		return Trend{}, err
	}

	tr := Trend{Interval: iv, From: from, To: to, Buckets: make([]Bucket, 0)}
	index := make(map[int64]int)
	for b := from; !b.After(to); b = iv.Next(b) {
		index[b.Unix()] = len(tr.Buckets)
		tr.Buckets = append(tr.Buckets, Bucket{Start: b})
	}
	bucket := func(t time.Time) (*Bucket, bool) {
		i, ok := index[iv.Start(t).Unix()]
		if !ok {
			return nil, false
		}
		return &tr.Buckets[i], true
	}

	var before int
	for _, vf := range videos {
		if b, ok := bucket(vf.CreatedAt); ok {
			b.VideosCreated++
		}
		if vf.Status != video.StatusCompleted || vf.CompletedAt == nil {
			continue
		}
		if b, ok := bucket(*vf.CompletedAt); ok {
			b.VideosCompleted++
		} else if vf.CompletedAt.Before(from) {
			before++
		}
	}
	for _, pf := range projects {
		if pf.Status != project.StatusComplete || pf.CompletedAt == nil {
			continue
		}
		if b, ok := bucket(*pf.CompletedAt); ok {
			b.ProjectsCompleted++
		}
	}

	cumul := before
	for i := range tr.Buckets {
		cumul += tr.Buckets[i].VideosCompleted
		tr.Buckets[i].CumulativeCompleted = cumul
	}
	return tr, nil
}
