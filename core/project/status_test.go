package project

import (
	"testing"
	"time"

	"github.com/trezcool/vidtrack/core/video"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []video.Status
		want     Status
	}{
		{name: "no videos", want: StatusNotStarted},
		{name: "all planned", statuses: []video.Status{video.StatusPlanned, video.StatusPlanned}, want: StatusNotStarted},
		{name: "all cancelled", statuses: []video.Status{video.StatusCancelled, video.StatusCancelled}, want: StatusNotStarted},
		{name: "planned and cancelled", statuses: []video.Status{video.StatusPlanned, video.StatusCancelled}, want: StatusNotStarted},
		{name: "one started", statuses: []video.Status{video.StatusPlanned, video.StatusRecording}, want: StatusInProgress},
		{name: "one completed", statuses: []video.Status{video.StatusPlanned, video.StatusCompleted}, want: StatusInProgress},
		{name: "in review", statuses: []video.Status{video.StatusReview}, want: StatusInProgress},
		{name: "all completed", statuses: []video.Status{video.StatusCompleted, video.StatusCompleted}, want: StatusComplete},
		{name: "completed and cancelled", statuses: []video.Status{video.StatusCompleted, video.StatusCancelled}, want: StatusComplete},
		{name: "revision left", statuses: []video.Status{video.StatusCompleted, video.StatusRevision, video.StatusCancelled}, want: StatusInProgress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatus(tt.statuses); got != tt.want {
				t.Errorf("DeriveStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_applyStatus(t *testing.T) {
	now := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	p := Project{Status: StatusInProgress}
	if !p.applyStatus(StatusComplete, now) {
		t.Fatal("applyStatus(complete) reported no change")
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", p.CompletedAt, now)
	}
	if p.applyStatus(StatusComplete, later) {
		t.Error("applyStatus(complete) on a complete project reported a change")
	}
	if !p.CompletedAt.Equal(now) {
		t.Errorf("CompletedAt moved to %v", p.CompletedAt)
	}
	if !p.applyStatus(StatusInProgress, later) {
		t.Fatal("applyStatus(in_progress) reported no change")
	}
	if p.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", p.CompletedAt)
	}
	if !p.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", p.UpdatedAt, later)
	}
}
