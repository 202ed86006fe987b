package project

import "github.com/trezcool/vidtrack/core/video"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

var AllStatuses = []Status{StatusNotStarted, StatusInProgress, StatusComplete}

func (s Status) IsValid() bool {
	return s == StatusNotStarted || s == StatusInProgress || s == StatusComplete
}

// DeriveStatus computes a project status from the statuses of its videos.
// Cancelled videos do not count: a project whose videos are all cancelled has not started.
func DeriveStatus(statuses []video.Status) Status {
	var total, completed, planned int
	for _, st := range statuses {
		switch st {
		case video.StatusCancelled:
			continue
		case video.StatusCompleted:
			completed++
		case video.StatusPlanned:
			planned++
		}
		total++
	}
	switch {
	case total == 0:
		return StatusNotStarted
	case completed == total:
		return StatusComplete
	case planned == total:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}
