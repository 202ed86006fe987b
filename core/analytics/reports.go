package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

var ErrInvalidDimension = errors.New("invalid breakdown dimension")

type (
	Overview struct {
		Projects ProjectTotals  `json:"projects"`
		Videos   VideoTotals    `json:"videos"`
		Feedback FeedbackTotals `json:"feedback"`
	}

	ProjectTotals struct {
		Total         int                    `json:"total"`
		ByStatus      map[project.Status]int `json:"by_status"`
		CompletionPct float64                `json:"completion_pct"`
	}

	VideoTotals struct {
		Total                    int                  `json:"total"`
		ByStatus                 map[video.Status]int `json:"by_status"`
		CompletionPct            float64              `json:"completion_pct"`
		DurationSeconds          int                  `json:"duration_seconds"`
		CompletedDurationSeconds int                  `json:"completed_duration_seconds"`
		Overdue                  int                  `json:"overdue"`
	}

	FeedbackTotals struct {
		Count         int     `json:"count"`
		AverageRating float64 `json:"average_rating"`
	}

	GroupStat struct {
		Key              string  `json:"key"`
		Label            string  `json:"label"`
		ProjectsTotal    int     `json:"projects_total"`
		ProjectsComplete int     `json:"projects_complete"`
		VideosTotal      int     `json:"videos_total"`
		VideosCompleted  int     `json:"videos_completed"`
		VideosCancelled  int     `json:"videos_cancelled"`
		CompletionPct    float64 `json:"completion_pct"`
	}

	EditorLoad struct {
		EditorID                 string `json:"editor_id"`
		EditorName               string `json:"editor_name"`
		Active                   int    `json:"active"`
		InReview                 int    `json:"in_review"`
		Completed                int    `json:"completed"`
		Overdue                  int    `json:"overdue"`
		ActiveDurationSeconds    int    `json:"active_duration_seconds"`
		CompletedDurationSeconds int    `json:"completed_duration_seconds"`
	}

	LecturerFeedback struct {
		LecturerID    string  `json:"lecturer_id"`
		LecturerName  string  `json:"lecturer_name"`
		Count         int     `json:"count"`
		AverageRating float64 `json:"average_rating"`
	}
)

// CompletionPct returns the share of completed among the videos that were not cancelled,
// as a percentage rounded to one decimal. It is 0 when nothing is left to complete.
func CompletionPct(completed, total, cancelled int) float64 {
	denom := total - cancelled
	if denom <= 0 {
		return 0
	}
	return round(float64(completed)/float64(denom)*100, 1)
}

func average(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return round(float64(sum)/float64(count), 2)
}

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}

func ComputeOverview(projects []ProjectFact, videos []VideoFact, feedback []FeedbackFact, now time.Time) Overview {
	ov := Overview{
		Projects: ProjectTotals{ByStatus: make(map[project.Status]int, len(project.AllStatuses))},
		Videos:   VideoTotals{ByStatus: make(map[video.Status]int, len(video.AllStatuses))},
	}
	for _, st := range project.AllStatuses {
		ov.Projects.ByStatus[st] = 0
	}
	for _, st := range video.AllStatuses {
		ov.Videos.ByStatus[st] = 0
	}

	for _, pf := range projects {
		ov.Projects.Total++
		ov.Projects.ByStatus[pf.Status]++
	}
	ov.Projects.CompletionPct = CompletionPct(ov.Projects.ByStatus[project.StatusComplete], ov.Projects.Total, 0)

	today := core.Date(now)
	for _, vf := range videos {
		ov.Videos.Total++
		ov.Videos.ByStatus[vf.Status]++
		ov.Videos.DurationSeconds += vf.DurationSeconds
		if vf.Status == video.StatusCompleted {
			ov.Videos.CompletedDurationSeconds += vf.DurationSeconds
		}
		if isOverdue(vf, today) {
			ov.Videos.Overdue++
		}
	}
	ov.Videos.CompletionPct = CompletionPct(
		ov.Videos.ByStatus[video.StatusCompleted],
		ov.Videos.Total,
		ov.Videos.ByStatus[video.StatusCancelled],
	)

	var sum int
	for _, ff := range feedback {
		ov.Feedback.Count++
		sum += ff.Rating
	}
	ov.Feedback.AverageRating = average(sum, ov.Feedback.Count)
	return ov
}

func isOverdue(vf VideoFact, today time.Time) bool {
	return !vf.Status.IsTerminal() && vf.DueDate != nil && vf.DueDate.Before(today)
}

// key returns the id and label s is grouped under for dim.
func (s Scope) key(dim Dimension) (string, string) {
	switch dim {
	case ByFaculty:
		return s.FacultyID, s.FacultyName
	case ByProgram:
		return s.ProgramID, s.ProgramName
	case ByLecturer:
		return s.LecturerID, s.LecturerName
	case ByTerm:
		return s.TermID, s.TermName
	}
	return "", ""
}

// ComputeBreakdown groups projects and videos along dim.
// Along ByEditor a project counts for every editor who has a video in it.
func ComputeBreakdown(dim Dimension, projects []ProjectFact, videos []VideoFact) ([]GroupStat, error) {
	if !dim.IsValid() {
		return nil, core.NewValidationError(ErrInvalidDimension, core.FieldError{Field: "by", Error: ErrInvalidDimension.Error()})
	}

	groups := make(map[string]*GroupStat)
	group := func(key, label string) *GroupStat {
		g, ok := groups[key]
		if !ok {
			if key == "" && label == "" {
				label = unassignedLabel
			}
			g = &GroupStat{Key: key, Label: label}
			groups[key] = g
		}
		return g
	}

	if dim == ByEditor {
		statuses := make(map[string]project.Status, len(projects))
		for _, pf := range projects {
			statuses[pf.ProjectID] = pf.Status
		}
		seen := make(map[[2]string]bool)
		for _, vf := range videos {
			g := group(vf.EditorID, vf.EditorName)
			countVideo(g, vf)
			pk := [2]string{vf.EditorID, vf.ProjectID}
			if seen[pk] {
				continue
			}
			seen[pk] = true
			g.ProjectsTotal++
			if statuses[vf.ProjectID] == project.StatusComplete {
				g.ProjectsComplete++
			}
		}
	} else {
		for _, pf := range projects {
			g := group(pf.Scope.key(dim))
			g.ProjectsTotal++
			if pf.Status == project.StatusComplete {
				g.ProjectsComplete++
			}
		}
		for _, vf := range videos {
			countVideo(group(vf.Scope.key(dim)), vf)
		}
	}

	stats := make([]GroupStat, 0, len(groups))
	for _, g := range groups {
		g.CompletionPct = CompletionPct(g.VideosCompleted, g.VideosTotal, g.VideosCancelled)
		stats = append(stats, *g)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Label != stats[j].Label {
			return stats[i].Label < stats[j].Label
		}
		return stats[i].Key < stats[j].Key
	})
	return stats, nil
}

func countVideo(g *GroupStat, vf VideoFact) {
	g.VideosTotal++
	switch vf.Status {
	case video.StatusCompleted:
		g.VideosCompleted++
	case video.StatusCancelled:
		g.VideosCancelled++
	}
}

// ComputeWorkload summarises the videos of every editor. Videos without an editor are left out.
func ComputeWorkload(videos []VideoFact, now time.Time) []EditorLoad {
	today := core.Date(now)
	loads := make(map[string]*EditorLoad)
	for _, vf := range videos {
		if vf.EditorID == "" {
			continue
		}
		l, ok := loads[vf.EditorID]
		if !ok {
			l = &EditorLoad{EditorID: vf.EditorID, EditorName: vf.EditorName}
			loads[vf.EditorID] = l
		}
		switch {
		case vf.Status == video.StatusCompleted:
			l.Completed++
			l.CompletedDurationSeconds += vf.DurationSeconds
		case !vf.Status.IsTerminal():
			l.Active++
			l.ActiveDurationSeconds += vf.DurationSeconds
			if vf.Status == video.StatusReview {
				l.InReview++
			}
			if isOverdue(vf, today) {
				l.Overdue++
			}
		}
	}

	list := make([]EditorLoad, 0, len(loads))
	for _, l := range loads {
		list = append(list, *l)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Active != list[j].Active {
			return list[i].Active > list[j].Active
		}
		if list[i].EditorName != list[j].EditorName {
			return list[i].EditorName < list[j].EditorName
		}
		return list[i].EditorID < list[j].EditorID
	})
	return list
}

// ComputeFeedbackSummary returns the number of feedback entries and the average rating per lecturer.
func ComputeFeedbackSummary(feedback []FeedbackFact) []LecturerFeedback {
	type acc struct {
		LecturerFeedback
		sum int
	}
	accs := make(map[string]*acc)
	for _, ff := range feedback {
		a, ok := accs[ff.LecturerID]
		if !ok {
			a = &acc{LecturerFeedback: LecturerFeedback{LecturerID: ff.LecturerID, LecturerName: ff.LecturerName}}
			accs[ff.LecturerID] = a
		}
		a.Count++
		a.sum += ff.Rating
	}

	list := make([]LecturerFeedback, 0, len(accs))
	for _, a := range accs {
		a.AverageRating = average(a.sum, a.Count)
		list = append(list, a.LecturerFeedback)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LecturerName != list[j].LecturerName {
			return list[i].LecturerName < list[j].LecturerName
		}
		return list[i].LecturerID < list[j].LecturerID
	})
	return list
}
