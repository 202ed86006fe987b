package analytics

import (
	"time"

	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/video"
)

var (
	// Wednesday
	fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

	engCS = Scope{
		FacultyID: "fac-eng", FacultyName: "Engineering",
		ProgramID: "prog-cs", ProgramName: "Computer Science",
		TermID: "term-s24", TermName: "Spring 2024",
	}
	artHist = Scope{
		FacultyID: "fac-art", FacultyName: "Arts",
		ProgramID: "prog-hist", ProgramName: "History",
		TermID: "term-s24", TermName: "Spring 2024",
	}
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func at(month time.Month, d, hour int) *time.Time {
	t := time.Date(2024, month, d, hour, 0, 0, 0, time.UTC)
	return &t
}

func withLecturer(s Scope, id, name string) Scope {
	s.LecturerID = id
	s.LecturerName = name
	return s
}

func fixtureProjects() []ProjectFact {
	return []ProjectFact{
		{ProjectID: "p1", Status: project.StatusComplete, CreatedAt: day(time.April, 1), CompletedAt: at(time.May, 7, 10),
			Scope: withLecturer(engCS, "lec-ada", "Ada Lovelace")},
		{ProjectID: "p2", Status: project.StatusInProgress, CreatedAt: day(time.April, 15),
			Scope: withLecturer(engCS, "lec-bob", "Bob Marley")},
		{ProjectID: "p3", Status: project.StatusNotStarted, CreatedAt: day(time.May, 1),
			Scope: withLecturer(artHist, "lec-bob", "Bob Marley")},
	}
}

func fixtureVideos() []VideoFact {
	p1 := withLecturer(engCS, "lec-ada", "Ada Lovelace")
	p2 := withLecturer(engCS, "lec-bob", "Bob Marley")
	p3 := withLecturer(artHist, "lec-bob", "Bob Marley")
	dueMay10, dueMay20, dueMay1 := day(time.May, 10), day(time.May, 20), day(time.May, 1)

	return []VideoFact{
		{VideoID: "v1", ProjectID: "p1", Status: video.StatusCompleted, EditorID: "ed-zoe", EditorName: "Zoe",
			DurationSeconds: 600, CreatedAt: day(time.April, 2), CompletedAt: at(time.April, 20, 9), Scope: p1},
		{VideoID: "v2", ProjectID: "p1", Status: video.StatusCompleted, EditorID: "ed-max", EditorName: "Max",
			DurationSeconds: 300, CreatedAt: day(time.April, 3), CompletedAt: at(time.May, 7, 10), Scope: p1},
		{VideoID: "v3", ProjectID: "p1", Status: video.StatusCancelled,
			CreatedAt: day(time.April, 3), Scope: p1},
		{VideoID: "v4", ProjectID: "p2", Status: video.StatusEditing, EditorID: "ed-zoe", EditorName: "Zoe",
			DurationSeconds: 420, DueDate: &dueMay10, CreatedAt: day(time.April, 16), Scope: p2},
		{VideoID: "v5", ProjectID: "p2", Status: video.StatusReview, EditorID: "ed-zoe", EditorName: "Zoe",
			DurationSeconds: 360, DueDate: &dueMay20, CreatedAt: day(time.April, 16), Scope: p2},
		{VideoID: "v6", ProjectID: "p2", Status: video.StatusCompleted, EditorID: "ed-max", EditorName: "Max",
			DurationSeconds: 240, CreatedAt: day(time.April, 17), CompletedAt: at(time.May, 14, 16), Scope: p2},
		{VideoID: "v7", ProjectID: "p3", Status: video.StatusPlanned,
			DueDate: &dueMay1, CreatedAt: day(time.May, 2), Scope: p3},
	}
}

func fixtureFeedback() []FeedbackFact {
	return []FeedbackFact{
		{FeedbackID: "fb1", ProjectID: "p1", Rating: 5, CreatedAt: day(time.May, 8), Scope: withLecturer(engCS, "lec-ada", "Ada Lovelace")},
		{FeedbackID: "fb2", ProjectID: "p1", Rating: 4, CreatedAt: day(time.May, 9), Scope: withLecturer(engCS, "lec-ada", "Ada Lovelace")},
		{FeedbackID: "fb3", ProjectID: "p2", Rating: 3, CreatedAt: day(time.May, 14), Scope: withLecturer(engCS, "lec-bob", "Bob Marley")},
	}
}
