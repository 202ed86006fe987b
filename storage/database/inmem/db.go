// Package inmemdb keeps every repository in process memory. It backs the tests and the "inmem" engine.
package inmemdb

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/feedback"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/project"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/core/video"
)

type assignmentKey struct {
	projectID string
	staffID   string
}

// DB holds all the tables behind a single lock, so cross-table checks see a consistent state.
type DB struct {
	mutex sync.RWMutex

	staff       map[string]*staff.Staff
	faculties   map[string]*faculty.Faculty
	programs    map[string]*faculty.Program
	terms       map[string]*term.Term
	lecturers   map[string]*lecturer.Lecturer
	projects    map[string]*project.Project
	assignments map[assignmentKey]*project.Assignment
	videos      map[string]*video.Video
	events      []video.StatusEvent
	feedback    map[string]*feedback.Feedback
}

func Open() *DB {
	db := &DB{}
	db.reset()
	return db
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.reset()
}

func (db *DB) reset() {
	db.staff = make(map[string]*staff.Staff)
	db.faculties = make(map[string]*faculty.Faculty)
	db.programs = make(map[string]*faculty.Program)
	db.terms = make(map[string]*term.Term)
	db.lecturers = make(map[string]*lecturer.Lecturer)
	db.projects = make(map[string]*project.Project)
	db.assignments = make(map[assignmentKey]*project.Assignment)
	db.videos = make(map[string]*video.Video)
	db.events = nil
	db.feedback = make(map[string]*feedback.Feedback)
}

func duplicateErr(entity string) error {
	return core.NewValidationError(errors.Errorf("this %s already exists", entity))
}

func excluded(id string, excludedIDs []string) bool {
	for _, ex := range excludedIDs {
		if id == ex {
			return true
		}
	}
	return false
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// sort keys
const nullKey = "\uffff" // NULLs sort last ascending, like postgres

func timeKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000")
}

func timePtrKey(t *time.Time) string {
	if t == nil {
		return nullKey
	}
	return timeKey(*t)
}

func intKey(n int) string {
	return fmt.Sprintf("%020d", n)
}

// sortRows orders list by ordering (or def when empty), then by id. key returns the comparable value of a column.
func sortRows[T any](list []T, ordering []core.DBOrdering, def []core.DBOrdering, key func(T, string) string, id func(T) string) {
	if len(ordering) == 0 {
		ordering = def
	}
	sort.SliceStable(list, func(i, j int) bool {
		for _, ord := range ordering {
			ki, kj := key(list[i], ord.Field), key(list[j], ord.Field)
			if ord.Field == "name" || ord.Field == "title" || ord.Field == "email" {
				ki, kj = strings.ToLower(ki), strings.ToLower(kj)
			}
			if ki == kj {
				continue
			}
			if ord.Ascending {
				return ki < kj
			}
			return ki > kj
		}
		return id(list[i]) < id(list[j])
	})
}

func asc(field string) core.DBOrdering  { return core.DBOrdering{Field: field, Ascending: true} }
func desc(field string) core.DBOrdering { return core.DBOrdering{Field: field} }
