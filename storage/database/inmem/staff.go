package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func copyStaff(s staff.Staff) staff.Staff {
	s.Roles = append([]string(nil), s.Roles...)
	s.LastSeenAt = copyTime(s.LastSeenAt)
	return s
}

func staffKey(s staff.Staff, field string) string {
	switch field {
	case "name":
		return s.Name
	case "email":
		return s.Email
	case "created_at":
		return timeKey(s.CreatedAt)
	case "last_seen_at":
		return timePtrKey(s.LastSeenAt)
	}
	return ""
}

func (repo *staffRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.staff {
		if strings.EqualFold(s.Email, email) && !excluded(s.ID, excludedIDs) {
			return staff.ErrEmailExists
		}
	}
	return nil
}

func (repo *staffRepository) CreateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.staff[s.ID]; ok {
		return staff.Staff{}, duplicateErr("staff")
	}
	for _, other := range repo.db.staff {
		if strings.EqualFold(other.Email, s.Email) {
			return staff.Staff{}, duplicateErr("staff")
		}
	}
	s = copyStaff(s)
	repo.db.staff[s.ID] = &s
	return copyStaff(s), nil
}

func (repo *staffRepository) QueryStaff(_ context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	list := make([]staff.Staff, 0, len(repo.db.staff))
	for _, s := range repo.db.staff {
		if filter.Match(*s) {
			list = append(list, copyStaff(*s))
		}
	}
	sortRows(list, ordering, []core.DBOrdering{asc("name")}, staffKey, func(s staff.Staff) string { return s.ID })
	return list, nil
}

func (repo *staffRepository) GetStaff(_ context.Context, id string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.staff[id]; ok {
		return copyStaff(*s), nil
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) GetStaffByEmail(_ context.Context, email string) (staff.Staff, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, s := range repo.db.staff {
		if strings.EqualFold(s.Email, email) {
			return copyStaff(*s), nil
		}
	}
	return staff.Staff{}, staff.ErrNotFound
}

func (repo *staffRepository) UpdateStaff(_ context.Context, s staff.Staff) (staff.Staff, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.staff[s.ID]; !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	for _, other := range repo.db.staff {
		if other.ID != s.ID && strings.EqualFold(other.Email, s.Email) {
			return staff.Staff{}, duplicateErr("staff")
		}
	}
	s = copyStaff(s)
	repo.db.staff[s.ID] = &s
	return copyStaff(s), nil
}

// DeleteStaff removes the members and, like the foreign keys do, their assignments and authorship.
func (repo *staffRepository) DeleteStaff(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.staff[id]; !ok {
			continue
		}
		delete(repo.db.staff, id)
		n++

		for key := range repo.db.assignments {
			if key.staffID == id {
				delete(repo.db.assignments, key)
			}
		}
		for _, v := range repo.db.videos {
			if v.EditorID == id {
				v.EditorID = ""
			}
		}
		for _, p := range repo.db.projects {
			if p.CreatedBy == id {
				p.CreatedBy = ""
			}
		}
		for i := range repo.db.events {
			if repo.db.events[i].ChangedBy == id {
				repo.db.events[i].ChangedBy = ""
			}
		}
		for _, f := range repo.db.feedback {
			if f.CreatedBy == id {
				f.CreatedBy = ""
			}
		}
	}
	return n, nil
}
