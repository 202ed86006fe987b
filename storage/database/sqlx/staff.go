package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/staff"
)

const staffColumns = "id, name, email, roles, is_active, is_approved, created_at, updated_at, last_seen_at"

type staffRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Email      string         `db:"email"`
	Roles      pq.StringArray `db:"roles"`
	IsActive   bool           `db:"is_active"`
	IsApproved bool           `db:"is_approved"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
	LastSeenAt null.Time      `db:"last_seen_at"`
}

func toStaffRow(s staff.Staff) staffRow {
	return staffRow{
		ID:         s.ID,
		Name:       s.Name,
		Email:      s.Email,
		Roles:      pq.StringArray(s.Roles),
		IsActive:   s.IsActive,
		IsApproved: s.IsApproved,
		CreatedAt:  s.CreatedAt.UTC(),
		UpdatedAt:  s.UpdatedAt.UTC(),
		LastSeenAt: null.TimeFromPtr(s.LastSeenAt),
	}
}

func (r staffRow) toStaff() staff.Staff {
	roles := []string(r.Roles)
	if roles == nil {
		roles = []string{}
	}
	return staff.Staff{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email,
		Roles:      roles,
		IsActive:   r.IsActive,
		IsApproved: r.IsApproved,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
		LastSeenAt: r.LastSeenAt.Ptr(),
	}
}

type staffRepository struct {
	db *sqlx.DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *sqlx.DB) staff.Repository {
	return &staffRepository{db: db}
}

func (repo staffRepository) trap(err error, msg string) error {
	return trapErr(err, staff.ErrNotFound, "staff", msg)
}

func (repo staffRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	w := &where{}
	w.add("LOWER(email) = LOWER(?)", email)
	if len(excludedIDs) > 0 {
		w.add("NOT (id = ANY(?))", pq.StringArray(excludedIDs))
	}
	found, err := exists(ctx, repo.db, "SELECT 1 FROM staff"+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "checking staff email")
	}
	if found {
		return staff.ErrEmailExists
	}
	return nil
}

func (repo staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := `INSERT INTO staff (` + staffColumns + `)
		VALUES (:id, :name, :email, :roles, :is_active, :is_approved, :created_at, :updated_at, :last_seen_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toStaffRow(s)); err != nil {
		return staff.Staff{}, repo.trap(err, "inserting staff")
	}
	return s, nil
}

func (repo staffRepository) QueryStaff(ctx context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	w := &where{}
	if filter != nil {
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			w.add("(name ILIKE ? OR email ILIKE ?)", val, val)
		}
		// staff with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			prefixes := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				prefixes = append(prefixes, role+"%")
			}
			w.add("EXISTS (SELECT 1 FROM UNNEST(roles) staff_role WHERE staff_role LIKE ANY(?))", pq.StringArray(prefixes))
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
		if filter.IsApproved != nil {
			w.add("is_approved = ?", *filter.IsApproved)
		}
	}
	q := "SELECT " + staffColumns + " FROM staff" + w.String() + " ORDER BY " + core.OrderBy(ordering, "name ASC, id ASC")

	var rows []staffRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	list := make([]staff.Staff, 0, len(rows))
	for _, r := range rows {
		list = append(list, r.toStaff())
	}
	return list, nil
}

func (repo staffRepository) get(ctx context.Context, cond string, arg interface{}) (staff.Staff, error) {
	var r staffRow
	q := repo.db.Rebind("SELECT " + staffColumns + " FROM staff WHERE " + cond)
	if err := repo.db.GetContext(ctx, &r, q, arg); err != nil {
		return staff.Staff{}, repo.trap(err, "finding staff")
	}
	return r.toStaff(), nil
}

func (repo staffRepository) GetStaff(ctx context.Context, id string) (staff.Staff, error) {
	return repo.get(ctx, "id = ?", id)
}

func (repo staffRepository) GetStaffByEmail(ctx context.Context, email string) (staff.Staff, error) {
	return repo.get(ctx, "LOWER(email) = LOWER(?)", email)
}

func (repo staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	q := `UPDATE staff SET name = :name, email = :email, roles = :roles, is_active = :is_active,
		is_approved = :is_approved, updated_at = :updated_at, last_seen_at = :last_seen_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toStaffRow(s))
	if err != nil {
		return staff.Staff{}, repo.trap(err, "updating staff")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, nil
}

func (repo staffRepository) DeleteStaff(ctx context.Context, ids ...string) (int, error) {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM staff WHERE id = ANY($1)", pq.StringArray(ids))
	if err != nil {
		return 0, repo.trap(err, "deleting staff")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting staff")
	}
	return int(n), nil
}
