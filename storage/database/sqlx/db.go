// Package sqlxrepos implements the repositories on top of jmoiron/sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/vidtrack/core"
)

// postgres error codes
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// pgCode returns the postgres error code of err for both the lib/pq and the pgx drivers.
func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// trapErr maps driver errors to core errors: no rows to notFound, foreign key violations to conflicts
// and unique violations to validation errors.
func trapErr(err error, notFound error, entity, msg string) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return notFound
	}
	switch pgCode(err) {
	case codeForeignKeyViolation:
		return core.NewConflictError(entity)
	case codeUniqueViolation:
		return core.NewValidationError(errors.Errorf("this %s already exists", entity))
	}
	return errors.Wrap(err, msg)
}

// validID reports whether id can be compared to a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

// where accumulates AND-ed conditions written with "?" placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

// in adds a "col IN (...)" condition.
func (w *where) in(col string, vals []string) {
	if len(vals) == 0 {
		w.add("FALSE")
		return
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(vals)), ", ")
	args := make([]interface{}, 0, len(vals))
	for _, v := range vals {
		args = append(args, v)
	}
	w.add(fmt.Sprintf("%s IN (%s)", col, marks), args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func exists(ctx context.Context, db *sqlx.DB, q string, args ...interface{}) (bool, error) {
	var found bool
	err := db.GetContext(ctx, &found, db.Rebind("SELECT EXISTS ("+q+")"), args...)
	return found, err
}

// deleteByID deletes the row of table with the given id; a missing row returns notFound.
func deleteByID(ctx context.Context, db *sqlx.DB, table, entity, id string, notFound error) error {
	if !validID(id) {
		return notFound
	}
	res, err := db.ExecContext(ctx, db.Rebind(fmt.Sprintf("DELETE FROM %s WHERE id = ?", table)), id)
	if err != nil {
		return trapErr(err, notFound, entity, "deleting "+entity)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notFound
	}
	return nil
}
