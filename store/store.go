/*Package store implements the postgres repositories of the backoffice
service. SQL is constructed with go-sqlbuilder, values always travel as
bound parameters. Natural-key uniqueness is pre-checked inside the
mutating transaction for precise error messages; the partial unique
indexes of the schema remain the authoritative guard and their
violations convert to the identical conflict errors.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
)

type queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

const sqlFlavor = sqlbuilder.PostgreSQL

// DefaultTimeout bounds every store operation unless configured otherwise.
const DefaultTimeout = 5 * time.Second

// Store bundles the repositories for all backoffice entities over one
// shared connection pool.
type Store struct {
	db      *csql.DB
	timeout time.Duration
}

// New creates a store on the given database with the default operation
// timeout.
func New(db *csql.DB) *Store {
	return &Store{db: db, timeout: DefaultTimeout}
}

// WithTimeout returns a store with the given per-operation timeout.
func (s *Store) WithTimeout(timeout time.Duration) *Store {
	return &Store{db: s.db, timeout: timeout}
}

func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// uniqueWithinYear reports whether no other live row of the table
// carries the same number within the same year of the date column.
// Pass excludeID 0 on create.
func uniqueWithinYear(ctx context.Context, q queryable, table, numberColumn, dateColumn, number string, year, excludeID int64) (bool, error) {
	query, args := sqlbuilder.Buildf(
		"SELECT id FROM "+table+" WHERE "+numberColumn+" = %s AND EXTRACT(YEAR FROM "+dateColumn+") = %s AND is_deleted = FALSE AND id <> %s",
		number, year, excludeID).BuildWithFlavor(sqlFlavor)

	var id int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, csql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// deletedState reports why a soft delete affected no rows: the row is
// either already flagged or does not exist at all.
func (s *Store) deletedState(ctx context.Context, table, entity string, id int64) error {
	sb := sqlFlavor.NewSelectBuilder().Select("is_deleted").From(table)
	sb.Where(sb.Equal("id", id))
	query, args := sb.Build()

	var isDeleted bool
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&isDeleted)
	if errors.Is(err, csql.ErrNoRows) {
		return core.NotFoundError{}
	}
	if err != nil {
		return err
	}
	if isDeleted {
		return core.NotFoundError{Message: entity + " already deleted"}
	}
	return core.NotFoundError{}
}

// uniqueViolation returns the violated constraint name if the error is
// a postgres unique_violation, otherwise the empty string.
func uniqueViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return pqErr.Constraint
	}
	return ""
}

func policyConflict(number string, year int64) error {
	return core.Conflictf("policy number '%s' already exists for the year %d", number, year)
}

func receiptConflict(number string, year int64) error {
	return core.Conflictf("mr number '%s' already exists for the year %d", number, year)
}

func receiptPolicyConflict(number string, year int64) error {
	return core.Conflictf("a receipt for policy number '%s' already exists for the year %d", number, year)
}
