package store

import (
	"context"
	"errors"
	"net/url"

	"github.com/huandu/go-sqlbuilder"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/core/filter"
	"github.com/policydesk/backoffice/models"
)

var recordColumns = []string{"id", "title", "content", "created_at", "updated_at"}

func scanRecord(sc scanner) (*models.Record, error) {
	var r models.Record
	if err := sc.Scan(&r.ID, &r.Title, &r.Content, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecord inserts the record and returns the stored version.
// Records carry no natural key, there is nothing to pre-check.
func (s *Store) CreateRecord(ctx context.Context, in models.RecordInput) (*models.Record, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query, args := sqlbuilder.Buildf(
		"INSERT INTO records (title, content) VALUES (%s, %s) RETURNING id, created_at, updated_at",
		in.Title, in.Content).BuildWithFlavor(sqlFlavor)

	r := models.Record{Title: in.Title, Content: in.Content}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRecord returns the record with the given id, excluding soft-deleted
// rows.
func (s *Store) GetRecord(ctx context.Context, id int64) (*models.Record, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sb := sqlFlavor.NewSelectBuilder().Select(recordColumns...).From("records")
	sb.Where(sb.Equal("id", id), "is_deleted = FALSE")
	query, args := sb.Build()

	r, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecords returns the page of records matching the query filters
// together with the total match count before pagination. Ordered by
// creation time, newest first.
func (s *Store) ListRecords(ctx context.Context, values url.Values, page filter.Page) ([]models.Record, int, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	cb := sqlFlavor.NewSelectBuilder().Select("COUNT(1)").From("records")
	cb.Where("is_deleted = FALSE")
	if err := recordFilters.Apply(cb, values); err != nil {
		return nil, 0, err
	}
	query, args := cb.Build()
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sb := sqlFlavor.NewSelectBuilder().Select(recordColumns...).From("records")
	sb.Where("is_deleted = FALSE")
	if err := recordFilters.Apply(sb, values); err != nil {
		return nil, 0, err
	}
	sb.OrderBy("created_at DESC", "id DESC")
	sb.Limit(page.Limit).Offset(page.Offset())
	query, args = sb.Build()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// UpdateRecord applies the patch to the record with the given id and
// returns the record as re-read after the update.
func (s *Store) UpdateRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.Record, error) {
	assignments := patch.Assignments()
	if len(assignments) == 0 {
		return nil, core.Validationf("no valid fields to update")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ub := sqlFlavor.NewUpdateBuilder().Update("records")
	for _, a := range assignments {
		ub.SetMore(ub.Assign(a.Column, a.Value))
	}
	ub.SetMore("updated_at = NOW()")
	ub.Where(ub.Equal("id", id), "is_deleted = FALSE")
	query, args := ub.Build()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, core.NotFoundError{}
	}
	return s.GetRecord(ctx, id)
}

// DeleteRecord flags the record as deleted.
func (s *Store) DeleteRecord(ctx context.Context, id int64) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ub := sqlFlavor.NewUpdateBuilder().Update("records")
	ub.Set("is_deleted = TRUE", "updated_at = NOW()")
	ub.Where(ub.Equal("id", id), "is_deleted = FALSE")
	query, args := ub.Build()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.deletedState(ctx, "records", "record", id)
	}
	return nil
}
