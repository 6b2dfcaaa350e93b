package store

import (
	"context"
	"errors"

	"github.com/huandu/go-sqlbuilder"

	"github.com/policydesk/backoffice/core"
	"github.com/policydesk/backoffice/core/csql"
	"github.com/policydesk/backoffice/models"
)

// CreateUser registers a new credential record. The user id must be
// unique among non-deleted users.
func (s *Store) CreateUser(ctx context.Context, userID, passwordHash string) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sb := sqlFlavor.NewSelectBuilder().Select("id").From("users")
	sb.Where(sb.Equal("user_id", userID), "is_deleted = FALSE")
	query, args := sb.Build()
	var existing int64
	err = tx.QueryRowContext(ctx, query, args...).Scan(&existing)
	if err == nil {
		return nil, core.Conflictf("userid already exists")
	}
	if !errors.Is(err, csql.ErrNoRows) {
		return nil, err
	}

	query, args = sqlbuilder.Buildf(
		"INSERT INTO users (user_id, password_hash) VALUES (%s, %s) RETURNING id, created_at, updated_at",
		userID, passwordHash).BuildWithFlavor(sqlFlavor)

	u := models.User{UserID: userID, PasswordHash: passwordHash}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if uniqueViolation(err) == "users_user_id" {
			return nil, core.Conflictf("userid already exists")
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUserID returns the credential record for the given user id,
// excluding soft-deleted users.
func (s *Store) GetUserByUserID(ctx context.Context, userID string) (*models.User, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	sb := sqlFlavor.NewSelectBuilder().Select("id", "user_id", "password_hash", "created_at", "updated_at").From("users")
	sb.Where(sb.Equal("user_id", userID), "is_deleted = FALSE")
	query, args := sb.Build()

	var u models.User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.UserID, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, csql.ErrNoRows) {
		return nil, core.NotFoundError{}
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
