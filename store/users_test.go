package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policydesk/backoffice/core"
)

const (
	findUserQuery   = "SELECT id FROM users WHERE user_id = $1 AND is_deleted = FALSE"
	insertUserQuery = "INSERT INTO users (user_id, password_hash) VALUES ($1, $2) RETURNING id, created_at, updated_at"
	getUserQuery    = "SELECT id, user_id, password_hash, created_at, updated_at FROM users WHERE user_id = $1 AND is_deleted = FALSE"
)

func TestCreateUser(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(exact(findUserQuery)).
		WithArgs("anna").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(exact(insertUserQuery)).
		WithArgs("anna", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))
	mock.ExpectCommit()

	user, err := s.CreateUser(context.Background(), "anna", "$2a$10$hash")
	require.NoError(t, err)
	assert.Equal(t, "anna", user.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserConflict(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(exact(findUserQuery)).
		WithArgs("anna").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectRollback()

	_, err := s.CreateUser(context.Background(), "anna", "$2a$10$hash")
	require.Error(t, err)
	assert.IsType(t, core.ConflictError{}, err)
	assert.EqualError(t, err, "userid already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUserID(t *testing.T) {
	s, mock := newTestStore(t)
	now := time.Now()

	mock.ExpectQuery(exact(getUserQuery)).
		WithArgs("anna").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "password_hash", "created_at", "updated_at"}).
			AddRow(int64(1), "anna", "$2a$10$hash", now, now))

	user, err := s.GetUserByUserID(context.Background(), "anna")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUserIDNotFound(t *testing.T) {
	s, mock := newTestStore(t)

	mock.ExpectQuery(exact(getUserQuery)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "password_hash", "created_at", "updated_at"}))

	_, err := s.GetUserByUserID(context.Background(), "nobody")
	require.Error(t, err)
	assert.IsType(t, core.NotFoundError{}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
