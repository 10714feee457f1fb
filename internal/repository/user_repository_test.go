package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidstream/internal/domain"
	"vidstream/pkg/database"
)

func newMockRepo(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRepository(&database.Postgres{DB: db}), mock
}

func TestSwapRefreshToken_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("user-1", "old-token", "new-token", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SwapRefreshToken(context.Background(), "user-1", "old-token", "new-token")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSwapRefreshToken_StaleToken(t *testing.T) {
	repo, mock := newMockRepo(t)

	// Stored value no longer matches: a concurrent refresh or logout won.
	mock.ExpectExec(`UPDATE users`).
		WithArgs("user-1", "superseded-token", "new-token", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SwapRefreshToken(context.Background(), "user-1", "superseded-token", "new-token")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStaleRefreshToken))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearRefreshToken_IdempotentOnMissingUser(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("gone-user", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ClearRefreshToken(context.Background(), "gone-user")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateUsername(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		Fullname:     "Alice",
		PasswordHash: "hash",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateUser))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIdentifier_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByIdentifier(context.Background(), "nobody")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIdentifier_Found(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "username", "email", "fullname", "password_hash", "current_refresh_token",
		"avatar_url", "avatar_key", "cover_url", "cover_key", "created_at", "updated_at",
	}).AddRow(
		"user-1", "alice", "alice@example.com", "Alice", "hash", "stored-refresh",
		"", "", "", "", now, now,
	)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByIdentifier(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "stored-refresh", user.CurrentRefreshToken)
	require.NoError(t, mock.ExpectationsWereMet())
}
