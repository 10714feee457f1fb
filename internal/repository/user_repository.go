package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vidstream/internal/domain"
	"vidstream/pkg/database"
)

const userColumns = `id, username, email, fullname, password_hash, current_refresh_token,
		avatar_url, avatar_key, cover_url, cover_key, created_at, updated_at`

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, fullname, password_hash,
			avatar_url, avatar_key, cover_url, cover_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Fullname,
		user.PasswordHash,
		user.Avatar.URL,
		user.Avatar.Key,
		user.CoverImage.URL,
		user.CoverImage.Key,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user %s already exists: %w", user.Username, ErrDuplicateUser)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var refreshToken sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Fullname,
		&user.PasswordHash,
		&refreshToken,
		&user.Avatar.URL,
		&user.Avatar.Key,
		&user.CoverImage.URL,
		&user.CoverImage.Key,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refreshToken.Valid {
		user.CurrentRefreshToken = refreshToken.String
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByIdentifier retrieves a user by username or email
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 OR email = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, identifier))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s not found: %w", identifier, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}

	return user, nil
}

// SetRefreshToken overwrites the stored refresh token for a user
func (r *userRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `
		UPDATE users
		SET current_refresh_token = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

// SwapRefreshToken rotates the stored refresh token in a single atomic
// statement. Two concurrent refreshes with the same old token can both
// pass the in-memory comparison, but only one row update can match here.
func (r *userRepository) SwapRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	query := `
		UPDATE users
		SET current_refresh_token = $3, updated_at = $4
		WHERE id = $1 AND current_refresh_token = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, oldToken, newToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to swap refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("refresh token for user %s: %w", userID, ErrStaleRefreshToken)
	}

	return nil
}

// ClearRefreshToken removes the stored refresh token for a user.
// Clearing an already empty token is not an error.
func (r *userRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET current_refresh_token = NULL, updated_at = $2
		WHERE id = $1
	`

	if _, err := r.db.DB.ExecContext(ctx, query, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) updateReturning(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return nil, fmt.Errorf("value already taken: %w", ErrDuplicateUser)
			}
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// UpdateEmail changes a user's email
func (r *userRepository) UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET email = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s`, userColumns)

	return r.updateReturning(ctx, query, userID, email, time.Now())
}

// UpdateFullname changes a user's display name
func (r *userRepository) UpdateFullname(ctx context.Context, userID, fullname string) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET fullname = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s`, userColumns)

	return r.updateReturning(ctx, query, userID, fullname, time.Now())
}

// UpdatePassword changes a user's password hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

// UpdateAvatar replaces a user's avatar file reference
func (r *userRepository) UpdateAvatar(ctx context.Context, userID string, avatar domain.FileRef) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET avatar_url = $2, avatar_key = $3, updated_at = $4
		WHERE id = $1
		RETURNING %s`, userColumns)

	return r.updateReturning(ctx, query, userID, avatar.URL, avatar.Key, time.Now())
}

// UpdateCoverImage replaces a user's cover image file reference
func (r *userRepository) UpdateCoverImage(ctx context.Context, userID string, cover domain.FileRef) (*domain.User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET cover_url = $2, cover_key = $3, updated_at = $4
		WHERE id = $1
		RETURNING %s`, userColumns)

	return r.updateReturning(ctx, query, userID, cover.URL, cover.Key, time.Now())
}

// Delete removes a user. Owned videos, views and subscriptions cascade
// at the schema level.
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}
