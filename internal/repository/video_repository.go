package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidstream/internal/domain"
	"vidstream/pkg/database"
)

const videoColumns = `id, owner_id, title, description, video_url, video_key,
		thumbnail_url, thumbnail_key, duration, is_published, created_at, updated_at`

// videoRepository implements VideoRepository interface
type videoRepository struct {
	db *database.Postgres
}

// NewVideoRepository creates a new video repository
func NewVideoRepository(db *database.Postgres) VideoRepository {
	return &videoRepository{db: db}
}

// Create creates a new video in the database
func (r *videoRepository) Create(ctx context.Context, video *domain.Video) error {
	query := `
		INSERT INTO videos (id, owner_id, title, description, video_url, video_key,
			thumbnail_url, thumbnail_key, duration, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if video.ID == "" {
		video.ID = uuid.New().String()
	}

	now := time.Now()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	if video.UpdatedAt.IsZero() {
		video.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		video.ID,
		video.OwnerID,
		video.Title,
		video.Description,
		video.VideoFile.URL,
		video.VideoFile.Key,
		video.Thumbnail.URL,
		video.Thumbnail.Key,
		video.Duration,
		video.IsPublished,
		video.CreatedAt,
		video.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

func scanVideo(row *sql.Row) (*domain.Video, error) {
	video := &domain.Video{}

	err := row.Scan(
		&video.ID,
		&video.OwnerID,
		&video.Title,
		&video.Description,
		&video.VideoFile.URL,
		&video.VideoFile.Key,
		&video.Thumbnail.URL,
		&video.Thumbnail.Key,
		&video.Duration,
		&video.IsPublished,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return video, nil
}

// GetByID retrieves a video by ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*domain.Video, error) {
	query := fmt.Sprintf(`SELECT %s FROM videos WHERE id = $1`, videoColumns)

	video, err := scanVideo(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video by id: %w", err)
	}

	return video, nil
}

var videoSortColumns = map[string]string{
	"created_at": "v.created_at",
	"title":      "v.title",
	"duration":   "v.duration",
}

// List retrieves published videos matching the filter, newest first by
// default, with the owner's public profile joined in.
func (r *videoRepository) List(ctx context.Context, filter domain.VideoFilter) ([]*domain.VideoWithOwner, int, error) {
	conditions := []string{"v.is_published = TRUE"}
	args := []interface{}{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf(
			"(v.title ILIKE $%d OR v.description ILIKE $%d)", len(args), len(args)))
	}

	if filter.ChannelID != "" {
		args = append(args, filter.ChannelID)
		conditions = append(conditions, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM videos v %s`, where)
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	sortColumn, ok := videoSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "v.created_at"
	}
	direction := "DESC"
	if filter.SortAsc {
		direction = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
			v.thumbnail_url, v.thumbnail_key, v.duration, v.is_published,
			v.created_at, v.updated_at,
			u.username, u.fullname, u.avatar_url, u.avatar_key
		FROM videos v
		JOIN users u ON u.id = v.owner_id
		%s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d`, where, sortColumn, direction, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list videos: %w", err)
	}
	defer rows.Close()

	videos := []*domain.VideoWithOwner{}
	for rows.Next() {
		v := &domain.VideoWithOwner{}
		err := rows.Scan(
			&v.ID,
			&v.OwnerID,
			&v.Title,
			&v.Description,
			&v.VideoFile.URL,
			&v.VideoFile.Key,
			&v.Thumbnail.URL,
			&v.Thumbnail.Key,
			&v.Duration,
			&v.IsPublished,
			&v.CreatedAt,
			&v.UpdatedAt,
			&v.OwnerUsername,
			&v.OwnerFullname,
			&v.OwnerAvatar.URL,
			&v.OwnerAvatar.Key,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan video row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate video rows: %w", err)
	}

	return videos, total, nil
}

func (r *videoRepository) updateReturning(ctx context.Context, query string, args ...interface{}) (*domain.Video, error) {
	video, err := scanVideo(r.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("video not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	return video, nil
}

// UpdateFile replaces the video file reference
func (r *videoRepository) UpdateFile(ctx context.Context, id string, file domain.FileRef) (*domain.Video, error) {
	query := fmt.Sprintf(`
		UPDATE videos SET video_url = $2, video_key = $3, updated_at = $4
		WHERE id = $1
		RETURNING %s`, videoColumns)

	return r.updateReturning(ctx, query, id, file.URL, file.Key, time.Now())
}

// UpdateThumbnail replaces the thumbnail file reference
func (r *videoRepository) UpdateThumbnail(ctx context.Context, id string, thumbnail domain.FileRef) (*domain.Video, error) {
	query := fmt.Sprintf(`
		UPDATE videos SET thumbnail_url = $2, thumbnail_key = $3, updated_at = $4
		WHERE id = $1
		RETURNING %s`, videoColumns)

	return r.updateReturning(ctx, query, id, thumbnail.URL, thumbnail.Key, time.Now())
}

// UpdateTitle changes a video's title
func (r *videoRepository) UpdateTitle(ctx context.Context, id, title string) (*domain.Video, error) {
	query := fmt.Sprintf(`
		UPDATE videos SET title = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s`, videoColumns)

	return r.updateReturning(ctx, query, id, title, time.Now())
}

// UpdateDescription changes a video's description
func (r *videoRepository) UpdateDescription(ctx context.Context, id, description string) (*domain.Video, error) {
	query := fmt.Sprintf(`
		UPDATE videos SET description = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s`, videoColumns)

	return r.updateReturning(ctx, query, id, description, time.Now())
}

// TogglePublished flips a video's publish status
func (r *videoRepository) TogglePublished(ctx context.Context, id string) (*domain.Video, error) {
	query := fmt.Sprintf(`
		UPDATE videos SET is_published = NOT is_published, updated_at = $2
		WHERE id = $1
		RETURNING %s`, videoColumns)

	return r.updateReturning(ctx, query, id, time.Now())
}

// Delete removes a video. Its views cascade at the schema level.
func (r *videoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("video with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}
