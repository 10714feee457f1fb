package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vidstream/internal/domain"
	"vidstream/pkg/database"
)

// viewRepository implements ViewRepository interface
type viewRepository struct {
	db *database.Postgres
}

// NewViewRepository creates a new view repository
func NewViewRepository(db *database.Postgres) ViewRepository {
	return &viewRepository{db: db}
}

// Create records a view of a video
func (r *viewRepository) Create(ctx context.Context, view *domain.View) error {
	query := `
		INSERT INTO views (id, video_id, owner_id, viewer_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if view.ID == "" {
		view.ID = uuid.New().String()
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		view.ID, view.VideoID, view.OwnerID, view.ViewerID, view.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create view: %w", err)
	}

	return nil
}

// ListWatchHistory retrieves videos the given user has watched, most
// recently watched first, with owner profiles joined in.
func (r *viewRepository) ListWatchHistory(ctx context.Context, viewerID string, page, limit int) ([]*domain.VideoWithOwner, int, error) {
	var total int
	countQuery := `SELECT COUNT(DISTINCT video_id) FROM views WHERE viewer_id = $1`
	if err := r.db.DB.QueryRowContext(ctx, countQuery, viewerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count watch history: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT v.id, v.owner_id, v.title, v.description, v.video_url, v.video_key,
			v.thumbnail_url, v.thumbnail_key, v.duration, v.is_published,
			v.created_at, v.updated_at,
			u.username, u.fullname, u.avatar_url, u.avatar_key
		FROM (
			SELECT video_id, MAX(created_at) AS watched_at
			FROM views
			WHERE viewer_id = $1
			GROUP BY video_id
		) w
		JOIN videos v ON v.id = w.video_id
		JOIN users u ON u.id = v.owner_id
		ORDER BY w.watched_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, viewerID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list watch history: %w", err)
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
			return nil, 0, fmt.Errorf("failed to scan watch history row: %w", err)
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate watch history rows: %w", err)
	}

	return videos, total, nil
}

// ListVideoViewers retrieves users who watched the given video
func (r *viewRepository) ListVideoViewers(ctx context.Context, videoID string, page, limit int) ([]*domain.ViewerSummary, int, error) {
	var total int
	countQuery := `SELECT COUNT(DISTINCT viewer_id) FROM views WHERE video_id = $1`
	if err := r.db.DB.QueryRowContext(ctx, countQuery, videoID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count viewers: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT u.id, u.username, u.fullname, u.avatar_url, u.avatar_key,
			MAX(vw.created_at) AS viewed_at
		FROM views vw
		JOIN users u ON u.id = vw.viewer_id
		WHERE vw.video_id = $1
		GROUP BY u.id, u.username, u.fullname, u.avatar_url, u.avatar_key
		ORDER BY viewed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, videoID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list viewers: %w", err)
	}
	defer rows.Close()

	viewers := []*domain.ViewerSummary{}
	for rows.Next() {
		v := &domain.ViewerSummary{}
		err := rows.Scan(&v.ID, &v.Username, &v.Fullname, &v.Avatar.URL, &v.Avatar.Key, &v.ViewedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan viewer row: %w", err)
		}
		viewers = append(viewers, v)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate viewer rows: %w", err)
	}

	return viewers, total, nil
}

// CountByVideo returns the total recorded views for a video
func (r *viewRepository) CountByVideo(ctx context.Context, videoID string) (int, error) {
	var count int
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM views WHERE video_id = $1`, videoID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count views: %w", err)
	}

	return count, nil
}
