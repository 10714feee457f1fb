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

// subscriptionRepository implements SubscriptionRepository interface
type subscriptionRepository struct {
	db *database.Postgres
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *database.Postgres) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create creates a new subscription
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query, sub.ID, sub.SubscriberID, sub.ChannelID, sub.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("subscriber %s already follows channel %s: %w",
					sub.SubscriberID, sub.ChannelID, ErrDuplicateSubscription)
			}
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// DeleteBySubscriberChannel removes a subscription if one exists
func (r *subscriptionRepository) DeleteBySubscriberChannel(ctx context.Context, subscriberID, channelID string) (bool, error) {
	query := `DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2`

	result, err := r.db.DB.ExecContext(ctx, query, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *subscriptionRepository) listSummaries(ctx context.Context, query, countQuery, id string, page, limit int) ([]*domain.ChannelSummary, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, countQuery, id).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	rows, err := r.db.DB.QueryContext(ctx, query, id, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	summaries := []*domain.ChannelSummary{}
	for rows.Next() {
		s := &domain.ChannelSummary{}
		err := rows.Scan(&s.ID, &s.Username, &s.Fullname, &s.Avatar.URL, &s.Avatar.Key)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan subscription row: %w", err)
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate subscription rows: %w", err)
	}

	return summaries, total, nil
}

// ListChannels retrieves channels the given user is subscribed to
func (r *subscriptionRepository) ListChannels(ctx context.Context, subscriberID string, page, limit int) ([]*domain.ChannelSummary, int, error) {
	query := `
		SELECT u.id, u.username, u.fullname, u.avatar_url, u.avatar_key
		FROM subscriptions s
		JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`
	countQuery := `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`

	return r.listSummaries(ctx, query, countQuery, subscriberID, page, limit)
}

// ListSubscribers retrieves users subscribed to the given channel
func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID string, page, limit int) ([]*domain.ChannelSummary, int, error) {
	query := `
		SELECT u.id, u.username, u.fullname, u.avatar_url, u.avatar_key
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = $1
		ORDER BY s.created_at DESC
		LIMIT $2 OFFSET $3
	`
	countQuery := `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`

	return r.listSummaries(ctx, query, countQuery, channelID, page, limit)
}

// GetChannelProfile retrieves a channel page with subscription aggregates,
// including whether the viewing user is subscribed.
func (r *subscriptionRepository) GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error) {
	query := `
		SELECT u.id, u.username, u.email, u.fullname,
			u.avatar_url, u.avatar_key, u.cover_url, u.cover_key,
			(SELECT COUNT(*) FROM subscriptions WHERE channel_id = u.id)    AS subscriber_count,
			(SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = u.id) AS subscribed_count,
			EXISTS (
				SELECT 1 FROM subscriptions
				WHERE channel_id = u.id AND subscriber_id = $2
			) AS is_subscribed
		FROM users u
		WHERE u.username = $1
	`

	profile := &domain.ChannelProfile{}
	err := r.db.DB.QueryRowContext(ctx, query, username, viewerID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Fullname,
		&profile.Avatar.URL,
		&profile.Avatar.Key,
		&profile.CoverImage.URL,
		&profile.CoverImage.Key,
		&profile.SubscriberCount,
		&profile.SubscribedCount,
		&profile.IsSubscribed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("channel %s not found: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get channel profile: %w", err)
	}

	return profile, nil
}
