package repository

import (
	"context"

	"vidstream/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIdentifier looks up a user by username or email. Callers must
	// normalize the identifier the same way Create normalizes usernames
	// and emails.
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	// SetRefreshToken unconditionally overwrites the stored refresh token,
	// invalidating any previously issued one.
	SetRefreshToken(ctx context.Context, userID, token string) error
	// SwapRefreshToken atomically replaces the stored refresh token only if
	// it still equals oldToken. Returns ErrStaleRefreshToken otherwise.
	SwapRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	// ClearRefreshToken removes the stored refresh token. Idempotent.
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error)
	UpdateFullname(ctx context.Context, userID, fullname string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID string, avatar domain.FileRef) (*domain.User, error)
	UpdateCoverImage(ctx context.Context, userID string, cover domain.FileRef) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
}

// VideoRepository defines methods for video operations
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) error
	GetByID(ctx context.Context, id string) (*domain.Video, error)
	List(ctx context.Context, filter domain.VideoFilter) ([]*domain.VideoWithOwner, int, error)
	UpdateFile(ctx context.Context, id string, file domain.FileRef) (*domain.Video, error)
	UpdateThumbnail(ctx context.Context, id string, thumbnail domain.FileRef) (*domain.Video, error)
	UpdateTitle(ctx context.Context, id, title string) (*domain.Video, error)
	UpdateDescription(ctx context.Context, id, description string) (*domain.Video, error)
	TogglePublished(ctx context.Context, id string) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionRepository defines methods for subscription operations
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) error
	// DeleteBySubscriberChannel removes a subscription if present and
	// reports whether one existed.
	DeleteBySubscriberChannel(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListChannels(ctx context.Context, subscriberID string, page, limit int) ([]*domain.ChannelSummary, int, error)
	ListSubscribers(ctx context.Context, channelID string, page, limit int) ([]*domain.ChannelSummary, int, error)
	GetChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
}

// ViewRepository defines methods for view and watch-history operations
type ViewRepository interface {
	Create(ctx context.Context, view *domain.View) error
	ListWatchHistory(ctx context.Context, viewerID string, page, limit int) ([]*domain.VideoWithOwner, int, error)
	ListVideoViewers(ctx context.Context, videoID string, page, limit int) ([]*domain.ViewerSummary, int, error)
	CountByVideo(ctx context.Context, videoID string) (int, error)
}
