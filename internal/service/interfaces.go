package service

import (
	"context"
	"io"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/dto"
)

// MediaUpload is an incoming media file handed from transport to services
type MediaUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// MediaStore abstracts blob storage for media files
type MediaStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL for an object
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// AuthResult carries a fresh token pair and the authenticated user
type AuthResult struct {
	User             *domain.User
	TokenPair        domain.TokenPair
	RefreshExpiresIn int // seconds, drives the refresh cookie lifetime
}

// AuthService defines methods for authentication and account operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*AuthResult, error)
	Refresh(ctx context.Context, oldRefreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error
	// Authenticate verifies an access token and loads the redacted user.
	// This is the middleware entry point.
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	ChangeEmail(ctx context.Context, userID, email string) (*domain.User, error)
	ChangeFullname(ctx context.Context, userID, fullname string) (*domain.User, error)
	ChangeAvatar(ctx context.Context, userID string, upload MediaUpload) (*domain.User, error)
	ChangeCoverImage(ctx context.Context, userID string, upload MediaUpload) (*domain.User, error)
	DeleteAccount(ctx context.Context, userID string) error
}

// VideoService defines methods for video operations
type VideoService interface {
	List(ctx context.Context, filter domain.VideoFilter) (*dto.VideoListResponse, error)
	Publish(ctx context.Context, ownerID, title, description string, duration float64, video, thumbnail MediaUpload) (*domain.Video, error)
	// Get returns a video and its view count, recording a view for the
	// watching user (at most once per dedup window).
	Get(ctx context.Context, videoID, viewerID string) (*dto.VideoResponse, error)
	// Load fetches a video without recording a view. Used by the
	// ownership guard before mutating operations.
	Load(ctx context.Context, videoID string) (*domain.Video, error)
	ReplaceFile(ctx context.Context, video *domain.Video, upload MediaUpload) (*domain.Video, error)
	ReplaceThumbnail(ctx context.Context, video *domain.Video, upload MediaUpload) (*domain.Video, error)
	UpdateTitle(ctx context.Context, videoID, title string) (*domain.Video, error)
	UpdateDescription(ctx context.Context, videoID, description string) (*domain.Video, error)
	TogglePublish(ctx context.Context, videoID string) (*domain.Video, error)
	Delete(ctx context.Context, video *domain.Video) error
}

// SubscriptionService defines methods for channel subscriptions
type SubscriptionService interface {
	// Toggle subscribes the user to the channel, or unsubscribes if
	// already subscribed. Reports the resulting state.
	Toggle(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListChannels(ctx context.Context, subscriberID string, page, limit int) (*dto.ChannelListResponse, error)
	ListSubscribers(ctx context.Context, channelID string, page, limit int) (*dto.ChannelListResponse, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (*domain.ChannelProfile, error)
}

// ViewService defines methods for watch history and viewer listings
type ViewService interface {
	WatchHistory(ctx context.Context, viewerID string, page, limit int) (*dto.VideoListResponse, error)
	VideoViewers(ctx context.Context, videoID string, page, limit int) (*dto.ViewerListResponse, error)
}
