package dto

import "vidstream/internal/domain"

// AuthResponse represents an authentication response. Tokens are also set
// as httpOnly cookies; the body copy serves non-browser clients.
type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *domain.User `json:"user,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// VideoResponse wraps a single video, optionally with its view count and
// a time-limited playback URL
type VideoResponse struct {
	Video       *domain.Video `json:"video"`
	ViewCount   int           `json:"view_count,omitempty"`
	PlaybackURL string        `json:"playback_url,omitempty"`
}

// VideoListResponse is a paginated video listing
type VideoListResponse struct {
	Videos []*domain.VideoWithOwner `json:"videos"`
	Total  int                      `json:"total"`
	Page   int                      `json:"page"`
	Limit  int                      `json:"limit"`
}

// ChannelListResponse is a paginated channel listing
type ChannelListResponse struct {
	Channels []*domain.ChannelSummary `json:"channels"`
	Total    int                      `json:"total"`
	Page     int                      `json:"page"`
	Limit    int                      `json:"limit"`
}

// ViewerListResponse is a paginated viewer listing
type ViewerListResponse struct {
	Viewers []*domain.ViewerSummary `json:"viewers"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
}
