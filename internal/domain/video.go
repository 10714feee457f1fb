package domain

import "time"

// Video represents a published video and its media files
type Video struct {
	ID          string    `json:"id" db:"id"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	VideoFile   FileRef   `json:"video_file"`
	Thumbnail   FileRef   `json:"thumbnail"`
	Duration    float64   `json:"duration" db:"duration"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VideoWithOwner is a video joined with its owner's public profile
type VideoWithOwner struct {
	Video
	OwnerUsername string  `json:"owner_username"`
	OwnerFullname string  `json:"owner_fullname"`
	OwnerAvatar   FileRef `json:"owner_avatar"`
}

// VideoFilter narrows and orders video listings
type VideoFilter struct {
	Query     string
	ChannelID string
	SortBy    string
	SortAsc   bool
	Page      int
	Limit     int
}
