package domain

import "time"

// View records that a viewer watched a video
type View struct {
	ID        string    `json:"id" db:"id"`
	VideoID   string    `json:"video_id" db:"video_id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	ViewerID  string    `json:"viewer_id" db:"viewer_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ViewerSummary is a viewer's public profile in viewer listings
type ViewerSummary struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Fullname string    `json:"fullname"`
	Avatar   FileRef   `json:"avatar"`
	ViewedAt time.Time `json:"viewed_at"`
}
