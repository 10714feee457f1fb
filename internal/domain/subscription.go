package domain

import "time"

// Subscription links a subscriber to a channel (both are users)
type Subscription struct {
	ID           string    `json:"id" db:"id"`
	SubscriberID string    `json:"subscriber_id" db:"subscriber_id"`
	ChannelID    string    `json:"channel_id" db:"channel_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ChannelSummary is a channel's public profile in subscription listings
type ChannelSummary struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Fullname string  `json:"fullname"`
	Avatar   FileRef `json:"avatar"`
}

// ChannelProfile is a channel page with subscription aggregates
type ChannelProfile struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Fullname         string  `json:"fullname"`
	Avatar           FileRef `json:"avatar"`
	CoverImage       FileRef `json:"cover_image"`
	SubscriberCount  int     `json:"subscriber_count"`
	SubscribedCount  int     `json:"subscribed_count"`
	IsSubscribed     bool    `json:"is_subscribed"`
}
