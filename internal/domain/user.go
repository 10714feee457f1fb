package domain

import "time"

// FileRef points to a stored media object
type FileRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// User represents a user in the system
type User struct {
	ID                  string    `json:"id" db:"id"`
	Username            string    `json:"username" db:"username"`
	Email               string    `json:"email" db:"email"`
	Fullname            string    `json:"fullname" db:"fullname"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	CurrentRefreshToken string    `json:"-" db:"current_refresh_token"`
	Avatar              FileRef   `json:"avatar"`
	CoverImage          FileRef   `json:"cover_image"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// Redacted returns a copy safe to hand to transport layers,
// with credential material stripped.
func (u User) Redacted() *User {
	u.PasswordHash = ""
	u.CurrentRefreshToken = ""
	return &u
}
