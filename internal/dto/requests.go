package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Fullname string `json:"fullname" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents a login request. Identifier is a username or
// an email address.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangeEmailRequest represents an email change request
type ChangeEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ChangeFullnameRequest represents a display name change request
type ChangeFullnameRequest struct {
	Fullname string `json:"fullname" binding:"required"`
}

// UpdateTitleRequest represents a video title update
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required"`
}

// UpdateDescriptionRequest represents a video description update
type UpdateDescriptionRequest struct {
	Description string `json:"description" binding:"required"`
}
