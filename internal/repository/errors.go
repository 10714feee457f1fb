package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUser is returned when a username or email is already taken
	ErrDuplicateUser = errors.New("user with this username or email already exists")

	// ErrDuplicateSubscription is returned when a subscriber already follows a channel
	ErrDuplicateSubscription = errors.New("subscription already exists")

	// ErrStaleRefreshToken is returned when a compare-and-swap refresh token
	// rotation finds a different stored value, i.e. the presented token has
	// been superseded by a concurrent refresh or a logout.
	ErrStaleRefreshToken = errors.New("refresh token does not match stored value")
)
