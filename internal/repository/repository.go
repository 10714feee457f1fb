package repository

import (
	"vidstream/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	Video        VideoRepository
	Subscription SubscriptionRepository
	View         ViewRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Video:        NewVideoRepository(db),
		Subscription: NewSubscriptionRepository(db),
		View:         NewViewRepository(db),
	}
}
