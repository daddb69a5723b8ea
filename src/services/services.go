// Package services holds the application logic behind the HTTP handlers:
// reactions, comment trees, post queries, accounts and notifications.
package services

import (
	"gorm.io/gorm"

	"github.com/theleywin/Backend-Meme-Nest/src/config"
	"github.com/theleywin/Backend-Meme-Nest/src/search"
	"github.com/theleywin/Backend-Meme-Nest/src/storage"
)

type Services struct {
	Auth          *AuthService
	Users         *UserService
	Posts         *PostService
	Comments      *CommentService
	Reactions     *ReactionService
	Notifications *NotificationService
}

// New wires every service around the same database handle.
func New(cfg *config.Config, db *gorm.DB, index search.Index, store storage.Storage, notifications NotificationStore) *Services {
	notifier := NewNotificationService(notifications)
	return &Services{
		Auth:          NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Users:         NewUserService(db, store),
		Posts:         NewPostService(db, index, store, cfg.RestrictedTags),
		Comments:      NewCommentService(db, store, notifier),
		Reactions:     NewReactionService(db, notifier),
		Notifications: notifier,
	}
}
