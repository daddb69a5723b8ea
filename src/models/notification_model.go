package models

import (
	"time"
)

type Notification struct {
	ID          string           `json:"_id" gorm:"primarykey;type:varchar(36)" bson:"_id"`
	RecipientID uint             `json:"recipient" gorm:"not null;index" bson:"recipient"`
	ActorID     uint             `json:"actor" gorm:"not null" bson:"actor"`
	Type        NotificationType `json:"type" gorm:"type:varchar(20);not null" bson:"type"`
	PostID      uint             `json:"post_id" gorm:"not null" bson:"post_id"`
	CommentID   *uint            `json:"comment_id,omitempty" bson:"comment_id,omitempty"`
	Read        bool             `json:"read" gorm:"not null;default:false;index" bson:"read"`
	CreatedAt   time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt" bson:"updatedAt"`
}

type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
)
