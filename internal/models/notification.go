package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification kinds. Only like, comment and follow are emitted as side
// effects today; message and mention are part of the closed set for clients.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
	NotificationMessage = "message"
	NotificationMention = "mention"
)

// Notification represents a user notification stored in MongoDB. Created as a
// side effect of like/comment/follow actions; self-actions never notify.
type Notification struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID  `json:"user_id" bson:"user_id"` // target
	FromID    primitive.ObjectID  `json:"from_id" bson:"from_id"` // actor
	Type      string              `json:"type" bson:"type"`
	PostID    *primitive.ObjectID `json:"post_id,omitempty" bson:"post_id,omitempty"`
	ReelID    *primitive.ObjectID `json:"reel_id,omitempty" bson:"reel_id,omitempty"`
	Message   string              `json:"message" bson:"message"`
	Read      bool                `json:"read" bson:"read"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
}
