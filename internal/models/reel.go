package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reel represents a short video stored in MongoDB. It mirrors Post with video
// instead of image, plus a view counter and duration.
type Reel struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user_id" bson:"user_id"`
	Caption   string               `json:"caption" bson:"caption"`
	VideoURL  string               `json:"video_url" bson:"video_url"`
	VideoID   string               `json:"-" bson:"video_id,omitempty"` // object-storage deletion handle
	Duration  float64              `json:"duration,omitempty" bson:"duration,omitempty"`
	Thumbnail string               `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Tags      []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	Views     int64                `json:"views" bson:"views"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// LikeCount returns the derived like count
func (r *Reel) LikeCount() int { return len(r.Likes) }

// CommentCount returns the derived comment count
func (r *Reel) CommentCount() int { return len(r.Comments) }

// HasLiked reports whether userID is present in the likes set
func (r *Reel) HasLiked(userID primitive.ObjectID) bool {
	for _, id := range r.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateReelRequest defines the multipart form fields for creating a reel
type CreateReelRequest struct {
	Caption  string  `form:"caption" validate:"omitempty,max=2200"`
	Duration float64 `form:"duration" validate:"omitempty,gte=0"`
}

// UpdateReelRequest defines the request body for updating an existing reel
type UpdateReelRequest struct {
	Caption string `json:"caption,omitempty" validate:"omitempty,max=2200"`
}
