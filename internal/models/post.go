package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is embedded in its parent Post or Reel; it has no identity outside
// it except for deletion/lookup by ID.
type Comment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id"`
	Text      string             `json:"text" bson:"text"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// Post represents a social media post stored in MongoDB. Likes is a set of
// user references (each user at most once); Comments are ordered
// most-recent-first. Like and comment counts are derived from the live
// collections, never stored.
type Post struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    primitive.ObjectID   `json:"user_id" bson:"user_id"`
	Caption   string               `json:"caption" bson:"caption"`
	Location  string               `json:"location,omitempty" bson:"location,omitempty"`
	ImageURL  string               `json:"image" bson:"image"`
	ImageID   string               `json:"-" bson:"image_id,omitempty"` // object-storage deletion handle
	Tags      []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []Comment            `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// LikeCount returns the derived like count
func (p *Post) LikeCount() int { return len(p.Likes) }

// CommentCount returns the derived comment count
func (p *Post) CommentCount() int { return len(p.Comments) }

// HasLiked reports whether userID is present in the likes set
func (p *Post) HasLiked(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the multipart form fields for creating a post
type CreatePostRequest struct {
	Caption  string `form:"caption" validate:"omitempty,max=2200"`
	Location string `form:"location" validate:"omitempty,max=100"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Caption  string `json:"caption,omitempty" validate:"omitempty,max=2200"`
	Location string `json:"location,omitempty" validate:"omitempty,max=100"`
}

// CreateCommentRequest defines the request body for commenting
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}
