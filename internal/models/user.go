package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a user account stored in MongoDB. Followers and Following
// are kept as two independent reference sets; every follow/unfollow must
// mutate both sides.
type User struct {
	ID        primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Email     string               `json:"email" bson:"email"`
	Username  string               `json:"username" bson:"username"`
	FullName  string               `json:"full_name" bson:"full_name"`
	Password  string               `json:"-" bson:"password"` // bcrypt hash, never serialized
	Avatar    string               `json:"avatar" bson:"avatar"`
	AvatarID  string               `json:"-" bson:"avatar_id,omitempty"` // object-storage deletion handle
	Bio       string               `json:"bio" bson:"bio"`
	Followers []primitive.ObjectID `json:"followers" bson:"followers"`
	Following []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserCompact is the slim user shape embedded in responses (comments, likes,
// conversation partners).
type UserCompact struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	FullName string             `json:"full_name"`
	Avatar   string             `json:"avatar"`
}

// ToCompact converts a User to its compact response shape
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}

// RegisterRequest defines the request body for local registration
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30"`
	FullName string `json:"fullName" validate:"required,min=2,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for local authentication
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest defines the multipart form fields for profile updates
type UpdateProfileRequest struct {
	Username string `form:"username" validate:"omitempty,min=3,max=30"`
	Email    string `form:"email" validate:"omitempty,email"`
	Bio      string `form:"bio" validate:"omitempty,max=150"`
}

// ChangePasswordRequest defines the request body for password changes
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"` // hex ObjectID
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
