package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a directed edge from sender to receiver. Created on send,
// mutated only by the unread-to-read transition, never deleted.
type Message struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	SenderID   primitive.ObjectID `json:"sender_id" bson:"sender_id"`
	ReceiverID primitive.ObjectID `json:"receiver_id" bson:"receiver_id"`
	Content    string             `json:"content" bson:"content"`
	Read       bool               `json:"read" bson:"read"`
	ReadAt     *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId" validate:"required"`
	Content    string `json:"content" validate:"required,min=1,max=2000"`
}

// Conversation is the per-partner summary returned by the conversation
// listing: the chronologically latest message with that partner plus the
// partner's identity and the caller's unread count.
type Conversation struct {
	User        UserCompact `json:"user" bson:"user"`
	LastMessage Message     `json:"lastMessage" bson:"lastMessage"`
	UnreadCount int64       `json:"unreadCount" bson:"unreadCount"`
}
