package handlers

import (
	"context"

	"github.com/velora/backend/internal/models"
)

// CommentResponse enriches an embedded comment with its author's compact shape
type CommentResponse struct {
	models.Comment
	User models.UserCompact `json:"user"`
}

// PostResponse is the wire shape for a post: owner and comment authors are
// resolved to compact users, counts are derived from the live collections.
type PostResponse struct {
	models.Post
	User         models.UserCompact `json:"user"`
	Comments     []CommentResponse  `json:"comments"`
	LikeCount    int                `json:"likeCount"`
	CommentCount int                `json:"commentCount"`
}

// ReelResponse is the wire shape for a reel
type ReelResponse struct {
	models.Reel
	User         models.UserCompact `json:"user"`
	Comments     []CommentResponse  `json:"comments"`
	LikeCount    int                `json:"likeCount"`
	CommentCount int                `json:"commentCount"`
}

// MessageResponse enriches a message with sender and receiver compacts
type MessageResponse struct {
	models.Message
	Sender   models.UserCompact `json:"sender"`
	Receiver models.UserCompact `json:"receiver"`
}

func buildComments(ctx context.Context, cc *compactCache, comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, CommentResponse{Comment: comment, User: cc.get(ctx, comment.UserID)})
	}
	return out
}

func buildPostResponse(ctx context.Context, cc *compactCache, post *models.Post) PostResponse {
	return PostResponse{
		Post:         *post,
		User:         cc.get(ctx, post.UserID),
		Comments:     buildComments(ctx, cc, post.Comments),
		LikeCount:    post.LikeCount(),
		CommentCount: post.CommentCount(),
	}
}

func buildPostResponses(ctx context.Context, cc *compactCache, posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, buildPostResponse(ctx, cc, &posts[i]))
	}
	return out
}

func buildReelResponse(ctx context.Context, cc *compactCache, reel *models.Reel) ReelResponse {
	return ReelResponse{
		Reel:         *reel,
		User:         cc.get(ctx, reel.UserID),
		Comments:     buildComments(ctx, cc, reel.Comments),
		LikeCount:    reel.LikeCount(),
		CommentCount: reel.CommentCount(),
	}
}

func buildReelResponses(ctx context.Context, cc *compactCache, reels []models.Reel) []ReelResponse {
	out := make([]ReelResponse, 0, len(reels))
	for i := range reels {
		out = append(out, buildReelResponse(ctx, cc, &reels[i]))
	}
	return out
}

func buildMessageResponse(ctx context.Context, cc *compactCache, message *models.Message) MessageResponse {
	return MessageResponse{
		Message:  *message,
		Sender:   cc.get(ctx, message.SenderID),
		Receiver: cc.get(ctx, message.ReceiverID),
	}
}

func buildMessageResponses(ctx context.Context, cc *compactCache, messages []models.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, buildMessageResponse(ctx, cc, &messages[i]))
	}
	return out
}
