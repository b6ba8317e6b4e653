package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/velora/backend/internal/models"
	"github.com/velora/backend/internal/repositories"
	"github.com/velora/backend/internal/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles post CRUD and engagement HTTP requests
type PostHandler struct {
	postRepository         repositories.PostRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	mediaStore             storage.MediaStore
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	mediaStore storage.MediaStore,
) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		mediaStore:             mediaStore,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/feed", h.GetFeedPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.PUT("/posts/:id/like", h.LikePost)
	g.POST("/posts/:id/comment", h.CommentPost)
	g.DELETE("/posts/:id/comment/:commentId", h.DeleteComment)
}

// CreatePost creates a post. The image payload, when present, is uploaded to
// object storage before the record is created; the record keeps the durable
// URL and the deletion handle.
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	userObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var imageURL, imageID string
	if file, err := c.FormFile("image"); err == nil {
		imageURL, imageID, err = h.mediaStore.Upload(ctx, "posts", file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	post := &models.Post{
		UserID:   userObjID,
		Caption:  req.Caption,
		Location: req.Location,
		ImageURL: imageURL,
		ImageID:  imageID,
	}

	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "post": buildPostResponse(ctx, cc, post)})
}

// GetPosts returns all posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	ctx := c.Request().Context()

	posts, err := h.postRepository.GetAllPosts(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "posts": buildPostResponses(ctx, cc, posts)})
}

// GetFeedPosts returns posts from the current user and the users they follow
func (h *PostHandler) GetFeedPosts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	owners := append([]primitive.ObjectID{user.ID}, user.Following...)
	posts, err := h.postRepository.GetFeedPosts(ctx, owners)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "posts": buildPostResponses(ctx, cc, posts)})
}

// GetPost returns a single post
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": buildPostResponse(ctx, cc, post)})
}

// UpdatePost updates a post's caption/location. Ownership-checked.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	fields := map[string]interface{}{}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}

	post, err = h.postRepository.UpdatePost(ctx, c.Param("id"), fields)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "post": buildPostResponse(ctx, cc, post)})
}

// DeletePost deletes a post. The stored image is removed before the record;
// a storage failure aborts the whole delete.
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	post, err := h.postRepository.GetPostByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}
	if post.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if post.ImageID != "" {
		if err := h.mediaStore.Delete(ctx, post.ImageID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := h.postRepository.DeletePost(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post deleted"})
}

// LikePost toggles the current user's like on a post. A notification is
// emitted only on the like transition, and never for the owner's own post.
func (h *PostHandler) LikePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	userObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if post.HasLiked(userObjID) {
		if err := h.postRepository.RemoveLike(ctx, postID, userObjID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.postRepository.AddLike(ctx, postID, userObjID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if post.UserID != userObjID {
			notif := &models.Notification{
				UserID:  post.UserID,
				FromID:  userObjID,
				Type:    models.NotificationLike,
				PostID:  &post.ID,
				Message: "liked your post",
			}
			if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
				c.Logger().Errorf("failed to create like notification: %v", err)
			}
		}
	}

	post, err = h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "likes": post.Likes})
}

// CommentPost appends a comment at the front of the post's comment list and
// notifies the owner unless the commenter is the owner.
func (h *PostHandler) CommentPost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	userObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    userObjID,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}

	if err := h.postRepository.PushComment(ctx, postID, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if post.UserID != userObjID {
		notif := &models.Notification{
			UserID:  post.UserID,
			FromID:  userObjID,
			Type:    models.NotificationComment,
			PostID:  &post.ID,
			Message: "commented on your post",
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			c.Logger().Errorf("failed to create comment notification: %v", err)
		}
	}

	post, err = h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "comments": buildComments(ctx, cc, post.Comments)})
}

// DeleteComment removes a comment. Allowed for the comment's author or the
// post's owner.
func (h *PostHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Post not found")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var comment *models.Comment
	for i := range post.Comments {
		if post.Comments[i].ID == commentID {
			comment = &post.Comments[i]
			break
		}
	}
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if comment.UserID.Hex() != currentUserID && post.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.postRepository.PullComment(ctx, postID, commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	post, err = h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "comments": buildComments(ctx, cc, post.Comments)})
}
