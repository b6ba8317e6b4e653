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

// ReelHandler handles reel CRUD and engagement HTTP requests. The surface
// mirrors posts with video instead of image, plus a view counter.
type ReelHandler struct {
	reelRepository         repositories.ReelRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	mediaStore             storage.MediaStore
}

// NewReelHandler creates a new ReelHandler
func NewReelHandler(
	reelRepo repositories.ReelRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	mediaStore storage.MediaStore,
) *ReelHandler {
	return &ReelHandler{
		reelRepository:         reelRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		mediaStore:             mediaStore,
	}
}

// RegisterReelRoutes registers reel-related routes
func (h *ReelHandler) RegisterReelRoutes(g *echo.Group) {
	g.POST("/reels", h.CreateReel)
	g.GET("/reels", h.GetReels)
	g.GET("/reels/feed", h.GetFeedReels)
	g.GET("/reels/:id", h.GetReel)
	g.PUT("/reels/:id", h.UpdateReel)
	g.DELETE("/reels/:id", h.DeleteReel)
	g.PUT("/reels/:id/like", h.LikeReel)
	g.POST("/reels/:id/comment", h.CommentReel)
	g.DELETE("/reels/:id/comment/:commentId", h.DeleteComment)
	g.POST("/reels/:id/view", h.ViewReel)
}

// CreateReel creates a reel. Unlike posts, the video payload is mandatory.
func (h *ReelHandler) CreateReel(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateReelRequest
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

	file, err := c.FormFile("video")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Please upload a video")
	}

	videoURL, videoID, err := h.mediaStore.Upload(ctx, "reels", file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	reel := &models.Reel{
		UserID:   userObjID,
		Caption:  req.Caption,
		VideoURL: videoURL,
		VideoID:  videoID,
		Duration: req.Duration,
	}

	if err := h.reelRepository.CreateReel(ctx, reel); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "reel": buildReelResponse(ctx, cc, reel)})
}

// GetReels returns all reels, newest first
func (h *ReelHandler) GetReels(c echo.Context) error {
	ctx := c.Request().Context()

	reels, err := h.reelRepository.GetAllReels(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reels": buildReelResponses(ctx, cc, reels)})
}

// GetFeedReels returns reels from the current user and the users they follow
func (h *ReelHandler) GetFeedReels(c echo.Context) error {
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
	reels, err := h.reelRepository.GetFeedReels(ctx, owners)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reels": buildReelResponses(ctx, cc, reels)})
}

// GetReel returns a single reel
func (h *ReelHandler) GetReel(c echo.Context) error {
	ctx := c.Request().Context()

	reel, err := h.reelRepository.GetReelByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reel": buildReelResponse(ctx, cc, reel)})
}

// UpdateReel updates a reel's caption. Ownership-checked.
func (h *ReelHandler) UpdateReel(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateReelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	reel, err := h.reelRepository.GetReelByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}
	if reel.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	fields := map[string]interface{}{}
	if req.Caption != "" {
		fields["caption"] = req.Caption
	}

	reel, err = h.reelRepository.UpdateReel(ctx, c.Param("id"), fields)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "reel": buildReelResponse(ctx, cc, reel)})
}

// DeleteReel deletes a reel. The stored video is removed before the record;
// a storage failure aborts the whole delete.
func (h *ReelHandler) DeleteReel(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	reel, err := h.reelRepository.GetReelByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}
	if reel.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if reel.VideoID != "" {
		if err := h.mediaStore.Delete(ctx, reel.VideoID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if err := h.reelRepository.DeleteReel(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Reel deleted"})
}

// LikeReel toggles the current user's like on a reel
func (h *ReelHandler) LikeReel(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	reelID := c.Param("id")

	reel, err := h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}

	userObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if reel.HasLiked(userObjID) {
		if err := h.reelRepository.RemoveLike(ctx, reelID, userObjID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.reelRepository.AddLike(ctx, reelID, userObjID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		if reel.UserID != userObjID {
			notif := &models.Notification{
				UserID:  reel.UserID,
				FromID:  userObjID,
				Type:    models.NotificationLike,
				ReelID:  &reel.ID,
				Message: "liked your reel",
			}
			if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
				c.Logger().Errorf("failed to create like notification: %v", err)
			}
		}
	}

	reel, err = h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "likes": reel.Likes})
}

// CommentReel appends a comment at the front of the reel's comment list
func (h *ReelHandler) CommentReel(c echo.Context) error {
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
	reelID := c.Param("id")

	reel, err := h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
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

	if err := h.reelRepository.PushComment(ctx, reelID, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if reel.UserID != userObjID {
		notif := &models.Notification{
			UserID:  reel.UserID,
			FromID:  userObjID,
			Type:    models.NotificationComment,
			ReelID:  &reel.ID,
			Message: "commented on your reel",
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			c.Logger().Errorf("failed to create comment notification: %v", err)
		}
	}

	reel, err = h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "comments": buildComments(ctx, cc, reel.Comments)})
}

// DeleteComment removes a comment from a reel. Allowed for the comment's
// author or the reel's owner.
func (h *ReelHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	reelID := c.Param("id")

	reel, err := h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}

	commentID, err := primitive.ObjectIDFromHex(c.Param("commentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid comment ID")
	}

	var comment *models.Comment
	for i := range reel.Comments {
		if reel.Comments[i].ID == commentID {
			comment = &reel.Comments[i]
			break
		}
	}
	if comment == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
	}

	if comment.UserID.Hex() != currentUserID && reel.UserID.Hex() != currentUserID {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.reelRepository.PullComment(ctx, reelID, commentID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	reel, err = h.reelRepository.GetReelByID(ctx, reelID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "comments": buildComments(ctx, cc, reel.Comments)})
}

// ViewReel increments the reel's view counter
func (h *ReelHandler) ViewReel(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.reelRepository.IncrementViews(ctx, c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Reel not found")
	}

	reel, err := h.reelRepository.GetReelByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "views": reel.Views})
}
