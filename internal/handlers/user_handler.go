package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/velora/backend/internal/models"
	"github.com/velora/backend/internal/repositories"
	"github.com/velora/backend/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles user profile and social graph HTTP requests
type UserHandler struct {
	userRepository         repositories.UserRepository
	postRepository         repositories.PostRepository
	reelRepository         repositories.ReelRepository
	notificationRepository repositories.NotificationRepository
	mediaStore             storage.MediaStore
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	reelRepo repositories.ReelRepository,
	notifRepo repositories.NotificationRepository,
	mediaStore storage.MediaStore,
) *UserHandler {
	return &UserHandler{
		userRepository:         userRepo,
		postRepository:         postRepo,
		reelRepository:         reelRepo,
		notificationRepository: notifRepo,
		mediaStore:             mediaStore,
	}
}

// RegisterUserRoutes registers the auth-protected user routes. Search is
// public and registered separately in the router.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/suggestions", h.GetSuggestions)
	g.PUT("/users/profile", h.UpdateProfile)
	g.PUT("/users/change-password", h.ChangePassword)
	g.GET("/users/:id", h.GetUserProfile)
	g.PUT("/users/:id/follow", h.FollowUser)
}

// GetUserProfile returns a user's profile with their posts, reels and counts
func (h *UserHandler) GetUserProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	posts, err := h.postRepository.GetPostsByUserID(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	reels, err := h.reelRepository.GetReelsByUserID(ctx, user.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	followers := make([]models.UserCompact, 0, len(user.Followers))
	for _, id := range user.Followers {
		followers = append(followers, cc.get(ctx, id))
	}
	following := make([]models.UserCompact, 0, len(user.Following))
	for _, id := range user.Following {
		following = append(following, cc.get(ctx, id))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"user": echo.Map{
			"id":             user.ID,
			"email":          user.Email,
			"username":       user.Username,
			"full_name":      user.FullName,
			"avatar":         user.Avatar,
			"bio":            user.Bio,
			"followers":      followers,
			"following":      following,
			"followerCount":  len(user.Followers),
			"followingCount": len(user.Following),
			"posts":          buildPostResponses(ctx, cc, posts),
			"reels":          buildReelResponses(ctx, cc, reels),
			"postCount":      len(posts),
			"reelCount":      len(reels),
			"created_at":     user.CreatedAt,
		},
	})
}

// UpdateProfile updates the current user's profile, optionally replacing the
// avatar via multipart upload.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	current, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	fields := map[string]interface{}{}
	if req.Username != "" && req.Username != current.Username {
		if _, err := h.userRepository.GetUserByUsername(ctx, req.Username); err == nil {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		fields["username"] = req.Username
	}
	if req.Email != "" {
		fields["email"] = req.Email
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}

	// Handle avatar upload: the new object is stored first, and the old one
	// is removed only after the replacement succeeded.
	if file, err := c.FormFile("avatar"); err == nil {
		url, objectKey, err := h.mediaStore.Upload(ctx, "avatars", file)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if current.AvatarID != "" {
			if err := h.mediaStore.Delete(ctx, current.AvatarID); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
		}
		fields["avatar"] = url
		fields["avatar_id"] = objectKey
	}

	user, err := h.userRepository.UpdateProfile(ctx, currentUserID, fields)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "user": user})
}

// SearchUsers searches users by username, case-insensitive. Public route.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.userRepository.SearchUsers(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	formatted := make([]echo.Map, 0, len(users))
	for i := range users {
		u := &users[i]
		formatted = append(formatted, echo.Map{
			"id":             u.ID,
			"username":       u.Username,
			"avatar":         u.Avatar,
			"bio":            u.Bio,
			"followerCount":  len(u.Followers),
			"followingCount": len(u.Following),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": formatted})
}

// GetSuggestions returns users the current user does not follow yet
func (h *UserHandler) GetSuggestions(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	suggestions, err := h.userRepository.GetSuggestions(c.Request().Context(), currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	formatted := make([]echo.Map, 0, len(suggestions))
	for i := range suggestions {
		u := &suggestions[i]
		formatted = append(formatted, echo.Map{
			"id":            u.ID,
			"username":      u.Username,
			"avatar":        u.Avatar,
			"bio":           u.Bio,
			"followerCount": len(u.Followers),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "suggestions": formatted})
}

// FollowUser toggles the follow edge between the current user and the target.
// Both sides of the edge are written before success is reported; a follow
// transition emits a notification to the target.
func (h *UserHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	targetUserID := c.Param("id")
	if targetUserID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}

	ctx := c.Request().Context()

	target, err := h.userRepository.GetUserByID(ctx, targetUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	current, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	isFollowing := containsID(current.Following, target.ID)

	if isFollowing {
		if err := h.userRepository.RemoveFollowing(ctx, currentUserID, targetUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.userRepository.RemoveFollower(ctx, targetUserID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.userRepository.AddFollowing(ctx, currentUserID, targetUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if err := h.userRepository.AddFollower(ctx, targetUserID, currentUserID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		notif := &models.Notification{
			UserID:  target.ID,
			FromID:  current.ID,
			Type:    models.NotificationFollow,
			Message: "started following you",
		}
		if err := h.notificationRepository.CreateNotification(ctx, notif); err != nil {
			c.Logger().Errorf("failed to create follow notification: %v", err)
		}
	}

	// Re-read both sides so the response reflects the post-toggle state
	target, err = h.userRepository.GetUserByID(ctx, targetUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	current, err = h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":        true,
		"isFollowing":    !isFollowing,
		"followers":      target.Followers,
		"followerCount":  len(target.Followers),
		"followingCount": len(current.Following),
	})
}

// ChangePassword verifies the current password and replaces it
func (h *UserHandler) ChangePassword(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()

	user, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.userRepository.UpdatePassword(ctx, currentUserID, string(hashed)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Password updated successfully"})
}
