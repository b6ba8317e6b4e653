package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/velora/backend/internal/models"
	"github.com/velora/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatHandler handles the HTTP side of direct messaging: persistence,
// history, conversation summaries and read receipts. Live delivery is a
// separate concern served by the realtime gateway.
type ChatHandler struct {
	messageRepository repositories.MessageRepository
	userRepository    repositories.UserRepository
}

// NewChatHandler creates a new ChatHandler
func NewChatHandler(messageRepo repositories.MessageRepository, userRepo repositories.UserRepository) *ChatHandler {
	return &ChatHandler{
		messageRepository: messageRepo,
		userRepository:    userRepo,
	}
}

// RegisterChatRoutes registers chat-related routes
func (h *ChatHandler) RegisterChatRoutes(g *echo.Group) {
	g.POST("/chat/send", h.SendMessage)
	g.GET("/chat/conversations/all", h.GetConversations)
	g.GET("/chat/:userId", h.GetMessages)
	g.PUT("/chat/read/:userId", h.MarkAsRead)
}

// SendMessage persists a direct message from the current user to the receiver
func (h *ChatHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if req.ReceiverID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot send message to yourself")
	}

	ctx := c.Request().Context()

	sender, err := h.userRepository.GetUserByID(ctx, currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	receiver, err := h.userRepository.GetUserByID(ctx, req.ReceiverID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Receiver not found")
	}

	message := &models.Message{
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Content:    req.Content,
	}

	if err := h.messageRepository.CreateMessage(ctx, message); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "message": buildMessageResponse(ctx, cc, message)})
}

// GetMessages returns the full history between the current user and the other
// user, oldest first.
func (h *ChatHandler) GetMessages(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	currentObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	other, err := h.userRepository.GetUserByID(ctx, c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	messages, err := h.messageRepository.GetMessagesBetween(ctx, currentObjID, other.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	return c.JSON(http.StatusOK, echo.Map{"success": true, "messages": buildMessageResponses(ctx, cc, messages)})
}

// GetConversations returns one entry per chat partner, ordered by most recent
// message, each with the latest message and the unread count.
func (h *ChatHandler) GetConversations(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	currentObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	entries, err := h.messageRepository.GetConversations(ctx, currentObjID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	cc := newCompactCache(h.userRepository)
	conversations := make([]models.Conversation, 0, len(entries))
	for i := range entries {
		conversations = append(conversations, models.Conversation{
			User:        cc.get(ctx, entries[i].PartnerID),
			LastMessage: entries[i].LastMessage,
			UnreadCount: entries[i].UnreadCount,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "conversations": conversations})
}

// MarkAsRead marks every unread message from the given sender to the current
// user as read.
func (h *ChatHandler) MarkAsRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()

	currentObjID, err := primitive.ObjectIDFromHex(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	senderObjID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if _, err := h.messageRepository.MarkMessagesAsRead(ctx, senderObjID, currentObjID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Messages marked as read"})
}
