package handler

import (
	"context"

	"github.com/bizdir/backend/internal/application/messaging"
	"github.com/bizdir/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MessagingService is the customer/owner conversation API
type MessagingService interface {
	StartConversation(ctx context.Context, customerID uuid.UUID, input messaging.StartConversationInput) (*messaging.StartConversationResponse, error)
	Send(ctx context.Context, senderID, conversationID uuid.UUID, input messaging.SendMessageInput) (*messaging.MessageResponse, error)
	ListConversations(ctx context.Context, userID uuid.UUID, input messaging.PageInput) (shared.Paginated[messaging.ConversationResponse], error)
	ListMessages(ctx context.Context, userID, conversationID uuid.UUID, input messaging.PageInput) (shared.Paginated[messaging.MessageResponse], error)
	MarkRead(ctx context.Context, userID, conversationID uuid.UUID) (*messaging.MarkReadResponse, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (*messaging.UnreadResponse, error)
}

// MessagingHandler serves conversations. Every route requires a participant.
type MessagingHandler struct {
	BaseHandler
	messages MessagingService
}

// NewMessagingHandler creates a new messaging handler
func NewMessagingHandler(messages MessagingService) *MessagingHandler {
	return &MessagingHandler{messages: messages}
}

// Start godoc
// @Summary      Message a business
// @Description  Opens the conversation with the listing owner, or reuses the existing one
// @Tags         messaging
// @Accept       json
// @Produce      json
// @Param        request body messaging.StartConversationInput true "First message"
// @Success      201 {object} dto.Response{data=messaging.StartConversationResponse}
// @Security     BearerAuth
// @Router       /conversations [post]
func (h *MessagingHandler) Start(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req messaging.StartConversationInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.messages.StartConversation(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary      My conversations
// @Tags         messaging
// @Produce      json
// @Param        page      query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]messaging.ConversationResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /conversations [get]
func (h *MessagingHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req messaging.PageInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.messages.ListConversations(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Unread godoc
// @Summary      Unread message count
// @Tags         messaging
// @Produce      json
// @Success      200 {object} dto.Response{data=messaging.UnreadResponse}
// @Security     BearerAuth
// @Router       /conversations/unread [get]
func (h *MessagingHandler) Unread(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	resp, err := h.messages.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Messages godoc
// @Summary      Conversation messages
// @Tags         messaging
// @Produce      json
// @Param        id        path  string true  "Conversation ID"
// @Param        page      query int    false "Page"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} dto.Response{data=[]messaging.MessageResponse,meta=dto.Meta}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [get]
func (h *MessagingHandler) Messages(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req messaging.PageInput
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.messages.ListMessages(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	paginated(c, page)
}

// Send godoc
// @Summary      Send message
// @Tags         messaging
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Conversation ID"
// @Param        request body messaging.SendMessageInput true "Message"
// @Success      201 {object} dto.Response{data=messaging.MessageResponse}
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [post]
func (h *MessagingHandler) Send(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req messaging.SendMessageInput
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.messages.Send(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// MarkRead godoc
// @Summary      Mark conversation read
// @Tags         messaging
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} dto.Response{data=messaging.MarkReadResponse}
// @Security     BearerAuth
// @Router       /conversations/{id}/read [post]
func (h *MessagingHandler) MarkRead(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.messages.MarkRead(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
