package handlers

import (
	"OcuCare/middlewares"
	"OcuCare/models"
	"OcuCare/realtime"
	"OcuCare/services"
	"io"

	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	consultations services.ConsultationService
	results       services.ResultService
	broker        *realtime.Broker
}

func NewConsultationHandler(consultations services.ConsultationService, results services.ResultService, broker *realtime.Broker) *ConsultationHandler {
	return &ConsultationHandler{consultations: consultations, results: results, broker: broker}
}

type consultRequest struct {
	ResultID string `json:"result_id"`
	Message  string `json:"message"`
}

// Consult starts (or re-enters) the caller's consultation over one of their
// results. If the result is already consulted the existing conversation is
// returned without appending anything.
func (h *ConsultationHandler) Consult(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	var req consultRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ResultID == "" {
		c.JSON(400, gin.H{"error": "result_id is required"})
		return
	}

	result, err := h.results.GetResult(ctx, req.ResultID)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.UserID != userID {
		c.JSON(403, gin.H{"error": "Forbidden"})
		return
	}
	if result.Consult {
		c.JSON(200, gin.H{"conversation_id": userID, "consult_updated": false})
		return
	}

	message := req.Message
	if message == "" {
		message = "I would like to consult about my result."
	}

	conversationID, err := h.consultations.InitiateConsultation(ctx, userID, message, req.ResultID)
	if err != nil {
		respondError(c, err)
		return
	}

	consultUpdated := true
	if err := h.consultations.UpdateConsultStatus(ctx, req.ResultID, conversationID); err != nil {
		// The conversation and message exist; the flag update is retried by
		// the client on the next Consult call.
		consultUpdated = false
	}
	c.JSON(201, gin.H{"conversation_id": conversationID, "consult_updated": consultUpdated})
}

type sendMessageRequest struct {
	Text     string  `json:"text"`
	ResultID *string `json:"result_id,omitempty"`
}

// SendMessage appends a message to a conversation the caller participates in.
func (h *ConsultationHandler) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversation_id")
	if !h.authorizeConversation(c, conversationID, userID) {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "Invalid request body"})
		return
	}

	message, err := h.consultations.SendMessage(ctx, conversationID, userID, req.Text, req.ResultID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(201, message)
}

// GetConversation returns the caller's conversation document.
func (h *ConsultationHandler) GetConversation(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversation_id")
	if !h.authorizeConversation(c, conversationID, userID) {
		return
	}

	conversation, err := h.consultations.GetConversation(ctx, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, conversation)
}

// ListMessages returns the ordered message log of a conversation.
func (h *ConsultationHandler) ListMessages(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversation_id")
	if !h.authorizeConversation(c, conversationID, userID) {
		return
	}

	messages, err := h.consultations.ListMessages(ctx, conversationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, messages)
}

// ListConversations returns every conversation, most recently active first.
// Doctor only; the route group enforces the role.
func (h *ConsultationHandler) ListConversations(c *gin.Context) {
	conversations, err := h.consultations.ListConversations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, conversations)
}

// MarkRead flags a received message as read.
func (h *ConsultationHandler) MarkRead(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversation_id")
	if !h.authorizeConversation(c, conversationID, userID) {
		return
	}

	if err := h.consultations.MarkMessageRead(ctx, conversationID, c.Param("message_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "Marked as read"})
}

// StreamMessages pushes new conversation messages to the client as
// server-sent events until the client disconnects.
func (h *ConsultationHandler) StreamMessages(c *gin.Context) {
	ctx := c.Request.Context()
	userID, err := middlewares.ExtractUserIDFromContext(ctx)
	if err != nil {
		c.JSON(401, gin.H{"error": "Not authenticated"})
		return
	}

	conversationID := c.Param("conversation_id")
	if !h.authorizeConversation(c, conversationID, userID) {
		return
	}

	sub, err := h.broker.SubscribeMessages(ctx, conversationID)
	if err != nil {
		c.JSON(500, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case message, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("message", message)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// authorizeConversation checks the caller owns the conversation (conversations
// are keyed by patient id) or is the doctor. Writes the error response itself.
func (h *ConsultationHandler) authorizeConversation(c *gin.Context, conversationID, userID string) bool {
	role, _ := middlewares.ExtractUserRoleFromContext(c.Request.Context())
	if conversationID != userID && role != models.RoleDoctor {
		c.JSON(403, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}
