package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zagel-app/zagel-backend/internal/models"
	"github.com/zagel-app/zagel-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AutoReplyHandler handles auto-reply rule HTTP requests and the inbound
// message webhook
type AutoReplyHandler struct {
	autoReplyService *services.AutoReplyService
}

// NewAutoReplyHandler creates a new AutoReplyHandler
func NewAutoReplyHandler(autoReplyService *services.AutoReplyService) *AutoReplyHandler {
	return &AutoReplyHandler{
		autoReplyService: autoReplyService,
	}
}

// CreateRule handles POST /autoreplies
func (h *AutoReplyHandler) CreateRule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	var rule models.AutoReply
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if rule.Keyword == "" || rule.Response == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword and response are required"})
		return
	}

	rule.ID = primitive.NilObjectID
	rule.UserID = userID
	if err := h.autoReplyService.CreateRule(c, &rule); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// GetRules handles GET /autoreplies
func (h *AutoReplyHandler) GetRules(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	rules, err := h.autoReplyService.ListRules(c, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rules: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, rules)
}

// UpdateRule handles PUT /autoreplies/:id
func (h *AutoReplyHandler) UpdateRule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var rule models.AutoReply
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rule.ID = id

	if err := h.autoReplyService.UpdateRule(c, userID, &rule); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /autoreplies/:id
func (h *AutoReplyHandler) DeleteRule(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.autoReplyService.DeleteRule(c, userID, id); err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rule deleted"})
}

// HandleInbound handles POST /webhooks/inbound. The transport adapter
// posts inbound messages here; a matching active rule triggers an
// automated reply over the same session.
func (h *AutoReplyHandler) HandleInbound(c *gin.Context) {
	var req struct {
		SessionID string `json:"sessionId" binding:"required"`
		From      string `json:"from" binding:"required"`
		Text      string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.autoReplyService.HandleInbound(c, req.SessionID, req.From, req.Text); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown session"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Processed"})
}

func (h *AutoReplyHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
	case errors.Is(err, services.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Rule does not belong to user"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
