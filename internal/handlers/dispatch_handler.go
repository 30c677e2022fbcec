package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zagel-app/zagel-backend/internal/events"
	"github.com/zagel-app/zagel-backend/internal/services"
)

// DispatchHandler handles live-dispatch HTTP requests
type DispatchHandler struct {
	dispatchService *services.DispatchService
	hub             *events.Hub
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(dispatchService *services.DispatchService, hub *events.Hub) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
		hub:             hub,
	}
}

// StartDispatch handles POST /dispatch/:sessionId
func (h *DispatchHandler) StartDispatch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	var req struct {
		Recipients  []string `json:"recipients" binding:"required"`
		MessageType string   `json:"messageType" binding:"required"`
		Content     string   `json:"content" binding:"required"`
		Caption     string   `json:"caption"`
		MinDelay    int      `json:"minDelay"`
		MaxDelay    int      `json:"maxDelay"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, err := h.dispatchService.Start(userID.Hex(), c.Param("sessionId"),
		req.Recipients, req.MessageType, req.Content, req.Caption, req.MinDelay, req.MaxDelay)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrChannelUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoValidRecipients):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrCampaignRunning):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"total": total})
}

// StopDispatch handles POST /dispatch/:sessionId/stop
func (h *DispatchHandler) StopDispatch(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid user identity"})
		return
	}

	err := h.dispatchService.Stop(userID.Hex(), c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No live dispatch running for this session"})
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Stop requested"})
}

// StreamEvents handles GET /dispatch/events. It streams dispatch progress
// as server-sent events, optionally filtered by the session query param.
func (h *DispatchHandler) StreamEvents(c *gin.Context) {
	sessionFilter := c.Query("session")

	ch, unsubscribe := h.hub.Subscribe(64)
	defer unsubscribe()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if sessionFilter != "" && ev.SessionID != sessionFilter {
				return true
			}
			c.SSEvent(ev.Type, ev)
			return true
		}
	})
}
