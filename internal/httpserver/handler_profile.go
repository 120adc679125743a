package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetProfile handles GET /api/profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.profiles.Get(c.Request.Context(), h.getUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PATCH /api/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		NotificationTime *string `json:"notification_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	if req.NotificationTime == nil {
		h.badRequest(c, "nothing to update")
		return
	}
	user, err := h.profiles.SetNotificationTime(c.Request.Context(), h.getUserID(c), *req.NotificationTime)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
