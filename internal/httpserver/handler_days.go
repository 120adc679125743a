package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routine-planner/internal/model"
)

// GetDay handles GET /api/days/:date
func (h *Handler) GetDay(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	day, err := h.view.Open(c.Request.Context(), h.getUserID(c), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, day)
}

// GetWeek handles GET /api/weeks/:date
func (h *Handler) GetWeek(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	week, err := h.view.Week(c.Request.Context(), h.getUserID(c), date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": week})
}

// ReorderDay handles PUT /api/days/:date/order
func (h *Handler) ReorderDay(c *gin.Context) {
	date, ok := h.dateParam(c)
	if !ok {
		return
	}
	var req struct {
		TaskIDs []string `json:"task_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}

	tasks, err := h.reorder.Commit(c.Request.Context(), h.getUserID(c), date, req.TaskIDs)
	if err != nil && tasks != nil {
		// some positions were not stored; the returned list is what to show
		h.logger.Warn("reorder partially failed", zap.String("date", date.String()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "order not fully saved", "date": date, "tasks": tasks})
		return
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "tasks": tasks})
}

// Search handles GET /api/search?q=&category_id=&priority=&status=&limit=
func (h *Handler) Search(c *gin.Context) {
	filter := model.TaskFilter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category_id"),
		Status:     model.TaskStatus(c.Query("status")),
	}
	if raw := c.Query("priority"); raw != "" {
		p, err := model.ParsePriority(raw)
		if err != nil {
			h.badRequest(c, err.Error())
			return
		}
		filter.Priority = p
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.badRequest(c, "invalid limit")
			return
		}
		filter.Limit = limit
	}

	tasks, err := h.tasks.Search(c.Request.Context(), h.getUserID(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}
