package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

type createTaskRequest struct {
	Title      string  `json:"title"`
	Memo       string  `json:"memo"`
	Priority   string  `json:"priority"`
	CategoryID *string `json:"category_id"`
	Date       string  `json:"date"`
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), h.getUserID(c), service.TaskInput{
		Title:      req.Title,
		Memo:       req.Memo,
		Priority:   req.Priority,
		CategoryID: req.CategoryID,
		Date:       date,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Title         *string `json:"title"`
	Memo          *string `json:"memo"`
	Priority      *string `json:"priority"`
	CategoryID    *string `json:"category_id"`
	ClearCategory bool    `json:"clear_category"`
	Date          *string `json:"date"`
	IsCompleted   *bool   `json:"is_completed"`
}

// UpdateTask handles PATCH /api/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	patch := service.TaskPatch{
		Title:         req.Title,
		Memo:          req.Memo,
		Priority:      req.Priority,
		CategoryID:    req.CategoryID,
		ClearCategory: req.ClearCategory,
		IsCompleted:   req.IsCompleted,
	}
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			h.badRequest(c, err.Error())
			return
		}
		patch.Date = &date
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), h.getUserID(c), c.Param("id"), patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// ToggleTask handles POST /api/tasks/:id/toggle
func (h *Handler) ToggleTask(c *gin.Context) {
	task, err := h.tasks.ToggleComplete(c.Request.Context(), h.getUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// MoveTaskToTomorrow handles POST /api/tasks/:id/tomorrow
func (h *Handler) MoveTaskToTomorrow(c *gin.Context) {
	task, err := h.tasks.MoveToTomorrow(c.Request.Context(), h.getUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	if err := h.tasks.DeleteTask(c.Request.Context(), h.getUserID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
