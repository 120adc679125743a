package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

// Handler serves the JSON API on top of the services.
type Handler struct {
	view       *service.DayView
	tasks      *service.TaskService
	reorder    *service.ReorderService
	routines   *service.RoutineService
	categories *service.CategoryService
	wishes     *service.WishService
	profiles   *service.ProfileService
	logger     *zap.Logger
}

func NewHandler(
	view *service.DayView,
	tasks *service.TaskService,
	reorder *service.ReorderService,
	routines *service.RoutineService,
	categories *service.CategoryService,
	wishes *service.WishService,
	profiles *service.ProfileService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		view:       view,
		tasks:      tasks,
		reorder:    reorder,
		routines:   routines,
		categories: categories,
		wishes:     wishes,
		profiles:   profiles,
		logger:     logger,
	}
}

func (h *Handler) getUserID(c *gin.Context) string {
	userID, _ := c.Get(userIDKey)
	id, _ := userID.(string)
	return id
}

// respondError maps service errors onto status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDefaultCategory),
		errors.Is(err, service.ErrDefaultWishList),
		errors.Is(err, service.ErrStaleView):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// dateParam reads a YYYY-MM-DD path parameter; "today" is accepted.
func (h *Handler) dateParam(c *gin.Context) (model.Date, bool) {
	raw := c.Param("date")
	if raw == "today" {
		return h.view.Today(), true
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		h.badRequest(c, err.Error())
		return "", false
	}
	return date, true
}

func optionalDate(raw string) (model.Date, error) {
	if raw == "" {
		return "", nil
	}
	return model.ParseDate(raw)
}
