package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

// routineRequest is the routine body; weekdays use 0 for Sunday.
type routineRequest struct {
	Title      string          `json:"title"`
	Memo       string          `json:"memo"`
	Priority   string          `json:"priority"`
	CategoryID *string         `json:"category_id"`
	Frequency  model.Frequency `json:"frequency"`
	Weekdays   []int           `json:"weekdays"`
	DayOfMonth int             `json:"day_of_month"`
	Time       string          `json:"time"`
	IsActive   *bool           `json:"is_active"`
}

func (r routineRequest) input() (service.RoutineInput, bool) {
	var days model.WeekdaySet
	for _, d := range r.Weekdays {
		if d < 0 || d > 6 {
			return service.RoutineInput{}, false
		}
		days = days.With(time.Weekday(d))
	}
	return service.RoutineInput{
		Title:      r.Title,
		Memo:       r.Memo,
		Priority:   r.Priority,
		CategoryID: r.CategoryID,
		Frequency:  r.Frequency,
		Weekdays:   days,
		DayOfMonth: r.DayOfMonth,
		Time:       r.Time,
	}, true
}

// ListRoutines handles GET /api/routines
func (h *Handler) ListRoutines(c *gin.Context) {
	routines, err := h.routines.List(c.Request.Context(), h.getUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routines": routines})
}

// CreateRoutine handles POST /api/routines
func (h *Handler) CreateRoutine(c *gin.Context) {
	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	in, ok := req.input()
	if !ok {
		h.badRequest(c, "weekdays must be 0..6")
		return
	}
	routine, err := h.routines.Create(c.Request.Context(), h.getUserID(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

// UpdateRoutine handles PATCH /api/routines/:id. A body holding only
// is_active toggles the routine; otherwise the routine is replaced.
func (h *Handler) UpdateRoutine(c *gin.Context) {
	var req routineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	ctx := c.Request.Context()
	userID := h.getUserID(c)
	id := c.Param("id")

	if req.Title == "" && req.Frequency == "" && req.IsActive != nil {
		routine, err := h.routines.SetActive(ctx, userID, id, *req.IsActive)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, routine)
		return
	}

	in, ok := req.input()
	if !ok {
		h.badRequest(c, "weekdays must be 0..6")
		return
	}
	routine, err := h.routines.Update(ctx, userID, id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if req.IsActive != nil && *req.IsActive != routine.IsActive {
		if routine, err = h.routines.SetActive(ctx, userID, id, *req.IsActive); err != nil {
			h.respondError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, routine)
}

// DeleteRoutine handles DELETE /api/routines/:id
func (h *Handler) DeleteRoutine(c *gin.Context) {
	if err := h.routines.Delete(c.Request.Context(), h.getUserID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
