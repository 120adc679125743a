package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routine-planner/internal/service"
)

// ListWishLists handles GET /api/wishlists
func (h *Handler) ListWishLists(c *gin.Context) {
	lists, err := h.wishes.Lists(c.Request.Context(), h.getUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlists": lists})
}

// CreateWishList handles POST /api/wishlists
func (h *Handler) CreateWishList(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	list, err := h.wishes.CreateList(c.Request.Context(), h.getUserID(c), req.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

// DeleteWishList handles DELETE /api/wishlists/:id
func (h *Handler) DeleteWishList(c *gin.Context) {
	if err := h.wishes.DeleteList(c.Request.Context(), h.getUserID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWishItems handles GET /api/wishlists/:id/items
func (h *Handler) ListWishItems(c *gin.Context) {
	items, err := h.wishes.Items(c.Request.Context(), h.getUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateWishItem handles POST /api/wishlists/:id/items
func (h *Handler) CreateWishItem(c *gin.Context) {
	var req struct {
		Title  string `json:"title"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	item, err := h.wishes.AddItem(c.Request.Context(), h.getUserID(c), c.Param("id"), req.Title, req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// UpdateWishItem handles PATCH /api/wishitems/:id
func (h *Handler) UpdateWishItem(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Reason      *string `json:"reason"`
		IsCompleted *bool   `json:"is_completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request")
		return
	}
	item, err := h.wishes.UpdateItem(c.Request.Context(), h.getUserID(c), c.Param("id"), service.WishPatch{
		Title:       req.Title,
		Reason:      req.Reason,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteWishItem handles DELETE /api/wishitems/:id
func (h *Handler) DeleteWishItem(c *gin.Context) {
	if err := h.wishes.DeleteItem(c.Request.Context(), h.getUserID(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ConvertWishItem handles POST /api/wishitems/:id/convert
func (h *Handler) ConvertWishItem(c *gin.Context) {
	var req struct {
		Date       string  `json:"date"`
		Priority   string  `json:"priority"`
		CategoryID *string `json:"category_id"`
	}
	// an empty body converts onto today with default priority
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "invalid request")
			return
		}
	}
	date, err := optionalDate(req.Date)
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}
	task, err := h.wishes.Convert(c.Request.Context(), h.getUserID(c), c.Param("id"), date, req.Priority, req.CategoryID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}
