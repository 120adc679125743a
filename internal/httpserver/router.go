package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether the database answers.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewRouter(h *Handler, jwtSecret string, db Pinger, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(AuthMiddleware(jwtSecret))
	{
		api.GET("/days/:date", h.GetDay)
		api.PUT("/days/:date/order", h.ReorderDay)
		api.GET("/weeks/:date", h.GetWeek)
		api.GET("/search", h.Search)

		api.POST("/tasks", h.CreateTask)
		api.PATCH("/tasks/:id", h.UpdateTask)
		api.POST("/tasks/:id/toggle", h.ToggleTask)
		api.POST("/tasks/:id/tomorrow", h.MoveTaskToTomorrow)
		api.DELETE("/tasks/:id", h.DeleteTask)

		api.GET("/routines", h.ListRoutines)
		api.POST("/routines", h.CreateRoutine)
		api.PATCH("/routines/:id", h.UpdateRoutine)
		api.DELETE("/routines/:id", h.DeleteRoutine)

		api.GET("/categories", h.ListCategories)
		api.POST("/categories", h.CreateCategory)
		api.PATCH("/categories/:id", h.UpdateCategory)
		api.DELETE("/categories/:id", h.DeleteCategory)

		api.GET("/wishlists", h.ListWishLists)
		api.POST("/wishlists", h.CreateWishList)
		api.DELETE("/wishlists/:id", h.DeleteWishList)
		api.GET("/wishlists/:id/items", h.ListWishItems)
		api.POST("/wishlists/:id/items", h.CreateWishItem)
		api.PATCH("/wishitems/:id", h.UpdateWishItem)
		api.DELETE("/wishitems/:id", h.DeleteWishItem)
		api.POST("/wishitems/:id/convert", h.ConvertWishItem)

		api.GET("/profile", h.GetProfile)
		api.PATCH("/profile", h.UpdateProfile)
	}

	return r
}
