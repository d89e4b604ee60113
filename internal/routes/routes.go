package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tracker/internal/handlers"
	"tracker/internal/middleware"
)

// Handlers groups everything SetupRoutes mounts.
type Handlers struct {
	Task      *handlers.TaskHandler
	Goal      *handlers.GoalHandler
	Watchlist *handlers.WatchlistHandler
	Activity  *handlers.ActivityHandler
	User      *handlers.UserHandler
}

func SetupRoutes(r *gin.Engine, jwtSecret []byte, h Handlers) *gin.Engine {
	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// ---- protected
	api := r.Group("/", middleware.AuthMiddleware(jwtSecret))

	tasks := api.Group("/tasks")
	{
		tasks.GET("", h.Task.List)
		tasks.POST("", h.Task.Create)
		tasks.GET("/:id", h.Task.Get)
		tasks.PATCH("/:id", h.Task.Update)
		tasks.DELETE("/:id", h.Task.Delete)
		tasks.POST("/:id/timer/:action", h.Task.Timer)
	}

	goals := api.Group("/goals")
	{
		goals.GET("", h.Goal.List)
		goals.POST("", h.Goal.Create)
		goals.GET("/:id", h.Goal.Get)
		goals.PATCH("/:id", h.Goal.Update)
		goals.DELETE("/:id", h.Goal.Delete)
		goals.POST("/:id/subtasks/:index/toggle", h.Goal.ToggleSubtask)
	}

	watchlist := api.Group("/watchlist")
	{
		watchlist.GET("", h.Watchlist.List)
		watchlist.POST("", h.Watchlist.Create)
		watchlist.GET("/:id", h.Watchlist.Get)
		watchlist.PATCH("/:id", h.Watchlist.Update)
		watchlist.DELETE("/:id", h.Watchlist.Delete)
	}

	api.GET("/history", h.Activity.History)
	api.GET("/analytics", h.Activity.Analytics)

	user := api.Group("/user")
	{
		user.GET("/preferences", h.User.GetPreferences)
		user.PATCH("/preferences", h.User.PatchPreferences)
		user.GET("/export", h.User.Export)
		user.DELETE("/delete", h.User.DeleteAccount)
	}

	return r
}
