package routes

import (
	"checklist-api/internal/controller"
	"checklist-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func Router(h *controller.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Health for load balancers and K8s probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	profiles := router.Group("/profiles")
	{
		profiles.POST("", h.CreateProfile)
		profiles.GET("", h.ListProfiles)
		profiles.POST("/login", h.Login)
		profiles.PUT("/:id", h.UpdateProfile)
		profiles.DELETE("/:id", h.DeleteProfile)
		profiles.GET("/:id/checklists", h.ListChecklists)
		profiles.GET("/:id/share-requests", h.ListPendingShares)
	}

	checklists := router.Group("/checklists")
	{
		checklists.POST("", h.CreateChecklist)
		checklists.GET("/:id", h.GetChecklist)
		checklists.PUT("/:id", h.UpdateChecklist)
		checklists.DELETE("/:id", h.DeleteChecklist)
		checklists.DELETE("/:id/verified", h.DeleteChecklistVerified)
		checklists.GET("/:id/tasks", h.ListTasks)
		checklists.POST("/:id/timer-logs", h.AppendTimerLog)
		checklists.GET("/:id/timer-logs", h.ListTimerLogs)
	}

	tasks := router.Group("/tasks")
	{
		tasks.POST("", h.CreateTask)
		tasks.PATCH("/:id", h.UpdateTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	shares := router.Group("/share-requests")
	{
		shares.POST("", h.CreateShareRequest)
		shares.POST("/:id/respond", h.RespondShareRequest)
	}

	return router
}
