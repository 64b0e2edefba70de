package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler, authMiddleware gin.HandlerFunc, gatherer prometheus.Gatherer, environment string) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.POST("/contracts", handler.createContract)
	protected.GET("/contracts", handler.listContracts)
	protected.GET("/contracts/:id", handler.getContract)
	protected.PATCH("/contracts/:id", handler.updateContract)
	protected.DELETE("/contracts/:id", handler.deleteContract)

	protected.GET("/timeline", handler.getTimeline)
	protected.GET("/timeline/export", handler.exportTimeline)

	protected.POST("/schedules", handler.createOccurrence)
	protected.GET("/schedules/:id", handler.getOccurrence)
	protected.DELETE("/schedules/:id", handler.deleteOccurrence)
	protected.POST("/schedules/:id/tasks", handler.createTaskFromOccurrence)

	protected.POST("/tasks", handler.createTask)
	protected.GET("/tasks", handler.listTasks)
	protected.GET("/tasks/:id", handler.getTask)
	protected.DELETE("/tasks/:id", handler.deleteTask)

	protected.POST("/work-items/:id/complete", handler.completeWorkItem)
	protected.POST("/work-items/:id/cancel", handler.cancelWorkItem)
	protected.PATCH("/work-items/:id", handler.updateWorkItem)

	protected.GET("/service-logs", handler.listServiceLogs)
	protected.GET("/service-logs/:id", handler.getServiceLog)
	protected.PATCH("/service-logs/:id", handler.updateServiceLog)
	protected.GET("/service-logs/:id/report", handler.serviceLogReport)

	return router
}
