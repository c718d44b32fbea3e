package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// Webhook endpoint for push notifications; payload auth is handled by
	// the deployment in front of this (reverse proxy or shared secret).
	r.POST("/webhook", h.Webhook)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/repos", h.ListRepositories)
		v1.POST("/sync", h.SyncAllRepositories)

		repos := v1.Group("/repos/:name")
		{
			repos.GET("/status", h.GetMirrorStatus)
			repos.GET("/log", h.GetCommitLog)
			repos.GET("/commit/:hash", h.GetCommit)
			repos.GET("/diff/:a/:b", h.GetDiff)
			repos.GET("/tree/:ref/*path", h.GetTree)
			repos.GET("/blob/:ref/*path", h.GetBlob)
			repos.POST("/sync", h.SyncRepository)
		}
	}

	return r
}
