package router

import (
	"SecureDrop/config"
	"SecureDrop/internal/handler"
	"SecureDrop/utils"

	"github.com/gin-gonic/gin"
)

// InitRouter builds API routes.
func InitRouter() *gin.Engine {
	r := gin.Default()
	r.Use(utils.CORSMiddleware())

	// One limiter shared by every anonymous token-bearing route.
	rateLimited := utils.RateLimitMiddleware(config.AppConfig.DownloadRate, config.AppConfig.DownloadBurst)

	// Share URLs are <base-url>/download/<token>, nothing else in them.
	r.GET("/download/:token", rateLimited, handler.DownloadFile)

	api := r.Group("/api")
	{
		api.POST("/upload", handler.UploadFile)
		api.POST("/link", handler.IssueLinkHandler)
		api.GET("/share/:token/status", rateLimited, handler.GetLinkStatus)
		api.POST("/download/:token/url", rateLimited, handler.DownloadURL)

		manage := api.Group("/manage")
		manage.Use(utils.ManageAuthMiddleware())
		{
			manage.GET("/status", handler.GetManagedLinkStatus)
			manage.POST("/revoke", handler.RevokeLinkHandler)
			manage.GET("/logs", handler.GetDownloadLogs)
			manage.GET("/stats", handler.GetDownloadStats)
		}
	}
	return r
}
