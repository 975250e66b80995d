package webserver

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/halcyon-labs/home-agent/src/config"
)

func attachRoutes(r *gin.Engine, cfg config.Config, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "home-agent", "status": "online", "version": "1.0.0"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authH := NewAuth(cfg.OwnerSecret, []byte(cfg.JWTSecret))
	actionH := NewActions(deps)
	moduleH := NewModules(deps)
	logH := NewLogs(deps)

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/token", authH.Token)

		secured := v1.Use(JWTMiddleware([]byte(cfg.JWTSecret)))
		secured.POST("/message", actionH.Message)
		secured.POST("/action", actionH.Action)
		secured.POST("/action/confirm", actionH.Confirm)
		secured.GET("/capabilities", actionH.Capabilities)
		secured.POST("/conversation/clear", actionH.ClearConversation)

		secured.GET("/modules", moduleH.List)
		secured.GET("/modules/:name", moduleH.Get)
		secured.POST("/modules/:name/enable", moduleH.Enable)
		secured.POST("/modules/:name/disable", moduleH.Disable)

		secured.GET("/logs", logH.Logs)
		secured.GET("/notes", logH.Notes)
		secured.POST("/notes", logH.AddNote)
		secured.GET("/artifacts/:name", logH.Artifact)
	}
}
