package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Config struct {
	APISecret  string
	Production bool
}

func NewRouter(svc *Service, cfg Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"service":   "pingerus-admin",
			"timestamp": time.Now().UTC(),
		})
	})

	auth := bearerAuth(cfg.APISecret, cfg.Production, svc.Log)
	monitors := r.Group("/monitors", auth)
	monitors.POST("/register", svc.Register)
	monitors.POST("/batch", svc.RegisterBatch)
	monitors.POST("/:id/force-check", svc.ForceCheck)
	monitors.GET("/:id", svc.Get)
	monitors.DELETE("/:id", svc.Deactivate)

	return r
}
