package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "transcendent/backend/docs"
	"transcendent/backend/internal/auth"
	"transcendent/backend/internal/handler"
	"transcendent/backend/internal/logger"
	"transcendent/backend/internal/metrics"
)

type Config struct {
	Handler        *handler.Handler
	Sessions       auth.SessionValidator
	Log            *zap.Logger
	RequestTimeout time.Duration
}

// New builds the HTTP engine with every route of the client API.
func New(cfg Config) *gin.Engine {
	h := cfg.Handler

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		logger.GinLogger(cfg.Log),
		gin.CustomRecovery(h.Recover),
		metrics.Middleware(),
	)
	router.NoMethod(h.MethodNotAllowed)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireSession := auth.SessionMiddleware(cfg.Sessions, cfg.Log, h.Fail)

	api := router.Group("", requestTimeout(cfg.RequestTimeout))
	{
		api.POST("/login", h.Wrap(h.Login))
		api.POST("/logout", requireSession, h.Wrap(h.Logout))
		api.POST("/logout/", requireSession, h.Wrap(h.Logout))

		serverRoutes := api.Group("/server", requireSession)
		{
			serverRoutes.GET("/find", h.Wrap(h.FindServers))
			serverRoutes.POST("/host", h.Wrap(h.HostGame))
			serverRoutes.POST("/renew", h.Wrap(h.RenewGame))
			serverRoutes.POST("/remove", h.Wrap(h.DeleteGame))
			serverRoutes.GET("/migrate", h.Wrap(h.MigrateGame))
			serverRoutes.POST("/migrate", h.Wrap(h.MigrateGame))
		}
	}

	// Streams outlive the request timeout.
	router.GET("/server/watch", requireSession, h.Wrap(h.WatchServers))

	return router
}

// requestTimeout bounds the context handed to the stores.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
