package relay

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pasteimg/pasteimg-go/internal/auth"
	"github.com/pasteimg/pasteimg-go/internal/logger"
)

// NewRouter wires the relay surface: health and metrics are open, upload
// and endpoint verification sit behind bearer authentication.
func NewRouter(handler *Handler, jwksClient *auth.JWKSClient, authCfg auth.Config, log *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(logger.Requests(log), gin.Recovery())

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticated := router.Group("/")
	authenticated.Use(auth.Middleware(jwksClient, authCfg))
	{
		authenticated.POST("/upload", handler.Upload)
		authenticated.POST("/verify-endpoint", handler.VerifyEndpoint)
	}

	return router
}
