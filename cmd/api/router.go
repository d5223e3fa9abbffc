package main

import (
	"context"
	"net/http"
	"time"

	"bookshelf-api/internal/shared/middleware"
	"bookshelf-api/internal/shared/response"
	"bookshelf-api/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Order matters: ClientIP feeds Logger and the rate limiter.
	router.Use(
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(c.Config.HTTP.AllowedOrigins),
		middleware.BodyLimit(c.Config.HTTP.MaxBodyBytes),
	)
	if c.RateLimiter != nil {
		router.Use(c.RateLimiter.Middleware())
	}

	router.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Route not found")
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
		c.BookHandler.RegisterRoutes(v1)
	}

	return router
}

// healthCheckHandler reports 503 when the document store is down. A cache outage only degrades.
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"

		storeStatus := "ok"
		if err := appCtx.CheckStore(ctx); err != nil {
			storeStatus = "error: " + err.Error()
			status = "down"
		}

		cacheStatus := "disabled"
		if appCtx.Redis != nil {
			cacheStatus = "ok"
			if err := appCtx.Redis.HealthCheck(ctx); err != nil {
				cacheStatus = "error: " + err.Error()
				if status == "ok" {
					status = "degraded"
				}
			}
		}

		services := gin.H{
			"store": gin.H{"driver": appCtx.Config.Store.Driver, "status": storeStatus},
			"cache": cacheStatus,
		}
		if appCtx.DB != nil {
			services["pool"] = appCtx.DB.Stats()
		}

		code := http.StatusOK
		if storeStatus != "ok" {
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
			"services":  services,
		})
	}
}
