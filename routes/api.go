package routes

import (
	"github.com/address-resolver/app/controllers"
	"github.com/gin-gonic/gin"
)

// SetupAPIRoutes registers the versioned API surface.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/resolve", addressController.ResolveAddress)
			addresses.POST("/resolve/batch", addressController.BatchResolve)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/cache/stats", addressController.GetCacheStats)
			admin.POST("/cache/invalidate", addressController.InvalidateCache)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes registers the unversioned probes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes wires middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	setupMiddleware(router)

	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
