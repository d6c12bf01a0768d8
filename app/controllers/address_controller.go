package controllers

import (
	"net/http"
	"time"

	"github.com/address-resolver/app/models"
	"github.com/address-resolver/app/requests"
	"github.com/address-resolver/app/responses"
	"github.com/address-resolver/app/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressController handles the resolution endpoints.
type AddressController struct {
	resolveService *services.ResolveService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAddressController builds the controller over the resolution and cache
// services. cacheService may be nil when Redis is not configured.
func NewAddressController(resolveService *services.ResolveService, cacheService services.ICacheService, logger *zap.Logger) *AddressController {
	return &AddressController{
		resolveService: resolveService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// ResolveAddress resolves one raw address into structured components.
func (ac *AddressController) ResolveAddress(c *gin.Context) {
	var req requests.ResolveAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	startTime := time.Now()

	if req.Options.UseCache && ac.cacheService != nil {
		if cached, found, err := ac.cacheService.Get(c.Request.Context(), req.Address); err == nil && found {
			c.JSON(http.StatusOK, responses.ResolveAddressResponse{
				Result:           cached,
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	result, err := ac.resolveService.Resolve(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "RESOLVE_ERROR",
			Message: "resolution failed: " + err.Error(),
		})
		return
	}

	if req.Options.UseCache && ac.cacheService != nil {
		if err := ac.cacheService.Set(c.Request.Context(), req.Address, result); err != nil {
			ac.logger.Warn("failed to cache resolution", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.ResolveAddressResponse{
		Result:           result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         false,
	})
}

// BatchResolve resolves a small batch synchronously.
func (ac *AddressController) BatchResolve(c *gin.Context) {
	var req requests.BatchResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   "INVALID_REQUEST",
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	startTime := time.Now()
	results := make([]*models.UniqueAddress, 0, len(req.Addresses))
	resolved, failed := 0, 0

	for _, address := range req.Addresses {
		result, err := ac.resolveService.Resolve(c.Request.Context(), address)
		if err != nil {
			failed++
			results = append(results, &models.UniqueAddress{
				Address: address,
				Status:  models.StatusFailed,
			})
			continue
		}
		if result.Status == models.StatusOK {
			resolved++
		} else {
			failed++
		}
		results = append(results, result)
	}

	c.JSON(http.StatusOK, responses.BatchResolveResponse{
		Results:          results,
		Total:            len(req.Addresses),
		Resolved:         resolved,
		Failed:           failed,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// GetCacheStats exposes cache counters.
func (ac *AddressController) GetCacheStats(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "CACHE_DISABLED",
			Message: "no cache backend configured",
		})
		return
	}

	stats, err := ac.cacheService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_STATS_ERROR",
			Message: "failed to read cache stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.CacheStatsResponse{
		HitRate:    stats.HitRate,
		TotalHits:  stats.TotalHits,
		TotalMiss:  stats.TotalMiss,
		TotalItems: stats.TotalItems,
	})
}

// InvalidateCache clears every cached resolution.
func (ac *AddressController) InvalidateCache(c *gin.Context) {
	if ac.cacheService == nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   "CACHE_DISABLED",
			Message: "no cache backend configured",
		})
		return
	}

	if err := ac.cacheService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   "CACHE_CLEAR_ERROR",
			Message: "failed to clear cache: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// HealthCheck reports service liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.resolveService.GetStartTime())

	cacheStatus := "disabled"
	if ac.cacheService != nil {
		cacheStatus = "healthy"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   "1.0.0",
		Services: map[string]string{
			"resolver": "healthy",
			"cache":    cacheStatus,
		},
	})
}
