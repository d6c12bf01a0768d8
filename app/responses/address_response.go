package responses

import "github.com/address-resolver/app/models"

// ResolveAddressResponse is the single-address resolution response.
type ResolveAddressResponse struct {
	Result           *models.UniqueAddress `json:"result"`
	ProcessingTimeMs int64                 `json:"processing_time_ms"`
	CacheHit         bool                  `json:"cache_hit"`
}

// BatchResolveResponse carries the results of one synchronous batch.
type BatchResolveResponse struct {
	Results          []*models.UniqueAddress `json:"results"`
	Total            int                     `json:"total"`
	Resolved         int                     `json:"resolved"`
	Failed           int                     `json:"failed"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// ErrorResponse is the common error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthCheckResponse reports service health.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// CacheStatsResponse exposes cache counters on the admin surface.
type CacheStatsResponse struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}
