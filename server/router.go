package server

import (
	"github.com/Conceptual-Machines/magda-tunes-go/agents/coordination"
	"github.com/Conceptual-Machines/magda-tunes-go/config"
	"github.com/Conceptual-Machines/magda-tunes-go/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// SetupRouter builds the HTTP API
func SetupRouter(cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(RecoverWithSentry())
	router.Use(SentryMiddleware())
	router.Use(RequestTracking(metrics.NewSentryMetrics()))

	h := NewTrackHandler(coordination.NewOrchestrator(cfg), version)
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/moods", h.ListMoods)
		v1.GET("/instruments", h.ListInstruments)

		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		v1.POST("/tracks", RateLimit(limiter), h.CreateTrack)
	}

	return router
}
