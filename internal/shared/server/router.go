package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-ats/internal/scores"
	"resume-ats/internal/services/health"
	"resume-ats/internal/shared/config"
	"resume-ats/internal/shared/metrics"
	"resume-ats/internal/shared/server/middleware"
)

const (
	healthPath  = "/api/v1/health"
	metricsPath = "/metrics"

	rateGroupScore = "SCORE"
	rateGroupRead  = "READ"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config       config.Config
	ScoreHandler *scores.Handler
	Health       *health.Service
	Limiter      *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Health == nil {
		deps.Health = health.NewService()
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(healthPath, metricsPath),
		middleware.RateLimit(rateLimitConfig(deps.Config, deps.Limiter)),
	)

	r.GET(metricsPath, metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		rep := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !rep.OK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, rep)
	})
	registerMeRoutes(api)
	if deps.ScoreHandler != nil {
		deps.ScoreHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimitConfig throttles scoring harder than reads. Public paths are not limited.
func rateLimitConfig(cfg config.Config, limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	score := middleware.RateLimitRule{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	read := middleware.RateLimitRule{Rate: cfg.RateLimitRPS * 5, Burst: cfg.RateLimitBurst * 2}
	return middleware.RateLimitConfig{
		DefaultGroup: rateGroupRead,
		Limiter:      limiter,
		GroupFor: func(c *gin.Context) string {
			path := c.Request.URL.Path
			switch {
			case path == healthPath || path == metricsPath:
				return "PUBLIC"
			case c.Request.Method == http.MethodPost && strings.HasPrefix(path, "/api/v1/ats/score"):
				return rateGroupScore
			}
			return rateGroupRead
		},
		Rules: map[string]middleware.RateLimitRule{
			rateGroupScore: score,
			rateGroupRead:  read,
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
