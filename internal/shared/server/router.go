package server

import (
	"fmt"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"

	"career-mentor/internal/health"
	"career-mentor/internal/mentor"
	"career-mentor/internal/shared/config"
	"career-mentor/internal/shared/metrics"
	"career-mentor/internal/shared/server/middleware"
	"career-mentor/internal/shared/server/respond"
	"career-mentor/internal/shared/telemetry"
)

const analyzeRateGroup = "ANALYZE"

// RouterDeps holds handlers and services needed to build the router.
type RouterDeps struct {
	Config  config.Config
	Mentor  *mentor.Handler
	Health  *health.Service
	Metrics *metrics.Metrics
	// Limiter is shared with tests; nil means a fresh limiter.
	Limiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
	)
	if telemetry.SentryEnabled() {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true, WaitForDelivery: false, Timeout: 2 * time.Second}))
	}
	r.Use(middleware.SecurityHeaders())

	r.GET("/healthz", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	r.GET("/readyz", func(c *gin.Context) {
		report := deps.Health.Ready(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	r.GET("/metrics", deps.Metrics.Handler())

	session := middleware.Session(middleware.SessionConfig{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.Production(),
	})
	limits := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			analyzeRateGroup: middleware.PerMinute(cfg.AnalyzeRatePerMin),
		},
		GroupFor: analyzeGroup,
		Limiter:  deps.Limiter,
		OnLimited: func(c *gin.Context, retryAfter time.Duration) {
			c.String(http.StatusTooManyRequests,
				fmt.Sprintf("Too many analysis requests. Please wait %d seconds and try again.", int(retryAfter.Seconds()+0.999)))
		},
	})

	pages := r.Group("/", session, limits)
	deps.Mentor.RegisterRoutes(pages)

	cors := middleware.CORS(middleware.CORSConfig{
		Origins: cfg.CORSAllowOrigin,
		Methods: []string{http.MethodGet, http.MethodPut},
		MaxAge:  10 * time.Minute,
	})
	api := r.Group("/api/v1", cors, session)
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	deps.Mentor.RegisterAPIRoutes(api)
	// Preflights are answered by the CORS middleware before this runs.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// analyzeGroup puts the two routes that call the analysis service in one
// rate limit bucket. Everything else is unlimited.
func analyzeGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return "-"
	}
	switch c.Request.URL.Path {
	case "/analyze", "/upload-resume":
		return analyzeRateGroup
	}
	return "-"
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
