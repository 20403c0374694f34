package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swasthlink/health-api/internal/config"
	"github.com/swasthlink/health-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(cfg *config.Config, healthH Handler, apiHandlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	registerAadharValidator()

	engine := gin.New()

	r := &Router{
		engine:  engine,
		metrics: newRouterMetrics("health_api"),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RequestsPerSecond,
			Burst: cfg.RateLimit.Burst,
		})
		engine.Use(limiter.RateLimit())
	}

	if cfg.Monitoring.PrometheusEnabled {
		path := cfg.Monitoring.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	root := engine.Group("")
	healthH.RegisterRoutes(root)

	api := engine.Group("/api/v1")
	if cfg.JWT.Secret != "" {
		r.auth = middleware.NewAuthMiddleware(cfg.JWT.Secret)
		api.Use(r.auth.Authenticate())
	}
	for _, h := range apiHandlers {
		h.RegisterRoutes(api)
	}

	return r
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(namespace string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			status := statusLabel(c.Writer.Status())
			r.metrics.requestDuration.WithLabelValues(c.Request.Method, c.FullPath(), status).Observe(v)
			r.metrics.requestTotal.WithLabelValues(c.Request.Method, c.FullPath(), status).Inc()
		}))
		defer timer.ObserveDuration()
		c.Next()
	}
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

// registerAadharValidator adds the `aadhar` binding tag: 12 digits after
// stripping spaces and dashes.
func registerAadharValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("aadhar", func(fl validator.FieldLevel) bool {
		clean := strings.NewReplacer(" ", "", "-", "").Replace(fl.Field().String())
		if len(clean) != 12 {
			return false
		}
		for _, r := range clean {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
}
