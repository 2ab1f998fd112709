package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projwiz",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "projwiz",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "projwiz",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Region metrics
	RegionUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projwiz",
		Subsystem: "region",
		Name:      "updates_total",
		Help:      "Bounds changes applied, by the action that caused them",
	}, []string{"source"})

	ParseFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projwiz",
		Subsystem: "region",
		Name:      "parse_fallbacks_total",
		Help:      "Input fields that could not be parsed and kept their previous value",
	}, []string{"axis"})

	OutputPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "projwiz",
		Subsystem: "region",
		Name:      "output_publish_errors_total",
		Help:      "Region summaries that could not be delivered",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "projwiz",
		Subsystem: "ws",
		Name:      "active_sessions",
		Help:      "Current number of open region sessions",
	})

	SessionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "projwiz",
		Subsystem: "ws",
		Name:      "events_total",
		Help:      "Client events received on region sessions",
	}, []string{"type"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
