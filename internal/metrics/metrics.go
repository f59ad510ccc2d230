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
		Namespace: "burnview",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "burnview",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Burned-area metrics
	FeaturesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burnview",
		Subsystem: "data",
		Name:      "features_loaded",
		Help:      "Features in the base table",
	})

	LoadDiagnostics = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "burnview",
		Subsystem: "data",
		Name:      "load_diagnostics_total",
		Help:      "Sources or features excluded while loading",
	}, []string{"kind"})

	ViewportQueries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "burnview",
		Subsystem: "viewport",
		Name:      "queries_total",
		Help:      "Viewport filter and aggregate computations",
	})

	ViewportQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "burnview",
		Subsystem: "viewport",
		Name:      "query_duration_seconds",
		Help:      "Duration of viewport filter and aggregate",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	ViewportFeatures = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "burnview",
		Subsystem: "viewport",
		Name:      "visible_features",
		Help:      "Features visible per viewport query",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	})

	Clicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "burnview",
		Subsystem: "session",
		Name:      "clicks_total",
		Help:      "Click events applied, by whether a feature was selected",
	}, []string{"selected"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burnview",
		Subsystem: "session",
		Name:      "active",
		Help:      "Live interaction sessions",
	})

	SessionsClosed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "burnview",
		Subsystem: "session",
		Name:      "closed_total",
		Help:      "Sessions closed, by reason",
	}, []string{"reason"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "burnview",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})
)

// ObserveViewport records one viewport computation.
func ObserveViewport(elapsed time.Duration, visible int) {
	ViewportQueries.Inc()
	ViewportQueryDuration.Observe(elapsed.Seconds())
	ViewportFeatures.Observe(float64(visible))
}

// ObserveClick records one click event.
func ObserveClick(selected bool) {
	Clicks.WithLabelValues(strconv.FormatBool(selected)).Inc()
}

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

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	}
}
