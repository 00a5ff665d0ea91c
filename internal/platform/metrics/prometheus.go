package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus metrics.
type MetricsManager struct {
	Registry          *prometheus.Registry
	PostsCreatedTotal prometheus.Counter
	PostUpdatesTotal  prometheus.Counter
	PostDeletesTotal  prometheus.Counter
	APIErrorsTotal    *prometheus.CounterVec
	APILatency        *prometheus.HistogramVec
}

func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	postsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "posts_created_total",
		Help:      "Total number of posts created.",
	})
	postUpdatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "post_updates_total",
		Help:      "Total number of posts updated.",
	})
	postDeletesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "post_deletes_total",
		Help:      "Total number of posts deleted.",
	})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route.",
	}, []string{"route", "error_type"})
	apiLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		postsCreatedTotal,
		postUpdatesTotal,
		postDeletesTotal,
		apiErrorsTotal,
		apiLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:          registry,
		PostsCreatedTotal: postsCreatedTotal,
		PostUpdatesTotal:  postUpdatesTotal,
		PostDeletesTotal:  postDeletesTotal,
		APIErrorsTotal:    apiErrorsTotal,
		APILatency:        apiLatency,
	}
}

// StartMetricsServer exposes the registry on /metrics. Blocks, so run it in
// its own goroutine.
func StartMetricsServer(port string, logger *zap.Logger, registry *prometheus.Registry) error {
	if port == "" {
		logger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
