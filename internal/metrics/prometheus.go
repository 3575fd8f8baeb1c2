package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_evaluations_total",
			Help: "Essay evaluations by the path that produced them",
		},
		[]string{"source"},
	)

	EvaluationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "essayhub_evaluation_duration_seconds",
			Help:    "End-to-end essay evaluation duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"source"},
	)

	EvaluationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "essayhub_evaluation_score",
			Help:    "Distribution of essay scores",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_upstream_failures_total",
			Help: "Degraded calls to external NLP, grammar and LLM services",
		},
		[]string{"service"},
	)

	FriendTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_friend_transitions_total",
			Help: "Friend request state transitions",
		},
		[]string{"transition"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "essayhub_notifications_total",
			Help: "Notifications created by type",
		},
		[]string{"type"},
	)

	WebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "essayhub_websocket_clients",
			Help: "Connected notification stream clients",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(EvaluationsTotal)
		prometheus.MustRegister(EvaluationDuration)
		prometheus.MustRegister(EvaluationScore)
		prometheus.MustRegister(UpstreamFailures)
		prometheus.MustRegister(FriendTransitions)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(NotificationsSent)
		prometheus.MustRegister(WebSocketClients)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
