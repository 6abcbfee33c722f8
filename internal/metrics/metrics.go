// Package metrics exposes workflow counters and HTTP request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mockwise"

// Metrics owns a private registry so several instances can coexist in tests.
type Metrics struct {
	registry  *prometheus.Registry
	scoring   *prometheus.CounterVec
	saves     *prometheus.CounterVec
	questions prometheus.Counter
	requests  *prometheus.CounterVec
	duration  *prometheus.SummaryVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		scoring: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_total",
			Help:      "Answer scoring attempts by outcome.",
		}, []string{"outcome"}),
		saves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answer_saves_total",
			Help:      "Answer save attempts by outcome.",
		}, []string{"outcome"}),
		questions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_generated_total",
			Help:      "Interview questions produced by the generative service.",
		}),
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		duration: factory.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Objectives: map[float64]float64{
				0.5:  0.05,
				0.9:  0.01,
				0.99: 0.001,
			},
		}, []string{"method", "path", "status_code"}),
	}
}

func (m *Metrics) ObserveScoring(outcome string) {
	if m == nil {
		return
	}
	m.scoring.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveSave(outcome string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveQuestions(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.questions.Add(float64(count))
}

// Registry is exposed for tests and for embedding into another exporter.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records count and latency of every request routed by gin.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ctx.Writer.Status())
		method := ctx.Request.Method

		m.duration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(method, path, status).Inc()
	}
}
