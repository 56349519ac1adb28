package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors on a private registry.
// All recording methods are safe on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	quizStarted     prometheus.Counter
	quizFinished    *prometheus.CounterVec
	quizClaims      *prometheus.CounterVec
	resultsSwept    prometheus.Counter
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		quizStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_started_total",
			Help: "Quizzes started",
		}),
		quizFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_finished_total",
				Help: "Quizzes finished, by anonymous or signed-in user",
			},
			[]string{"mode"},
		),
		quizClaims: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_claims_total",
				Help: "Anonymous quiz claims, by outcome",
			},
			[]string{"status"},
		),
		resultsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "anonymous_results_swept_total",
			Help: "Expired anonymous quiz results removed",
		}),
	}
	m.registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.requestCounter,
		m.requestDuration,
		m.quizStarted,
		m.quizFinished,
		m.quizClaims,
		m.resultsSwept,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// QuizStarted counts a new quiz
func (m *Metrics) QuizStarted() {
	if m == nil {
		return
	}
	m.quizStarted.Inc()
}

// QuizFinished counts a finished quiz; mode is "anonymous" or "user"
func (m *Metrics) QuizFinished(mode string) {
	if m == nil {
		return
	}
	m.quizFinished.WithLabelValues(mode).Inc()
}

// QuizClaimed counts a claim attempt; status is "ok" or "failed"
func (m *Metrics) QuizClaimed(status string) {
	if m == nil {
		return
	}
	m.quizClaims.WithLabelValues(status).Inc()
}

// ResultsSwept adds n removed anonymous results
func (m *Metrics) ResultsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.resultsSwept.Add(float64(n))
}

// Middleware records request count and latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.requestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.requestDuration.WithLabelValues(c.Request.Method, endpoint).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
