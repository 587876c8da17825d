package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "drheal"

// Recorder owns the Prometheus registry and the in-process request stats.
// All methods are safe on a nil receiver so core packages can run without metrics.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	routeDecisions     *prometheus.CounterVec
	generationAttempts *prometheus.CounterVec
	retrievalDuration  *prometheus.HistogramVec
	emergencies        prometheus.Counter
	ingested           *prometheus.CounterVec

	stats *Stats
}

func New() *Recorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := &Recorder{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		routeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_decisions_total",
			Help:      "Queries routed to each specialist handler.",
		}, []string{"handler"}),
		generationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_attempts_total",
			Help:      "Remote generation attempts by outcome.",
		}, []string{"outcome"}),
		retrievalDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Embedding plus index query latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"result"}),
		emergencies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emergencies_detected_total",
			Help:      "Queries flagged as potential emergencies by triage.",
		}),
		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "knowledge_records_ingested_total",
			Help:      "Knowledge records written to the similarity index.",
		}, []string{"category"}),
		stats: NewStats(1000),
	}

	registry.MustRegister(
		r.httpRequests,
		r.httpDuration,
		r.routeDecisions,
		r.generationAttempts,
		r.retrievalDuration,
		r.emergencies,
		r.ingested,
	)
	return r
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	r.stats.Record(elapsed, status >= 500)
}

func (r *Recorder) RouteDecision(handler string) {
	if r == nil {
		return
	}
	r.routeDecisions.WithLabelValues(handler).Inc()
}

func (r *Recorder) GenerationAttempt(outcome string) {
	if r == nil {
		return
	}
	r.generationAttempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) ObserveRetrieval(elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.retrievalDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (r *Recorder) EmergencyDetected() {
	if r == nil {
		return
	}
	r.emergencies.Inc()
}

func (r *Recorder) Ingested(category string, count int) {
	if r == nil || count <= 0 {
		return
	}
	r.ingested.WithLabelValues(category).Add(float64(count))
}

func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return r.stats.Snapshot()
}

// Snapshot is the summary served by the detailed health check.
type Snapshot struct {
	AvgResponseTime     float64   `json:"avg_response_time"`
	TotalRequests       int64     `json:"total_requests"`
	TotalErrors         int64     `json:"total_errors"`
	UptimeSeconds       float64   `json:"uptime_seconds"`
	RecentResponseTimes []float64 `json:"recent_response_times"`
}

// Stats keeps a bounded window of response times (seconds) plus totals.
type Stats struct {
	mu       sync.Mutex
	window   []float64
	next     int
	filled   bool
	requests int64
	errors   int64
	started  time.Time
}

func NewStats(size int) *Stats {
	if size <= 0 {
		size = 1000
	}
	return &Stats{
		window:  make([]float64, size),
		started: time.Now(),
	}
}

func (s *Stats) Record(elapsed time.Duration, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window[s.next] = elapsed.Seconds()
	s.next = (s.next + 1) % len(s.window)
	if s.next == 0 {
		s.filled = true
	}
	s.requests++
	if failed {
		s.errors++
	}
}

func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := s.ordered()
	var sum float64
	for _, v := range ordered {
		sum += v
	}
	avg := 0.0
	if len(ordered) > 0 {
		avg = sum / float64(len(ordered))
	}

	recent := ordered
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}

	return Snapshot{
		AvgResponseTime:     avg,
		TotalRequests:       s.requests,
		TotalErrors:         s.errors,
		UptimeSeconds:       time.Since(s.started).Seconds(),
		RecentResponseTimes: append([]float64{}, recent...),
	}
}

// ordered returns the window oldest-first. Caller holds the lock.
func (s *Stats) ordered() []float64 {
	if !s.filled {
		return s.window[:s.next]
	}
	out := make([]float64, 0, len(s.window))
	out = append(out, s.window[s.next:]...)
	return append(out, s.window[:s.next]...)
}
