package qsim

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const latencyWindowSize = 1000

/*
Metrics tracks what the evaluator has been doing. The plain fields back
Snapshot; the Prometheus collectors mirror them for scraping.
*/
type Metrics struct {
	mu sync.RWMutex

	WorkerCount        int
	JobQueueSize       int
	JobCount           int64
	FailedJobs         int64
	RejectedJobs       int64
	SchedulingFailures int64
	TotalJobTime       time.Duration
	QueuedJobs         int64
	TotalQueueWait     time.Duration
	AverageQueueWait   time.Duration
	AverageJobLatency  time.Duration
	P95JobLatency      time.Duration
	P99JobLatency      time.Duration
	JobSuccessRate     float64

	latencies []time.Duration

	jobsTotal   *prometheus.CounterVec
	jobDuration prometheus.Histogram
	queueWait   prometheus.Histogram
	rejected    prometheus.Counter
	queueDepth  prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		latencies: make([]time.Duration, 0, latencyWindowSize),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qsim",
			Subsystem: "evaluator",
			Name:      "jobs_total",
			Help:      "Evaluations run, by outcome.",
		}, []string{"status"}),
		jobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qsim",
			Subsystem: "evaluator",
			Name:      "job_duration_seconds",
			Help:      "Wall time of a single evaluation.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		queueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "qsim",
			Subsystem: "evaluator",
			Name:      "queue_wait_seconds",
			Help:      "Time between scheduling a job and a worker picking it up.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qsim",
			Subsystem: "evaluator",
			Name:      "rejected_jobs_total",
			Help:      "Jobs refused before running, by a regulator or a full queue.",
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qsim",
			Subsystem: "evaluator",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker.",
		}),
	}
}

// Collectors returns the Prometheus collectors so callers can register them.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.jobsTotal, m.jobDuration, m.queueWait, m.rejected, m.queueDepth}
}

func (m *Metrics) recordJobExecution(startTime time.Time, success bool) {
	duration := time.Since(startTime)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalJobTime += duration
	m.JobCount++

	status := "success"
	if !success {
		m.FailedJobs++
		status = "failure"
	}

	m.JobSuccessRate = float64(m.JobCount-m.FailedJobs) / float64(m.JobCount)
	m.updateLatencyPercentiles(duration)

	m.jobsTotal.WithLabelValues(status).Inc()
	m.jobDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordQueueWait(wait time.Duration) {
	m.mu.Lock()
	m.QueuedJobs++
	m.TotalQueueWait += wait
	m.AverageQueueWait = m.TotalQueueWait / time.Duration(m.QueuedJobs)
	m.mu.Unlock()

	m.queueWait.Observe(wait.Seconds())
}

func (m *Metrics) recordRejection() {
	m.mu.Lock()
	m.RejectedJobs++
	m.mu.Unlock()

	m.rejected.Inc()
}

func (m *Metrics) recordSchedulingFailure() {
	m.mu.Lock()
	m.SchedulingFailures++
	m.mu.Unlock()

	m.rejected.Inc()
}

func (m *Metrics) setQueueSize(n int) {
	m.mu.Lock()
	m.JobQueueSize = n
	m.mu.Unlock()

	m.queueDepth.Set(float64(n))
}

// updateLatencyPercentiles assumes the caller holds the lock.
func (m *Metrics) updateLatencyPercentiles(duration time.Duration) {
	m.AverageJobLatency = m.TotalJobTime / time.Duration(m.JobCount)

	m.latencies = append(m.latencies, duration)
	if len(m.latencies) > latencyWindowSize {
		m.latencies = m.latencies[1:]
	}

	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	m.P95JobLatency = sorted[min(int(float64(len(sorted))*0.95), len(sorted)-1)]
	m.P99JobLatency = sorted[min(int(float64(len(sorted))*0.99), len(sorted)-1)]
}

// Snapshot returns a copy of the plain counters.
func (m *Metrics) Snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]any{
		"worker_count":        m.WorkerCount,
		"queue_size":          m.JobQueueSize,
		"job_count":           m.JobCount,
		"failed_jobs":         m.FailedJobs,
		"rejected_jobs":       m.RejectedJobs,
		"scheduling_failures": m.SchedulingFailures,
		"success_rate":        m.JobSuccessRate,
		"avg_latency":         m.AverageJobLatency.Milliseconds(),
		"p95_latency":         m.P95JobLatency.Milliseconds(),
		"p99_latency":         m.P99JobLatency.Milliseconds(),
		"avg_queue_wait":      m.AverageQueueWait.Milliseconds(),
	}
}
