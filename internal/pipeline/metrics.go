package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks delivery counts two ways: atomic counters backing the
// JSON /stats endpoint, and Prometheus counters registered with the given
// registry for scraping.
type Metrics struct {
	received   uint64
	emitted    uint64
	skipped    uint64
	failed     uint64
	duplicates uint64

	totalLatencyMS uint64
	startTime      time.Time

	promReceived   prometheus.Counter
	promEmitted    prometheus.Counter
	promSkipped    prometheus.Counter
	promFailed     prometheus.Counter
	promDuplicates prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		startTime: time.Now(),
		promReceived: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "webhook_pipeline",
			Name:      "deliveries_received_total",
			Help:      "Total webhook deliveries pulled off the queue",
		}),
		promEmitted: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "webhook_pipeline",
			Name:      "events_emitted_total",
			Help:      "Total deliveries normalized and stored",
		}),
		promSkipped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "webhook_pipeline",
			Name:      "events_skipped_total",
			Help:      "Total deliveries dropped by the configured filters",
		}),
		promFailed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "webhook_pipeline",
			Name:      "events_failed_total",
			Help:      "Total deliveries that failed parsing, filtering, or storage",
		}),
		promDuplicates: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "webhook_pipeline",
			Name:      "deliveries_duplicate_total",
			Help:      "Total deliveries dropped as duplicates",
		}),
	}
}

func (m *Metrics) IncReceived() {
	atomic.AddUint64(&m.received, 1)
	m.promReceived.Inc()
}

func (m *Metrics) IncEmitted() {
	atomic.AddUint64(&m.emitted, 1)
	m.promEmitted.Inc()
}

func (m *Metrics) IncSkipped() {
	atomic.AddUint64(&m.skipped, 1)
	m.promSkipped.Inc()
}

func (m *Metrics) IncFailed() {
	atomic.AddUint64(&m.failed, 1)
	m.promFailed.Inc()
}

func (m *Metrics) IncDuplicate() {
	atomic.AddUint64(&m.duplicates, 1)
	m.promDuplicates.Inc()
}

func (m *Metrics) AddLatency(ms int64) {
	atomic.AddUint64(&m.totalLatencyMS, uint64(ms))
}

func (m *Metrics) GetReceived() uint64 {
	return atomic.LoadUint64(&m.received)
}

func (m *Metrics) GetEmitted() uint64 {
	return atomic.LoadUint64(&m.emitted)
}

func (m *Metrics) GetSkipped() uint64 {
	return atomic.LoadUint64(&m.skipped)
}

func (m *Metrics) GetFailed() uint64 {
	return atomic.LoadUint64(&m.failed)
}

func (m *Metrics) GetDuplicates() uint64 {
	return atomic.LoadUint64(&m.duplicates)
}

func (m *Metrics) AvgLatencyMS() float64 {
	emitted := atomic.LoadUint64(&m.emitted)
	if emitted == 0 {
		return 0
	}
	total := atomic.LoadUint64(&m.totalLatencyMS)
	return float64(total) / float64(emitted)
}

func (m *Metrics) EPS() float64 {
	secs := time.Since(m.startTime).Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(m.GetEmitted()) / secs
}

func (m *Metrics) StartTime() time.Time {
	return m.startTime
}
