package fetcher

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess    = "success"
	resultFailure    = "failure"
	resultUnexpected = "unexpected"
)

// Metrics содержит метрики HTTPClient. Nil-значение допустимо и ничего не записывает.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration prometheus.Histogram
}

// NewMetrics регистрирует метрики в reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "essentialfeed_http_client_requests_total",
			Help: "Completed HTTP client requests by normalized result.",
		}, []string{"result"}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "essentialfeed_http_client_request_duration_seconds",
			Help:    "Time from issuing a request to its completion.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(result string, started time.Time) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(result).Inc()
	m.Duration.Observe(time.Since(started).Seconds())
}
