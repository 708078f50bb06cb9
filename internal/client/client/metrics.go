package client

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const requestsMetricName = "dnahub_api_client_requests_total"

// Metrics counts outgoing API calls. A nil *Metrics is a no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dnahub",
				Subsystem: "api_client",
				Name:      "requests_total",
				Help:      "Total number of API requests by outcome.",
			},
			[]string{"method", "path", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dnahub",
				Subsystem: "api_client",
				Name:      "request_duration_seconds",
				Help:      "API request latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, status).Inc()
	m.duration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// RequestStat is one row of the request counter.
type RequestStat struct {
	Method string
	Path   string
	Status string
	Count  float64
}

// RequestStats reads the request counter back from g, sorted by path,
// method and status.
func RequestStats(g prometheus.Gatherer) ([]RequestStat, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var stats []RequestStat
	for _, mf := range families {
		if mf.GetName() != requestsMetricName {
			continue
		}
		for _, metric := range mf.GetMetric() {
			s := RequestStat{Count: metric.GetCounter().GetValue()}
			for _, lp := range metric.GetLabel() {
				switch lp.GetName() {
				case "method":
					s.Method = lp.GetValue()
				case "path":
					s.Path = lp.GetValue()
				case "status":
					s.Status = lp.GetValue()
				}
			}
			stats = append(stats, s)
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Path != stats[j].Path {
			return stats[i].Path < stats[j].Path
		}
		if stats[i].Method != stats[j].Method {
			return stats[i].Method < stats[j].Method
		}
		return stats[i].Status < stats[j].Status
	})
	return stats, nil
}
