package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricsJob = "domainwatch"

// Metrics 一次运行的计数器，运行结束后推送到 Pushgateway。nil 时所有方法为空操作。
type Metrics struct {
	Registry *prometheus.Registry

	lookups      *prometheus.CounterVec
	cacheHits    prometheus.Counter
	cacheEvicted prometheus.Counter
	reports      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domainwatch_whois_lookups_total",
			Help: "Live WHOIS lookups by result.",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "domainwatch_cache_hits_total",
			Help: "Expiry dates served from the cache.",
		}),
		cacheEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "domainwatch_cache_evicted_total",
			Help: "Cache entries dropped because the expiry is too close.",
		}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "domainwatch_reports_total",
			Help: "Reports delivered by destination and result.",
		}, []string{"dest", "result"}),
	}
	m.Registry.MustRegister(m.lookups, m.cacheHits, m.cacheEvicted, m.reports)
	return m
}

func (m *Metrics) lookup(result string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result).Inc()
}

func (m *Metrics) cacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) evicted(n int) {
	if m == nil {
		return
	}
	m.cacheEvicted.Add(float64(n))
}

func (m *Metrics) report(dest string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reports.WithLabelValues(dest, result).Inc()
}

// Push 把本次运行的计数推送到 Pushgateway。
func (m *Metrics) Push(ctx context.Context, url string) error {
	if m == nil || url == "" {
		return nil
	}
	return push.New(url, metricsJob).Gatherer(m.Registry).PushContext(ctx)
}
