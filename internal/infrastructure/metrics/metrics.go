// Package metrics Prometheus 指標：HTTP 請求、選取結果與 session 數量
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flavor_pairing"

// Metrics 使用獨立 Registry，同一行程可建立多份（測試）
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	activeRequests  prometheus.Gauge

	selections        *prometheus.CounterVec
	selectionDuration *prometheus.HistogramVec
}

// New 創建並註冊全部指標
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_active_requests",
				Help:      "Number of in-flight HTTP requests",
			},
		),
		selections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selections_total",
				Help:      "Selector runs by mode and outcome",
			},
			[]string{"mode", "result"},
		),
		selectionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "selection_duration_seconds",
				Help:      "Selector run time in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"mode"},
		),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.requestCount,
		m.activeRequests,
		m.selections,
		m.selectionDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// RegisterSessionGauge 以 fn 回報目前記憶體中的 session 數
func (m *Metrics) RegisterSessionGauge(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Sessions held in memory",
		},
		func() float64 { return float64(fn()) },
	))
}

// RequestStarted 請求開始
func (m *Metrics) RequestStarted() {
	m.activeRequests.Inc()
}

// RecordRequest 請求結束
func (m *Metrics) RecordRequest(method, route string, status int, duration time.Duration) {
	m.activeRequests.Dec()
	statusStr := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, route, statusStr).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, route, statusStr).Inc()
}

// ObserveSelection 實作 selector.Observer
func (m *Metrics) ObserveSelection(mode string, success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	m.selections.WithLabelValues(mode, result).Inc()
	m.selectionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// Handler /metrics 的 HTTP 處理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
