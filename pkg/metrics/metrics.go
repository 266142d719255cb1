// Package metrics はポータルのPrometheusメトリクスを提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics はポータルが公開するメトリクスの集合。
// テストで独立して検証できるよう、既定のレジストリは使わない。
type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	apiCallsTotal       *prometheus.CounterVec
	apiCallDuration     *prometheus.HistogramVec
}

// New はメトリクスを生成してレジストリに登録する。
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_http_in_flight_requests",
			Help: "In-flight portal HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Total number of portal HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Portal HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		apiCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_api_calls_total",
			Help: "Total number of backend API calls by outcome.",
		}, []string{"method", "status"}),
		apiCallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_api_call_duration_seconds",
			Help:    "Backend API call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.apiCallsTotal,
		m.apiCallDuration,
	)
	return m
}

// Handler は /metrics 用のハンドラーを返す。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware はリクエスト数、所要時間、処理中の数を記録するGinミドルウェアを返す。
// ラベルにはパスではなくルート定義を使う。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.httpInFlight.Inc()
		defer m.httpInFlight.Dec()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// ObserveAPICall はバックエンドAPI呼び出しの結果を記録する。
// httpclient.Observerとして使用する。通信失敗のstatusは0で "error" として数える。
func (m *Metrics) ObserveAPICall(method string, status int, elapsed time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.apiCallsTotal.WithLabelValues(method, label).Inc()
	m.apiCallDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
