// Package metrics 暴露 Prometheus 指标：HTTP 请求、状态流转、批次发布与统计缓存。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"enib-internships/backend/internal/statistics"
)

const namespace = "internships"

// Metrics 业务指标集合；nil 接收者上的方法均为空操作
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	transitions    *prometheus.CounterVec
	launches       *prometheus.CounterVec
	launchDuration prometheus.Histogram
}

// New 创建独立 Registry 并注册全部指标；stats 非空时同时导出统计缓存
func New(stats *statistics.Cache) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求数",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "实习状态流转次数",
		}, []string{"target", "outcome"}),
		launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "批次发布次数",
		}, []string{"outcome"}),
		launchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "launch_duration_seconds",
			Help:      "批次发布耗时",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.transitions,
		m.launches,
		m.launchDuration,
	)
	if stats != nil {
		reg.MustRegister(NewStatisticsCollector(stats))
	}
	return m
}

// Registry 返回底层 Registry（测试使用）
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP 记录一次 HTTP 请求
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveTransition 记录一次状态流转；outcome 为 ok | forbidden | error
func (m *Metrics) ObserveTransition(target, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(target, outcome).Inc()
}

// ObserveLaunch 记录一次批次发布；outcome 为 ok | failed | rejected
func (m *Metrics) ObserveLaunch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.launches.WithLabelValues(outcome).Inc()
	m.launchDuration.Observe(elapsed.Seconds())
}
