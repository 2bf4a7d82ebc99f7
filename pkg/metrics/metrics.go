// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/lsmbench/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 实验任务计数
	ExperimentsTotal prometheus.Counter
	// 运行中的实验任务数
	ExperimentsRunning prometheus.Gauge
	// 失败的实验任务计数
	ExperimentsFailed prometheus.Counter

	// 单次定价调用计数（按后端区分）
	PricingRunsTotal *prometheus.CounterVec
	// 单次定价调用耗时（按后端区分）
	PricingDuration *prometheus.HistogramVec

	// 结果落库计数
	RecordsPersisted prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		// HTTP 指标
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// 实验指标
		ExperimentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "experiments_total",
			Help:      "Total experiment tasks accepted",
		}),
		ExperimentsRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "experiments_running",
			Help:      "Number of experiment tasks currently running",
		}),
		ExperimentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "experiments_failed_total",
			Help:      "Total experiment tasks that failed",
		}),

		// 定价指标
		PricingRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "pricing_runs_total",
			Help:      "Total pricing calls per backend",
		}, []string{"backend"}),
		PricingDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "pricing_duration_seconds",
			Help:      "Pricing call duration in seconds per backend",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"backend"}),

		// 持久化指标
		RecordsPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lsmbench",
			Subsystem: serviceName,
			Name:      "records_persisted_total",
			Help:      "Total run records written to the repository",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ExperimentsTotal,
		m.ExperimentsRunning,
		m.ExperimentsFailed,
		m.PricingRunsTotal,
		m.PricingDuration,
		m.RecordsPersisted,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// ObservePricing 记录一次定价调用
func (m *Metrics) ObservePricing(backend string, seconds float64) {
	m.PricingRunsTotal.WithLabelValues(backend).Inc()
	m.PricingDuration.WithLabelValues(backend).Observe(seconds)
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
