// Package metrics 提供 Prometheus 监控指标
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry 封装本服务暴露的全部指标，底层是 client_golang 默认注册表。
type Registry struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ScheduleJobsTotal    *prometheus.CounterVec
	ScheduleJobDuration  *prometheus.HistogramVec
	ScheduleGenerations  prometheus.Histogram
	ScheduleBestFitness  prometheus.Gauge
	ScheduleStagnations  prometheus.Counter

	MatrixJobsTotal   *prometheus.CounterVec
	MatrixGenerations prometheus.Histogram
	MatrixBestFitness prometheus.Gauge
}

var (
	registry *Registry
	once     sync.Once
)

// Get 返回全局指标注册表，首次调用时向默认 Registerer 注册全部指标。
func Get() *Registry {
	once.Do(func() {
		registry = &Registry{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rotacore_http_requests_total",
				Help: "HTTP 请求总数",
			}, []string{"method", "path", "status"}),

			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rotacore_http_request_duration_seconds",
				Help:    "HTTP 请求延迟",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			}, []string{"method", "path"}),

			ScheduleJobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rotacore_schedule_jobs_total",
				Help: "排班生成作业次数",
			}, []string{"status"}),

			ScheduleJobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "rotacore_schedule_job_duration_seconds",
				Help:    "排班生成作业耗时",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			}, []string{"status"}),

			ScheduleGenerations: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "rotacore_schedule_ga_generations",
				Help:    "C4 演化实际运行的世代数",
				Buckets: prometheus.LinearBuckets(0, 25, 16),
			}),

			ScheduleBestFitness: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "rotacore_schedule_ga_best_fitness",
				Help: "最近一次排班演化结束时的最优适应度",
			}),

			ScheduleStagnations: promauto.NewCounter(prometheus.CounterOpts{
				Name: "rotacore_schedule_ga_stagnation_terminations_total",
				Help: "因停滞达到上限而终止的排班演化次数",
			}),

			MatrixJobsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "rotacore_matrix_jobs_total",
				Help: "矩阵生成作业次数",
			}, []string{"mode", "status"}),

			MatrixGenerations: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "rotacore_matrix_ga_generations",
				Help:    "C5 演化实际运行的世代数",
				Buckets: prometheus.LinearBuckets(0, 20, 12),
			}),

			MatrixBestFitness: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "rotacore_matrix_ga_best_fitness",
				Help: "最近一次矩阵演化结束时的最优适应度",
			}),
		}
	})
	return registry
}
