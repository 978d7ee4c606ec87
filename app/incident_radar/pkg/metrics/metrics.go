package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GenerationRequests 每个生成目标的调用结果
	GenerationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_radar_generation_requests_total",
			Help: "Total generation requests by target and result",
		},
		[]string{"target", "result"},
	)

	// ExtractionSteps 段落抽取各启发式步骤生效次数
	ExtractionSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_radar_extraction_steps_total",
			Help: "Total number of times an extraction repair step changed a report",
		},
		[]string{"step"},
	)

	// Reports 生成的报告数量
	Reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "incident_radar_reports_total",
			Help: "Total reports built by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)

	// ReportDuration 单份报告的生成耗时
	ReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "incident_radar_report_duration_seconds",
			Help:    "Time spent generating and extracting one report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope"},
	)
)

var registerOnce sync.Once

// Register 注册到默认 registry，可重复调用
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			GenerationRequests,
			ExtractionSteps,
			Reports,
			ReportDuration,
		)
	})
}
