package models

import "time"

// AnalyticsSystemMetrics is the in-process instrumentation snapshot served by the
// analytics system endpoint. Averages are over the process lifetime.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	PipelineRuns             uint64    `json:"pipeline_runs"`
	AveragePipelineMs        float64   `json:"average_pipeline_ms"`
	LastSignificantCount     int       `json:"last_significant_count"`
	ReportsFinished          uint64    `json:"reports_finished"`
	ReportsFailed            uint64    `json:"reports_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
