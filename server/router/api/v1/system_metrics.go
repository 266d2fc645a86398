package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MetricsOverviewResponse represents the overview response of system metrics
type MetricsOverviewResponse struct {
	TotalSubmissions   int64            `json:"total_submissions"`
	SuccessRate        float64          `json:"success_rate"`
	ErrorCount         int64            `json:"error_count"`
	FailuresByCode     map[string]int64 `json:"failures_by_code"`
	HistoryWritten     int64            `json:"history_written"`
	GenerationCalls    int64            `json:"generation_calls"`
	GenerationFailures int64            `json:"generation_failures"`
	P50LatencyMs       int64            `json:"p50_latency_ms"`
	P95LatencyMs       int64            `json:"p95_latency_ms"`
	SampleSize         int              `json:"sample_size"`
	Since              string           `json:"since"`
}

// GetMetricsOverview returns the in-process submission metrics since startup.
// GET /api/system/metrics/overview
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snapshot := s.Metrics.Snapshot()
	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalSubmissions:   snapshot.SubmissionTotal,
		SuccessRate:        snapshot.SuccessRate(),
		ErrorCount:         snapshot.SubmissionFailed,
		FailuresByCode:     snapshot.FailuresByCode,
		HistoryWritten:     snapshot.HistoryWritten,
		GenerationCalls:    snapshot.GenerationTotal,
		GenerationFailures: snapshot.GenerationFailed,
		P50LatencyMs:       snapshot.P50Duration.Milliseconds(),
		P95LatencyMs:       snapshot.P95Duration.Milliseconds(),
		SampleSize:         snapshot.DurationCount,
		Since:              s.startedAt.UTC().Format(time.RFC3339),
	})
}
