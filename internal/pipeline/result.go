package pipeline

import (
	"time"

	"textlens-backend/internal/analysis"
)

// Run statuses, in lifecycle order.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ProcessingMetadata records how a run was produced.
type ProcessingMetadata struct {
	StartTime     time.Time         `json:"startTime"`
	EndTime       time.Time         `json:"endTime"`
	DurationMs    int64             `json:"durationMs"`
	FileSizeBytes int64             `json:"fileSizeBytes,omitempty"`
	StageTimingMs map[string]int64  `json:"stageTimingMs"`
	ModelVersions map[string]string `json:"modelVersions,omitempty"`
}

// Result is the aggregate output of one analysis run. Analyzer fields are
// nil when the stage failed or was skipped; a run is completed even when
// some stages are missing. Results are immutable once the status reaches
// completed or failed.
type Result struct {
	AnalysisID         string                     `json:"analysisId"`
	Timestamp          time.Time                  `json:"timestamp"`
	Status             string                     `json:"status"`
	FileName           string                     `json:"fileName,omitempty"`
	Keyness            *analysis.KeynessResult    `json:"keyness,omitempty"`
	SemanticClustering *analysis.ClusteringResult `json:"semanticClustering,omitempty"`
	Sentiment          *analysis.SentimentResult  `json:"sentiment,omitempty"`
	TextStatistics     *analysis.TextStatistics   `json:"textStatistics,omitempty"`
	AIInsights         string                     `json:"aiInsights,omitempty"`
	Metadata           *ProcessingMetadata        `json:"metadata,omitempty"`
	Error              string                     `json:"error,omitempty"`
}
