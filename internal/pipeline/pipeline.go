// Package pipeline runs the analyzer stages for one document and folds
// their outputs into a single result.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"textlens-backend/internal/analysis"
	"textlens-backend/internal/shared/metrics"
	"textlens-backend/internal/shared/telemetry"
	"textlens-backend/internal/textproc"
)

// Stage names used in timings, logs and metrics.
const (
	stagePreprocess = "preprocess"
	stageKeyness    = "keyness"
	stageClustering = "semantic_clustering"
	stageSentiment  = "sentiment"
	stageStatistics = "text_statistics"
	stageEnrichment = "enrichment"
)

// KeynessStage scores document words against a reference corpus.
type KeynessStage interface {
	Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*analysis.KeynessResult, error)
}

// ClusteringStage groups vocabulary into semantic themes.
type ClusteringStage interface {
	Cluster(ctx context.Context, pre *textproc.PreprocessedText) (*analysis.ClusteringResult, error)
}

// SentimentStage scores document polarity.
type SentimentStage interface {
	Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*analysis.SentimentResult, error)
}

// StatisticsStage computes counts and readability.
type StatisticsStage interface {
	Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*analysis.TextStatistics, error)
}

// Enricher adds optional model commentary after the analyzers finish.
type Enricher interface {
	AnalyzeThemes(ctx context.Context, text string) (string, error)
}

// Pipeline owns the stages for a run. All fields except Enricher are
// required; a nil Enricher disables commentary.
type Pipeline struct {
	Preprocessor textproc.Preprocessor
	Keyness      KeynessStage
	Clustering   ClusteringStage
	Sentiment    SentimentStage
	Statistics   StatisticsStage
	Enricher     Enricher
	EnrichModel  string
	StageTimeout time.Duration
}

// Run preprocesses text once, fans the four analyzers out concurrently
// against the shared immutable result, then joins. A stage failure or
// panic drops that stage's field; only a preprocessing failure fails the
// run.
func (p *Pipeline) Run(ctx context.Context, analysisID, fileName string, fileSize int64, text string) *Result {
	start := time.Now().UTC()
	timings := make(map[string]int64, 6)

	res := &Result{
		AnalysisID: analysisID,
		Timestamp:  start,
		Status:     StatusProcessing,
		FileName:   fileName,
	}

	pre, err := p.preprocess(ctx, text, timings)
	if err != nil {
		res.Status = StatusFailed
		res.Error = fmt.Sprintf("preprocessing failed: %v", err)
		res.Metadata = p.metadata(start, fileSize, timings)
		metrics.IncStageFailed(stagePreprocess)
		telemetry.Error("pipeline.preprocess_failed", map[string]any{
			"analysis_id": analysisID,
			"error":       err.Error(),
		})
		return res
	}

	var wg sync.WaitGroup
	wg.Add(4)

	var mu sync.Mutex
	record := func(stage string, elapsed time.Duration, err error) {
		mu.Lock()
		timings[stage] = elapsed.Milliseconds()
		mu.Unlock()
		if err != nil {
			metrics.IncStageFailed(stage)
			telemetry.Warn("pipeline.stage_failed", map[string]any{
				"analysis_id": analysisID,
				"stage":       stage,
				"error":       err.Error(),
			})
		}
	}

	go func() {
		defer wg.Done()
		out, elapsed, err := runStage(ctx, p.StageTimeout, func(sctx context.Context) (*analysis.KeynessResult, error) {
			return p.Keyness.Analyze(sctx, pre)
		})
		record(stageKeyness, elapsed, err)
		if err == nil {
			res.Keyness = out
		}
	}()

	go func() {
		defer wg.Done()
		out, elapsed, err := runStage(ctx, p.StageTimeout, func(sctx context.Context) (*analysis.ClusteringResult, error) {
			return p.Clustering.Cluster(sctx, pre)
		})
		record(stageClustering, elapsed, err)
		if err == nil {
			res.SemanticClustering = out
		}
	}()

	go func() {
		defer wg.Done()
		out, elapsed, err := runStage(ctx, p.StageTimeout, func(sctx context.Context) (*analysis.SentimentResult, error) {
			return p.Sentiment.Analyze(sctx, pre)
		})
		record(stageSentiment, elapsed, err)
		if err == nil {
			res.Sentiment = out
		}
	}()

	go func() {
		defer wg.Done()
		out, elapsed, err := runStage(ctx, p.StageTimeout, func(sctx context.Context) (*analysis.TextStatistics, error) {
			return p.Statistics.Analyze(sctx, pre)
		})
		record(stageStatistics, elapsed, err)
		if err == nil {
			res.TextStatistics = out
		}
	}()

	wg.Wait()

	if p.Enricher != nil {
		out, elapsed, err := runStage(ctx, p.StageTimeout, func(sctx context.Context) (string, error) {
			return p.Enricher.AnalyzeThemes(sctx, pre.Raw)
		})
		record(stageEnrichment, elapsed, err)
		if err == nil {
			res.AIInsights = out
		}
	}

	res.Status = StatusCompleted
	res.Metadata = p.metadata(start, fileSize, timings)
	metrics.ObservePipelineDurationMs(float64(res.Metadata.DurationMs))

	return res
}

func (p *Pipeline) preprocess(ctx context.Context, text string, timings map[string]int64) (*textproc.PreprocessedText, error) {
	stageStart := time.Now()
	pre, err := p.Preprocessor.Preprocess(ctx, text)
	timings[stagePreprocess] = time.Since(stageStart).Milliseconds()
	return pre, err
}

func (p *Pipeline) metadata(start time.Time, fileSize int64, timings map[string]int64) *ProcessingMetadata {
	end := time.Now().UTC()
	versions := map[string]string{"preprocessor": p.Preprocessor.Name()}
	if p.Enricher != nil && p.EnrichModel != "" {
		versions["ollama"] = p.EnrichModel
	}
	return &ProcessingMetadata{
		StartTime:     start,
		EndTime:       end,
		DurationMs:    end.Sub(start).Milliseconds(),
		FileSizeBytes: fileSize,
		StageTimingMs: timings,
		ModelVersions: versions,
	}
}

// runStage executes fn under the stage timeout with panic isolation. The
// caller is released when the timeout fires even if fn never observes its
// context.
func runStage[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, time.Duration, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type stageOut struct {
		val T
		err error
	}

	start := time.Now()
	ch := make(chan stageOut, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				ch <- stageOut{zero, fmt.Errorf("stage panic: %v", r)}
			}
		}()
		v, err := fn(sctx)
		ch <- stageOut{v, err}
	}()

	select {
	case o := <-ch:
		return o.val, time.Since(start), o.err
	case <-sctx.Done():
		var zero T
		return zero, time.Since(start), sctx.Err()
	}
}
