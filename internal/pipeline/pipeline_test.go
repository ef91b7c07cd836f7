package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"textlens-backend/internal/analysis"
	"textlens-backend/internal/textproc"
)

type failingClusterer struct{ panics bool }

func (f *failingClusterer) Cluster(ctx context.Context, pre *textproc.PreprocessedText) (*analysis.ClusteringResult, error) {
	if f.panics {
		panic("deliberate failure")
	}
	return nil, errors.New("clusterer broke")
}

type stubEnricher struct {
	out string
	err error
	got string
}

func (s *stubEnricher) AnalyzeThemes(ctx context.Context, text string) (string, error) {
	s.got = text
	return s.out, s.err
}

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	corpus, err := analysis.NewReferenceCorpus("general_english")
	if err != nil {
		t.Fatalf("corpus: %v", err)
	}
	return &Pipeline{
		Preprocessor: textproc.NewBasic(),
		Keyness:      analysis.NewKeynessAnalyzer(corpus),
		Clustering:   analysis.NewClusterer(),
		Sentiment:    analysis.NewSentimentAnalyzer(),
		Statistics:   analysis.NewStatisticsAnalyzer(),
		StageTimeout: 10 * time.Second,
	}
}

const sampleText = "The ocean waves crash against the rocky shoreline every morning. " +
	"Marine biologists study dolphins and whales in coastal waters. " +
	"The research vessel returned with excellent new measurements. " +
	"Everyone on the team was delighted with the wonderful results."

func TestRunProducesAllStages(t *testing.T) {
	p := newPipeline(t)
	res := p.Run(context.Background(), "run-1", "ocean.txt", 123, sampleText)

	if res.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", res.Status, res.Error)
	}
	if res.AnalysisID != "run-1" {
		t.Fatalf("unexpected id %q", res.AnalysisID)
	}
	if res.Keyness == nil || res.SemanticClustering == nil || res.Sentiment == nil || res.TextStatistics == nil {
		t.Fatalf("missing stage output: %+v", res)
	}
	if res.Metadata == nil {
		t.Fatalf("missing metadata")
	}
	if res.Metadata.FileSizeBytes != 123 {
		t.Fatalf("unexpected file size %d", res.Metadata.FileSizeBytes)
	}
	for _, stage := range []string{"preprocess", "keyness", "semantic_clustering", "sentiment", "text_statistics"} {
		if _, ok := res.Metadata.StageTimingMs[stage]; !ok {
			t.Fatalf("missing timing for %s", stage)
		}
	}
	if res.Metadata.ModelVersions["preprocessor"] != "basic-v1" {
		t.Fatalf("unexpected model versions %v", res.Metadata.ModelVersions)
	}
}

func TestRunStageErrorYieldsPartialResult(t *testing.T) {
	p := newPipeline(t)
	p.Clustering = &failingClusterer{}

	res := p.Run(context.Background(), "run-2", "ocean.txt", 0, sampleText)

	if res.Status != StatusCompleted {
		t.Fatalf("expected completed despite stage failure, got %s", res.Status)
	}
	if res.SemanticClustering != nil {
		t.Fatalf("failed stage should be omitted")
	}
	if res.Keyness == nil || res.Sentiment == nil || res.TextStatistics == nil {
		t.Fatalf("sibling stages should survive")
	}
}

func TestRunStagePanicIsAbsorbed(t *testing.T) {
	p := newPipeline(t)
	p.Clustering = &failingClusterer{panics: true}

	res := p.Run(context.Background(), "run-3", "ocean.txt", 0, sampleText)

	if res.Status != StatusCompleted {
		t.Fatalf("expected completed despite panic, got %s", res.Status)
	}
	if res.SemanticClustering != nil {
		t.Fatalf("panicking stage should be omitted")
	}
}

func TestRunEnrichmentOptional(t *testing.T) {
	p := newPipeline(t)
	enricher := &stubEnricher{out: "The text discusses marine research."}
	p.Enricher = enricher
	p.EnrichModel = "test-model"

	res := p.Run(context.Background(), "run-4", "ocean.txt", 0, sampleText)
	if res.AIInsights == "" {
		t.Fatalf("expected enrichment output")
	}
	if res.Metadata.ModelVersions["ollama"] != "test-model" {
		t.Fatalf("expected ollama model version, got %v", res.Metadata.ModelVersions)
	}
	// The model sees the document as written, not the lowercased token view.
	if enricher.got != sampleText {
		t.Fatalf("enricher received altered text: %q", enricher.got)
	}

	p.Enricher = &stubEnricher{err: errors.New("unreachable")}
	res = p.Run(context.Background(), "run-5", "ocean.txt", 0, sampleText)
	if res.Status != StatusCompleted {
		t.Fatalf("enrichment failure must not fail the run, got %s", res.Status)
	}
	if res.AIInsights != "" {
		t.Fatalf("expected no insights on enrichment failure")
	}
}

type brokenPreprocessor struct{}

func (brokenPreprocessor) Preprocess(ctx context.Context, text string) (*textproc.PreprocessedText, error) {
	return nil, errors.New("cannot segment")
}
func (brokenPreprocessor) Name() string { return "broken" }

func TestRunPreprocessFailureFailsRun(t *testing.T) {
	p := newPipeline(t)
	p.Preprocessor = brokenPreprocessor{}

	res := p.Run(context.Background(), "run-6", "ocean.txt", 0, sampleText)
	if res.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", res.Status)
	}
	if !strings.Contains(res.Error, "preprocessing failed") {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if res.Metadata == nil {
		t.Fatalf("failed runs still carry metadata")
	}
}
