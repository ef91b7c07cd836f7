package analysis

import (
	"context"
	"math"
	"testing"
)

func TestSentimentPositiveText(t *testing.T) {
	pre := preprocess(t, "This is wonderful and amazing. I love it. Everything is great and beautiful.")
	res, err := NewSentimentAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Overall <= 0 {
		t.Fatalf("expected positive overall, got %f", res.Overall)
	}
	if res.Positive <= res.Negative {
		t.Fatalf("expected positive share to dominate: pos=%f neg=%f", res.Positive, res.Negative)
	}
}

func TestSentimentNegativeText(t *testing.T) {
	pre := preprocess(t, "This is terrible and awful. I hate it. Everything is horrible and disgusting.")
	res, err := NewSentimentAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Overall >= 0 {
		t.Fatalf("expected negative overall, got %f", res.Overall)
	}
	if res.Negative <= res.Positive {
		t.Fatalf("expected negative share to dominate: pos=%f neg=%f", res.Positive, res.Negative)
	}
}

func TestSentimentPercentagesSumToHundred(t *testing.T) {
	pre := preprocess(t, "The report covers three quarters. Results were excellent overall. Some sections were disappointing. The appendix lists raw figures.")
	res, err := NewSentimentAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	sum := res.Positive + res.Negative + res.Neutral
	if math.Abs(sum-100) > 0.1 {
		t.Fatalf("percentages sum to %f", sum)
	}
	if res.Overall < -1 || res.Overall > 1 {
		t.Fatalf("overall out of range: %f", res.Overall)
	}
	if len(res.Sentences) != 4 {
		t.Fatalf("expected 4 sentence breakdowns, got %d", len(res.Sentences))
	}
	for _, s := range res.Sentences {
		switch s.Label {
		case "positive", "negative", "neutral":
		default:
			t.Fatalf("unexpected label %q", s.Label)
		}
	}
}

func TestSentimentEmptyTextIsNeutral(t *testing.T) {
	pre := preprocess(t, "")
	res, err := NewSentimentAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Neutral != 100 || res.Positive != 0 || res.Negative != 0 {
		t.Fatalf("expected all-neutral result, got %+v", res)
	}
	if res.Overall != 0 {
		t.Fatalf("expected zero overall, got %f", res.Overall)
	}
}
