package analysis

import (
	"context"
	"math"
	"testing"
)

func TestStatisticsCounts(t *testing.T) {
	pre := preprocess(t, "The cat sat on the mat. The dog barked loudly.\n\nA new paragraph starts here.")
	res, err := NewStatisticsAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if res.WordCount != 15 {
		t.Fatalf("expected 15 words, got %d", res.WordCount)
	}
	if res.SentenceCount != 3 {
		t.Fatalf("expected 3 sentences, got %d", res.SentenceCount)
	}
	if res.ParagraphCount != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", res.ParagraphCount)
	}
	if res.CharacterCount != len(pre.Raw) {
		t.Fatalf("character count mismatch: %d vs %d", res.CharacterCount, len(pre.Raw))
	}
	if math.Abs(res.AvgSentenceLength-5.0) > 1e-9 {
		t.Fatalf("unexpected avg sentence length %f", res.AvgSentenceLength)
	}
}

func TestStatisticsVocabularyRichness(t *testing.T) {
	pre := preprocess(t, "ocean ocean ocean wave")
	res, err := NewStatisticsAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.UniqueWords != 2 {
		t.Fatalf("expected 2 unique words, got %d", res.UniqueWords)
	}
	if math.Abs(res.VocabularyRichness-0.5) > 1e-9 {
		t.Fatalf("expected richness 0.5, got %f", res.VocabularyRichness)
	}
}

func TestStatisticsEmptyText(t *testing.T) {
	pre := preprocess(t, "")
	res, err := NewStatisticsAnalyzer().Analyze(context.Background(), pre)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.WordCount != 0 || res.VocabularyRichness != 0 || res.ReadabilityScore != 0 {
		t.Fatalf("expected zeroed stats, got %+v", res)
	}
}

func TestReadabilityWithinDisplayRange(t *testing.T) {
	simple := preprocess(t, "The cat sat. The dog ran. It was fun. We all played.")
	res, err := NewStatisticsAnalyzer().Analyze(context.Background(), simple)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.ReadabilityScore < 0 || res.ReadabilityScore > 100 {
		t.Fatalf("readability out of range: %f", res.ReadabilityScore)
	}
	if res.ReadabilityScore < 80 {
		t.Fatalf("expected simple text to score high, got %f", res.ReadabilityScore)
	}

	dense := preprocess(t, "Notwithstanding considerable organizational heterogeneity, institutional accountability mechanisms demonstrably incentivize interdepartmental collaboration across multinational administrative bureaucracies and their constituent regulatory subcommittees.")
	res2, err := NewStatisticsAnalyzer().Analyze(context.Background(), dense)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res2.ReadabilityScore >= res.ReadabilityScore {
		t.Fatalf("dense text should score lower: %f vs %f", res2.ReadabilityScore, res.ReadabilityScore)
	}
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"cat":       1,
		"ocean":     2,
		"beautiful": 3,
		"the":       1,
		"make":      1,
		"a":         1,
	}
	for word, want := range cases {
		if got := countSyllables(word); got != want {
			t.Errorf("countSyllables(%q) = %d, want %d", word, got, want)
		}
	}
}
