package analysis

import (
	"context"
	"math"
	"strings"

	"textlens-backend/internal/textproc"
)

// TextStatistics are the deterministic counts and readability derivations.
type TextStatistics struct {
	CharacterCount     int     `json:"character_count"`
	WordCount          int     `json:"word_count"`
	SentenceCount      int     `json:"sentence_count"`
	ParagraphCount     int     `json:"paragraph_count"`
	AvgSentenceLength  float64 `json:"avg_sentence_length"`
	AvgWordLength      float64 `json:"avg_word_length"`
	UniqueWords        int     `json:"unique_words"`
	VocabularyRichness float64 `json:"vocabulary_richness"`
	ReadabilityScore   float64 `json:"readability_score"`
}

// StatisticsAnalyzer computes text statistics and the Flesch Reading Ease
// score, clamped to its 0-100 display range.
type StatisticsAnalyzer struct{}

// NewStatisticsAnalyzer constructs a StatisticsAnalyzer.
func NewStatisticsAnalyzer() *StatisticsAnalyzer {
	return &StatisticsAnalyzer{}
}

// Analyze derives counts from the original text and averages from tokens.
// Vocabulary richness is unique/total, defined as 0 when there are no words.
func (a *StatisticsAnalyzer) Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*TextStatistics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words := pre.Tokens
	wordCount := len(words)

	unique := make(map[string]struct{}, wordCount)
	totalWordLen := 0
	totalSyllables := 0
	for _, w := range words {
		unique[w] = struct{}{}
		totalWordLen += len(w)
		totalSyllables += countSyllables(w)
	}

	sentenceCount := len(pre.Sentences)
	paragraphCount := countParagraphs(pre.Raw)

	stats := &TextStatistics{
		CharacterCount: len(pre.Raw),
		WordCount:      wordCount,
		SentenceCount:  sentenceCount,
		ParagraphCount: paragraphCount,
		UniqueWords:    len(unique),
	}

	if wordCount > 0 {
		stats.AvgSentenceLength = float64(wordCount) / math.Max(float64(sentenceCount), 1)
		stats.AvgWordLength = float64(totalWordLen) / float64(wordCount)
		stats.VocabularyRichness = float64(len(unique)) / float64(wordCount)
	}

	if wordCount > 0 && sentenceCount > 0 {
		avgSyllables := float64(totalSyllables) / float64(wordCount)
		flesch := 206.835 - 1.015*stats.AvgSentenceLength - 84.6*avgSyllables
		stats.ReadabilityScore = math.Max(0, math.Min(100, flesch))
	}

	return stats, nil
}

func countParagraphs(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	count := 0
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

// countSyllables estimates syllables by counting vowel groups after dropping
// a silent trailing e. Every word counts at least one.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	word = strings.TrimSuffix(word, "e")

	syllables := 0
	previousVowel := false
	for _, c := range word {
		isVowel := strings.ContainsRune("aeiouy", c)
		if isVowel && !previousVowel {
			syllables++
		}
		previousVowel = isVowel
	}
	if syllables < 1 {
		syllables = 1
	}
	return syllables
}
