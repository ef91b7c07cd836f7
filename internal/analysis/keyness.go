// Package analysis implements the four independent analyzer stages: keyness,
// semantic clustering, sentiment and text statistics. Every analyzer takes a
// read-only PreprocessedText and returns its own result; analyzers never
// share mutable state.
package analysis

import (
	"context"
	"math"
	"sort"

	"textlens-backend/internal/textproc"
)

// Tunable constants for keyness scoring. The smoothing rate stands in for
// words the reference corpus has never seen; minAbsentExpected is the lowest
// expected count at which a missing word counts as conspicuously absent.
const (
	unseenWordRate    = 1e-6
	minAbsentExpected = 3.0
	keynessTopN       = 20
	minKeywordLength  = 3
)

// Keyword is one scored word in a keyness result. Positive effect sizes mark
// over-represented words relative to the reference corpus, negative ones
// under-represented or absent words.
type Keyword struct {
	Word       string  `json:"word"`
	Score      float64 `json:"score"`
	Frequency  int     `json:"frequency"`
	Rank       int     `json:"rank"`
	EffectSize float64 `json:"effect_size"`
	Confidence float64 `json:"confidence"`
}

// KeynessResult is the ordered keyword list for one document.
type KeynessResult struct {
	Keywords        []Keyword `json:"keywords"`
	TotalKeywords   int       `json:"total_keywords"`
	ReferenceCorpus string    `json:"reference_corpus"`
}

// KeynessAnalyzer scores how distinctively each word's frequency deviates
// from the reference corpus, using the log-likelihood ratio.
type KeynessAnalyzer struct {
	Reference *ReferenceCorpus
	TopN      int
}

// NewKeynessAnalyzer constructs an analyzer over the given corpus.
func NewKeynessAnalyzer(reference *ReferenceCorpus) *KeynessAnalyzer {
	return &KeynessAnalyzer{Reference: reference, TopN: keynessTopN}
}

// Analyze scores every candidate word and returns the top-N by absolute
// effect size, densely ranked from 1.
func (a *KeynessAnalyzer) Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*KeynessResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := float64(len(pre.Tokens))
	if total == 0 {
		return &KeynessResult{Keywords: []Keyword{}, ReferenceCorpus: a.Reference.ID()}, nil
	}

	coverage := a.corpusCoverage(pre)
	keywords := make([]Keyword, 0, len(pre.WordFreqs))

	// Over- and under-represented words present in the text.
	for word, freq := range pre.WordFreqs {
		if len(word) < minKeywordLength {
			continue
		}
		observed := float64(freq)
		rate := a.Reference.Rate(word)
		if rate == 0 {
			rate = unseenWordRate
		}
		expected := rate * total

		g := 2 * observed * math.Log(observed/expected)
		sign := 1.0
		if observed < expected {
			sign = -1.0
		}
		g = math.Abs(g)

		keywords = append(keywords, Keyword{
			Word:       word,
			Score:      sign * g,
			Frequency:  freq,
			EffectSize: sign * g / math.Sqrt(observed),
			Confidence: confidence(observed, coverage),
		})
	}

	// Conspicuously absent common words: expected at least minAbsentExpected
	// occurrences but never observed. The sqrt(o) denominator is floored at 1.
	a.Reference.Words(func(word string, rate float64) {
		if textproc.IsStopword(word) || len(word) < minKeywordLength {
			return
		}
		if _, present := pre.WordFreqs[word]; present {
			return
		}
		expected := rate * total
		if expected < minAbsentExpected {
			return
		}
		g := 2 * expected
		keywords = append(keywords, Keyword{
			Word:       word,
			Score:      -g,
			Frequency:  0,
			EffectSize: -g,
			Confidence: confidence(0, coverage),
		})
	})

	sort.Slice(keywords, func(i, j int) bool {
		ei, ej := math.Abs(keywords[i].EffectSize), math.Abs(keywords[j].EffectSize)
		if ei != ej {
			return ei > ej
		}
		return keywords[i].Word < keywords[j].Word
	})

	topN := a.TopN
	if topN <= 0 {
		topN = keynessTopN
	}
	if len(keywords) > topN {
		keywords = keywords[:topN]
	}
	for i := range keywords {
		keywords[i].Rank = i + 1
	}

	return &KeynessResult{
		Keywords:        keywords,
		TotalKeywords:   len(keywords),
		ReferenceCorpus: a.Reference.ID(),
	}, nil
}

// corpusCoverage is the fraction of text tokens the reference corpus knows.
func (a *KeynessAnalyzer) corpusCoverage(pre *textproc.PreprocessedText) float64 {
	if len(pre.Tokens) == 0 {
		return 0
	}
	known := 0
	for _, tok := range pre.Tokens {
		if a.Reference.Contains(tok) {
			known++
		}
	}
	return float64(known) / float64(len(pre.Tokens))
}

// confidence grows monotonically with observed frequency and corpus coverage.
func confidence(observed, coverage float64) float64 {
	return math.Min(0.95, 0.5+0.1*math.Log1p(observed)+0.2*coverage)
}
