package analysis

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"textlens-backend/internal/textproc"
)

// Sentence polarity thresholds: compounds inside (-0.1, 0.1) count as neutral.
const sentimentThreshold = 0.1

// SentenceSentiment is the per-sentence polarity breakdown.
type SentenceSentiment struct {
	Sentence string  `json:"sentence"`
	Compound float64 `json:"compound"`
	Label    string  `json:"label"`
}

// SentimentResult aggregates document polarity. Positive, Negative and
// Neutral are percentages of sentences and sum to 100 up to rounding.
type SentimentResult struct {
	Overall    float64             `json:"overall"`
	Positive   float64             `json:"positive"`
	Negative   float64             `json:"negative"`
	Neutral    float64             `json:"neutral"`
	Compound   float64             `json:"compound"`
	Confidence float64             `json:"confidence"`
	Sentences  []SentenceSentiment `json:"sentence_sentiments,omitempty"`
}

// SentimentAnalyzer scores polarity with the VADER lexicon.
type SentimentAnalyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewSentimentAnalyzer constructs a SentimentAnalyzer.
func NewSentimentAnalyzer() *SentimentAnalyzer {
	return &SentimentAnalyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze scores each sentence and aggregates: the overall compound is the
// token-count-weighted mean of sentence compounds, clamped to [-1, 1].
func (a *SentimentAnalyzer) Analyze(ctx context.Context, pre *textproc.PreprocessedText) (*SentimentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sentences := pre.Sentences
	if len(sentences) == 0 && pre.Raw != "" {
		sentences = []textproc.Sentence{{Text: pre.Raw, Tokens: pre.Tokens}}
	}
	if len(sentences) == 0 {
		return &SentimentResult{Neutral: 100}, nil
	}

	var (
		weightedSum  float64
		totalWeight  float64
		positives    int
		negatives    int
		neutrals     int
		polarityMass float64
		breakdown    = make([]SentenceSentiment, 0, len(sentences))
	)

	for _, s := range sentences {
		scores := a.vader.PolarityScores(s.Text)

		weight := float64(len(s.Tokens))
		if weight == 0 {
			weight = 1
		}
		weightedSum += scores.Compound * weight
		totalWeight += weight
		polarityMass += scores.Positive + scores.Negative

		label := "neutral"
		switch {
		case scores.Compound > sentimentThreshold:
			label = "positive"
			positives++
		case scores.Compound < -sentimentThreshold:
			label = "negative"
			negatives++
		default:
			neutrals++
		}

		breakdown = append(breakdown, SentenceSentiment{
			Sentence: s.Text,
			Compound: scores.Compound,
			Label:    label,
		})
	}

	overall := weightedSum / totalWeight
	overall = math.Max(-1, math.Min(1, overall))

	total := float64(len(sentences))
	meanMass := polarityMass / total

	return &SentimentResult{
		Overall:    overall,
		Positive:   float64(positives) / total * 100,
		Negative:   float64(negatives) / total * 100,
		Neutral:    float64(neutrals) / total * 100,
		Compound:   overall,
		Confidence: math.Min(0.95, 0.5+0.45*meanMass),
		Sentences:  breakdown,
	}, nil
}
