package textproc

import (
	"context"
	"regexp"
	"strings"
)

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// BasicPreprocessor is the rule-based fallback path: regex tokenization and
// terminator-based sentence segmentation, no entities.
type BasicPreprocessor struct{}

// NewBasic constructs the rule-based preprocessor.
func NewBasic() *BasicPreprocessor {
	return &BasicPreprocessor{}
}

// Name identifies the model for processing metadata.
func (b *BasicPreprocessor) Name() string { return "basic-v1" }

// Preprocess segments and tokenizes the text with rule-based heuristics.
func (b *BasicPreprocessor) Preprocess(ctx context.Context, text string) (*PreprocessedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sentences := splitSentences(text)
	tokens := Tokenize(text)

	return &PreprocessedText{
		Raw:       text,
		Clean:     CleanText(text),
		Sentences: sentences,
		Tokens:    tokens,
		WordFreqs: wordFrequencies(tokens),
	}, nil
}

func splitSentences(text string) []Sentence {
	parts := sentenceSplitRe.Split(text, -1)
	out := make([]Sentence, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, Sentence{
			Text:   trimmed,
			Tokens: Tokenize(trimmed),
		})
	}
	return out
}
