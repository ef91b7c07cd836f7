package textproc

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"
)

// AdvancedPreprocessor uses the prose linguistic model for sentence
// segmentation and named-entity tagging. Its output is structurally
// identical to the basic path, with entities populated.
type AdvancedPreprocessor struct{}

// NewAdvanced constructs the prose-backed preprocessor.
func NewAdvanced() *AdvancedPreprocessor {
	return &AdvancedPreprocessor{}
}

// Name identifies the model for processing metadata.
func (a *AdvancedPreprocessor) Name() string { return "prose-v2" }

// Preprocess segments the text with the prose model and tags named entities.
func (a *AdvancedPreprocessor) Preprocess(ctx context.Context, text string) (*PreprocessedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	proseSentences := doc.Sentences()
	sentences := make([]Sentence, 0, len(proseSentences))
	for _, s := range proseSentences {
		trimmed := strings.TrimSpace(s.Text)
		if trimmed == "" {
			continue
		}
		sentences = append(sentences, Sentence{
			Text:   trimmed,
			Tokens: Tokenize(trimmed),
		})
	}

	var entities []Entity
	for _, e := range doc.Entities() {
		entities = append(entities, Entity{Text: e.Text, Label: e.Label})
	}

	tokens := Tokenize(text)

	return &PreprocessedText{
		Raw:       text,
		Clean:     CleanText(text),
		Sentences: sentences,
		Tokens:    tokens,
		Entities:  entities,
		WordFreqs: wordFrequencies(tokens),
	}, nil
}

// Select returns the preprocessor variant named by config, falling back to
// the basic path for unknown values. The choice is made once at startup and
// injected into the pipeline.
func Select(name string) Preprocessor {
	switch name {
	case "advanced":
		return NewAdvanced()
	default:
		return NewBasic()
	}
}
