// Package textproc turns extracted document text into the shared, immutable
// representation every analyzer consumes: sentences, tokens, optional named
// entities, and stopword-filtered word frequencies.
package textproc

import (
	"context"
	"regexp"
	"strings"
)

// Entity is a named entity tagged in the text. Only the advanced
// preprocessor produces entities.
type Entity struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// Sentence is one segmented sentence with its word tokens.
type Sentence struct {
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

// PreprocessedText is the derived, read-only view of a document shared by all
// analyzer stages. It is never persisted beyond the pipeline run.
type PreprocessedText struct {
	Raw       string
	Clean     string
	Sentences []Sentence
	Tokens    []string
	Entities  []Entity
	WordFreqs map[string]int
}

// WordCount returns the number of word tokens in the cleaned text.
func (p *PreprocessedText) WordCount() int {
	return len(p.Tokens)
}

// Preprocessor converts raw text into a PreprocessedText. The advanced and
// basic implementations produce structurally identical output so downstream
// stages never need to know which one ran.
type Preprocessor interface {
	Preprocess(ctx context.Context, text string) (*PreprocessedText, error)
	Name() string
}

var (
	wordRe       = regexp.MustCompile(`[a-zA-Z]+`)
	punctRe      = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText lowercases the text, strips punctuation and collapses whitespace.
func CleanText(text string) string {
	clean := punctRe.ReplaceAllString(strings.ToLower(text), "")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}

// Tokenize returns the lowercase alphabetic word tokens of the text.
func Tokenize(text string) []string {
	return wordRe.FindAllString(strings.ToLower(text), -1)
}

// wordFrequencies counts stopword-filtered tokens.
func wordFrequencies(tokens []string) map[string]int {
	freqs := make(map[string]int)
	for _, tok := range tokens {
		if IsStopword(tok) {
			continue
		}
		freqs[tok]++
	}
	return freqs
}
