// Command analyze runs the full analysis pipeline against a local document
// and prints the result as JSON. Useful for corpus tuning and debugging
// without standing up the HTTP server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"textlens-backend/internal/analysis"
	"textlens-backend/internal/parser"
	"textlens-backend/internal/pipeline"
	"textlens-backend/internal/shared/config"
	"textlens-backend/internal/textproc"
)

func main() {
	preprocessor := flag.String("preprocessor", "", "preprocessor variant (advanced or basic; default from env)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: analyze [-preprocessor advanced|basic] <document>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg := config.Load()
	if *preprocessor != "" {
		cfg.Preprocessor = *preprocessor
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read document: %v", err)
	}

	ctx := context.Background()
	text, err := parser.New().Parse(ctx, data, path)
	if err != nil {
		log.Fatalf("parse document: %v", err)
	}

	corpus, err := analysis.NewReferenceCorpus(cfg.ReferenceCorpus)
	if err != nil {
		log.Fatalf("reference corpus: %v", err)
	}

	pipe := &pipeline.Pipeline{
		Preprocessor: textproc.Select(cfg.Preprocessor),
		Keyness:      analysis.NewKeynessAnalyzer(corpus),
		Clustering:   analysis.NewClusterer(),
		Sentiment:    analysis.NewSentimentAnalyzer(),
		Statistics:   analysis.NewStatisticsAnalyzer(),
		StageTimeout: cfg.StageTimeout,
	}

	res := pipe.Run(ctx, "local", filepath.Base(path), int64(len(data)), text)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		log.Fatalf("encode result: %v", err)
	}
	if res.Status == pipeline.StatusFailed {
		os.Exit(1)
	}
}
