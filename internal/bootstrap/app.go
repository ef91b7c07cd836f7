// Package bootstrap assembles the application from configuration.
package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"textlens-backend/internal/analysis"
	"textlens-backend/internal/enrich"
	"textlens-backend/internal/parser"
	"textlens-backend/internal/pipeline"
	"textlens-backend/internal/runs"
	"textlens-backend/internal/shared/config"
	"textlens-backend/internal/shared/server"
	"textlens-backend/internal/shared/storage/object"
	localstore "textlens-backend/internal/shared/storage/object/local"
	s3store "textlens-backend/internal/shared/storage/object/s3"
	"textlens-backend/internal/shared/telemetry"
	"textlens-backend/internal/store"
	"textlens-backend/internal/textproc"
)

// App holds shared dependencies.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	Store       object.ObjectStore
	Results     *store.ResultStore
	Parser      *parser.Parser
	Pipeline    *pipeline.Pipeline
	Enricher    *enrich.OllamaClient
	RunsService *runs.Service
	RunsHandler *runs.Handler

	sweeperDone chan struct{}
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	objStore, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	corpus, err := analysis.NewReferenceCorpus(cfg.ReferenceCorpus)
	if err != nil {
		return nil, err
	}

	enricher := enrich.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout)

	pipe := &pipeline.Pipeline{
		Preprocessor: textproc.Select(cfg.Preprocessor),
		Keyness:      analysis.NewKeynessAnalyzer(corpus),
		Clustering:   analysis.NewClusterer(),
		Sentiment:    analysis.NewSentimentAnalyzer(),
		Statistics:   analysis.NewStatisticsAnalyzer(),
		StageTimeout: cfg.StageTimeout,
	}
	if enricher != nil {
		pipe.Enricher = enricher
		pipe.EnrichModel = cfg.OllamaModel
	}

	app := &App{
		Config:   cfg,
		Store:    objStore,
		Results:  store.New(cfg.MaxResultAge, cfg.CleanupInterval),
		Parser:   parser.New(),
		Pipeline: pipe,
		Enricher: enricher,
	}

	app.RunsService = &runs.Service{
		Store:               app.Store,
		Results:             app.Results,
		Parser:              app.Parser,
		Pipeline:            app.Pipeline,
		MaxUploadBytes:      cfg.MaxUploadBytes,
		DeleteAfterDownload: cfg.DeleteAfterDownload,
	}

	var health runs.HealthChecker
	if enricher != nil {
		health = enricher
	}
	app.RunsHandler = runs.NewHandler(app.RunsService, health)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		RunsHandler: app.RunsHandler,
	})

	app.sweeperDone = make(chan struct{})
	go sweepLoop(app.Store, cfg.CleanupInterval, cfg.MaxResultAge, app.sweeperDone)

	return app, nil
}

// Close releases background resources.
func (a *App) Close() {
	if a.sweeperDone != nil {
		close(a.sweeperDone)
	}
	if a.Results != nil {
		a.Results.Stop()
	}
}

// sweepLoop backstops the per-run upload deletion: any stored file that
// outlives the result retention window (crash, failed delete) is removed.
func sweepLoop(objStore object.ObjectStore, interval, maxAge time.Duration, done chan struct{}) {
	if interval <= 0 {
		interval = time.Minute
	}
	if maxAge <= 0 {
		maxAge = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			removed, err := objStore.Sweep(ctx, maxAge)
			cancel()
			if err != nil {
				telemetry.Warn("storage.sweep_failed", map[string]any{"error": err.Error()})
				continue
			}
			if removed > 0 {
				telemetry.Info("storage.swept", map[string]any{"removed": removed})
			}
		}
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
