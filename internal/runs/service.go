// Package runs owns the lifecycle of an analysis run: intake, async
// processing, retrieval and download. Uploaded bytes are removed as soon
// as processing ends, whatever the outcome.
package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"textlens-backend/internal/parser"
	"textlens-backend/internal/pipeline"
	"textlens-backend/internal/shared/metrics"
	"textlens-backend/internal/shared/storage/object"
	"textlens-backend/internal/shared/telemetry"
	"textlens-backend/internal/store"
)

var (
	// ErrInvalidInput marks bad caller input (missing file name, empty body).
	ErrInvalidInput = errors.New("invalid input")
	// ErrTooLarge marks uploads over the configured byte limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNotFound marks a missing, expired or consumed result.
	ErrNotFound = errors.New("run not found")
)

// Service contains business logic for analysis runs.
type Service struct {
	Store               object.ObjectStore
	Results             *store.ResultStore
	Parser              *parser.Parser
	Pipeline            *pipeline.Pipeline
	MaxUploadBytes      int64
	DeleteAfterDownload bool
	ProcessTimeout      time.Duration
}

// Start validates and stores the upload, registers a pending run and kicks
// off async processing. The returned id is immediately pollable.
func (s *Service) Start(ctx context.Context, fileName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fileName == "" {
		return "", fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if err := s.Parser.CheckFormat(fileName); err != nil {
		return "", err
	}

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	bounded := io.LimitReader(r, limit+1)

	storageKey, size, mimeType, err := s.Store.Save(ctx, fileName, bounded)
	if err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	if size > limit {
		if derr := s.Store.Delete(ctx, storageKey); derr != nil {
			telemetry.Warn("runs.oversize_cleanup_failed", map[string]any{"storage_key": storageKey, "error": derr.Error()})
		}
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, limit)
	}
	if size == 0 {
		if derr := s.Store.Delete(ctx, storageKey); derr != nil {
			telemetry.Warn("runs.empty_cleanup_failed", map[string]any{"storage_key": storageKey, "error": derr.Error()})
		}
		return "", fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	id := uuid.NewString()
	s.Results.Put(&pipeline.Result{
		AnalysisID: id,
		Timestamp:  time.Now().UTC(),
		Status:     pipeline.StatusPending,
		FileName:   fileName,
	})

	metrics.IncRunStarted()
	telemetry.Info("runs.started", map[string]any{
		"analysis_id": id,
		"file_name":   fileName,
		"size_bytes":  size,
		"mime_type":   mimeType,
	})

	go s.process(id, fileName, storageKey, size)

	return id, nil
}

// process runs extraction and the pipeline off the request goroutine. The
// stored upload is deleted on every exit path.
func (s *Service) process(id, fileName, storageKey string, size int64) {
	timeout := s.ProcessTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	defer func() {
		if err := s.Store.Delete(context.Background(), storageKey); err != nil {
			telemetry.Error("runs.upload_delete_failed", map[string]any{
				"analysis_id": id,
				"storage_key": storageKey,
				"error":       err.Error(),
			})
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.fail(id, fileName, fmt.Sprintf("processing panic: %v", r))
		}
	}()

	s.Results.Put(&pipeline.Result{
		AnalysisID: id,
		Timestamp:  time.Now().UTC(),
		Status:     pipeline.StatusProcessing,
		FileName:   fileName,
	})

	text, err := s.extract(ctx, storageKey, fileName)
	if err != nil {
		s.fail(id, fileName, fmt.Sprintf("text extraction failed: %v", err))
		return
	}

	res := s.Pipeline.Run(ctx, id, fileName, size, text)
	s.Results.Put(res)

	if res.Status == pipeline.StatusFailed {
		metrics.IncRunFailed()
		return
	}
	metrics.IncRunCompleted()
	telemetry.Info("runs.completed", map[string]any{
		"analysis_id": id,
		"duration_ms": res.Metadata.DurationMs,
	})
}

func (s *Service) extract(ctx context.Context, storageKey, fileName string) (string, error) {
	rc, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	return s.Parser.Parse(ctx, data, fileName)
}

func (s *Service) fail(id, fileName, msg string) {
	s.Results.Put(&pipeline.Result{
		AnalysisID: id,
		Timestamp:  time.Now().UTC(),
		Status:     pipeline.StatusFailed,
		FileName:   fileName,
		Error:      msg,
	})
	metrics.IncRunFailed()
	telemetry.Error("runs.failed", map[string]any{"analysis_id": id, "error": msg})
}

// Get returns the run's current state, pending and processing included.
func (s *Service) Get(ctx context.Context, id string) (*pipeline.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.Results.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

// Download serializes a completed result for export. When delete-after-
// download is on, the result is consumed in the same step.
func (s *Service) Download(ctx context.Context, id string) ([]byte, string, error) {
	res, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if res.Status != pipeline.StatusCompleted {
		return nil, "", fmt.Errorf("%w: run is %s", ErrInvalidInput, res.Status)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return nil, "", fmt.Errorf("encode result: %w", err)
	}

	if s.DeleteAfterDownload {
		if _, err := s.Results.Take(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
		telemetry.Info("runs.consumed", map[string]any{"analysis_id": id})
	}

	return buf.Bytes(), "analysis_" + id + ".json", nil
}

// Formats reports every known upload format and its availability.
func (s *Service) Formats() []parser.Format {
	return s.Parser.SupportedFormats()
}
