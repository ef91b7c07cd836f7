// Package store keeps finished analysis results in memory for a bounded
// time. Nothing here survives a restart and nothing is written to disk.
package store

import (
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"textlens-backend/internal/pipeline"
	"textlens-backend/internal/shared/metrics"
	"textlens-backend/internal/shared/telemetry"
)

// ErrNotFound is returned when a result is missing or already expired.
var ErrNotFound = errors.New("result not found")

// ResultStore is a TTL-bounded in-memory store for analysis results.
// Reads never extend a result's lifetime.
type ResultStore struct {
	cache  *gocache.Cache
	maxAge time.Duration
	done   chan struct{}
}

// New builds a ResultStore whose entries expire after maxAge. A background
// sweeper purges expired entries every cleanupInterval; Stop shuts it down.
func New(maxAge, cleanupInterval time.Duration) *ResultStore {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	s := &ResultStore{
		cache:  gocache.New(maxAge, 0),
		maxAge: maxAge,
		done:   make(chan struct{}),
	}
	go s.sweep(cleanupInterval)
	return s
}

// Put stores or replaces a result under its analysis id with a fresh TTL.
func (s *ResultStore) Put(res *pipeline.Result) {
	if res == nil || res.AnalysisID == "" {
		return
	}
	s.cache.Set(res.AnalysisID, res, gocache.DefaultExpiration)
}

// Get returns the result for id without consuming it.
func (s *ResultStore) Get(id string) (*pipeline.Result, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	res, ok := v.(*pipeline.Result)
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

// Take returns the result for id and deletes it in the same step.
func (s *ResultStore) Take(id string) (*pipeline.Result, error) {
	res, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(id)
	metrics.IncResultPurged("downloaded")
	return res, nil
}

// Delete removes the result for id. Deleting an absent id is not an error.
func (s *ResultStore) Delete(id string) {
	if _, ok := s.cache.Get(id); ok {
		s.cache.Delete(id)
		metrics.IncResultPurged("deleted")
	}
}

// Len reports how many unexpired results are held.
func (s *ResultStore) Len() int {
	return s.cache.ItemCount()
}

// Stop terminates the background sweeper. Safe to call once.
func (s *ResultStore) Stop() {
	close(s.done)
}

func (s *ResultStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			before := s.cache.ItemCount()
			s.cache.DeleteExpired()
			if removed := before - s.cache.ItemCount(); removed > 0 {
				for i := 0; i < removed; i++ {
					metrics.IncResultPurged("expired")
				}
				telemetry.Info("results.swept", map[string]any{
					"removed":   removed,
					"remaining": s.cache.ItemCount(),
				})
			}
		}
	}
}
