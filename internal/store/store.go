// Package store persists records exactly once across runs.
//
// The CSV file is the source of truth: on open its link column seeds the
// index, and every append filters the batch through the index before writing.
// Because the file is only ever appended to, a crash leaves a valid,
// deduplicated prefix that the next run picks up.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/law-makers/listcrawl/internal/metrics"
	"github.com/law-makers/listcrawl/pkg/models"
	"github.com/rs/zerolog/log"
)

// Sink receives a copy of every batch after it has been written to the file.
type Sink interface {
	Name() string
	Append(ctx context.Context, records []models.Record) error
	Close() error
}

// Options configures a Store
type Options struct {
	// Index overrides the default in-memory index.
	Index Index
	// Mirrors receive appended batches. Mirror failures are logged, not returned.
	Mirrors []Sink
	Metrics *metrics.Metrics
}

// Store is an append-only record set keyed by link.
type Store struct {
	mu      sync.Mutex
	file    *CSVFile
	index   Index
	mirrors []Sink
	metrics *metrics.Metrics
}

// Open prepares a store backed by the file at path and seeds the index from
// its existing rows.
func Open(ctx context.Context, path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}

	s := &Store{
		file:    NewCSVFile(path),
		index:   opts.Index,
		mirrors: opts.Mirrors,
		metrics: opts.Metrics,
	}
	if s.index == nil {
		s.index = NewMemoryIndex()
	}

	existing := s.file.Keys()
	if len(existing) > 0 {
		keys := make([]string, 0, len(existing))
		for k := range existing {
			keys = append(keys, k)
		}
		if err := s.index.Add(ctx, keys...); err != nil {
			return nil, fmt.Errorf("failed to seed index: %w", err)
		}
	}

	log.Debug().
		Str("file", path).
		Int("existing_keys", len(existing)).
		Int("mirrors", len(s.mirrors)).
		Msg("Store opened")

	return s, nil
}

// Append persists the records whose link has not been written before, and
// returns how many were written. Links are claimed in the index before the
// file is written, so stores sharing an index never write the same link
// twice; claims are released if the write fails. Records repeated within the
// batch are written once. When nothing is new, the file is not touched.
func (s *Store) Append(ctx context.Context, batch []models.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}

	byLink := make(map[string]models.Record, len(batch))
	keys := make([]string, 0, len(batch))
	for _, rec := range batch {
		if _, dup := byLink[rec.Link]; dup {
			continue
		}
		byLink[rec.Link] = rec
		keys = append(keys, rec.Link)
	}

	claimed, err := s.index.Claim(ctx, keys...)
	if err != nil {
		return 0, fmt.Errorf("index claim failed: %w", err)
	}

	s.metrics.AddDuplicates(len(batch) - len(claimed))
	if len(claimed) == 0 {
		return 0, nil
	}

	fresh := make([]models.Record, len(claimed))
	for i, k := range claimed {
		fresh[i] = byLink[k]
	}

	if err := s.file.Append(fresh); err != nil {
		if rerr := s.index.Release(context.WithoutCancel(ctx), claimed...); rerr != nil {
			log.Error().Err(rerr).Int("keys", len(claimed)).Msg("Failed to release index claims")
		}
		return 0, err
	}
	s.metrics.AddAppended(len(fresh))

	for _, m := range s.mirrors {
		if err := m.Append(ctx, fresh); err != nil {
			log.Warn().Err(err).Str("sink", m.Name()).Int("records", len(fresh)).Msg("Mirror append failed")
		}
	}

	return len(fresh), nil
}

// Len returns the number of keys known to the index.
func (s *Store) Len(ctx context.Context) int {
	return s.index.Len(ctx)
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.file.Path()
}

// Close releases the index and mirrors.
func (s *Store) Close() error {
	var firstErr error
	for _, m := range s.mirrors {
		if err := m.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.index.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
