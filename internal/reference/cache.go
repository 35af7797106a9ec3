// Package reference loads canonical stroke sets from the content store and
// keeps them parsed in memory.
package reference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/phrazzld/kanji-ink/internal/domain"
	"github.com/phrazzld/kanji-ink/internal/domain/strokepath"
	"github.com/phrazzld/kanji-ink/internal/store"
)

// DefaultWarmConcurrency bounds the number of parallel store reads in Warm.
const DefaultWarmConcurrency = 4

// Cache parses reference stroke paths on first use and serves the parsed
// sets from memory. Returned sets are shared and must not be modified. It
// is safe for concurrent use.
type Cache struct {
	store  store.ReferenceStore
	logger *slog.Logger

	mu   sync.RWMutex
	sets map[string][][]domain.Point
}

// NewCache creates an empty cache in front of s.
func NewCache(s store.ReferenceStore, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:  s,
		logger: logger.With(slog.String("component", "reference_cache")),
		sets:   make(map[string][][]domain.Point),
	}
}

// Get returns the parsed reference strokes of a character. A character whose
// paths fail to parse is reported as store.ErrReferenceNotFound, the same as
// an unknown one; failures are not cached.
func (c *Cache) Get(ctx context.Context, character string) ([][]domain.Point, error) {
	c.mu.RLock()
	set, ok := c.sets[character]
	c.mu.RUnlock()
	if ok {
		return set, nil
	}

	paths, err := c.store.GetStrokePaths(ctx, character)
	if err != nil {
		return nil, err
	}

	set = strokepath.ParseBatch(paths)
	if len(set) == 0 {
		c.logger.Warn("reference strokes failed to parse",
			slog.String("character", character),
			slog.Int("path_count", len(paths)))
		return nil, fmt.Errorf("%w: %q has no usable strokes", store.ErrReferenceNotFound, character)
	}

	c.mu.Lock()
	if existing, ok := c.sets[character]; ok {
		set = existing
	} else {
		c.sets[character] = set
	}
	c.mu.Unlock()
	return set, nil
}

// Invalidate drops a character so the next Get reloads it.
func (c *Cache) Invalidate(character string) {
	c.mu.Lock()
	delete(c.sets, character)
	c.mu.Unlock()
}

// Len returns the number of cached characters.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sets)
}

// Warm loads the given characters, or every character in the store when
// none are given, with at most concurrency parallel store reads. Characters
// without usable strokes are skipped; other errors abort the warm-up.
func (c *Cache) Warm(ctx context.Context, concurrency int, characters ...string) error {
	if len(characters) == 0 {
		all, err := c.store.ListCharacters(ctx)
		if err != nil {
			return fmt.Errorf("failed to list characters: %w", err)
		}
		characters = all
	}
	if concurrency < 1 {
		concurrency = DefaultWarmConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, character := range characters {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, err := c.Get(gctx, character)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to warm reference cache: %w", err)
	}

	c.logger.Info("reference cache warmed", slog.Int("character_count", c.Len()))
	return nil
}
