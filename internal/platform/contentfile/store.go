// Package contentfile serves reference stroke paths from a YAML bundle, for
// deployments that ship content with the binary instead of a database.
//
// A bundle looks like:
//
//	version: 1
//	characters:
//	  十:
//	    - "M10,50 c 20,0 60,0 80,0"
//	    - "M50,10 c 0,20 0,60 0,80"
package contentfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phrazzld/kanji-ink/internal/store"
)

// BundleVersion is the only bundle format version understood.
const BundleVersion = 1

// ErrInvalidBundle is returned when a bundle cannot be decoded or fails
// validation.
var ErrInvalidBundle = errors.New("invalid content bundle")

type bundle struct {
	Version    int                 `yaml:"version"`
	Characters map[string][]string `yaml:"characters"`
}

// Store is a read-only store.ReferenceStore backed by an in-memory copy of
// a YAML bundle. It is safe for concurrent use.
type Store struct {
	characters map[string][]string
	sorted     []string
}

var _ store.ReferenceStore = (*Store)(nil)

// Load reads and validates the bundle at path.
func Load(path string, logger *slog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open content bundle: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("content bundle loaded",
			slog.String("component", "contentfile"),
			slog.Int("character_count", len(s.sorted)))
	}
	return s, nil
}

// Parse decodes and validates a bundle. Every character must have at least
// one stroke and no stroke path may be blank.
func Parse(r io.Reader) (*Store, error) {
	var b bundle
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidBundle, b.Version)
	}

	s := &Store{characters: make(map[string][]string, len(b.Characters))}
	for character, paths := range b.Characters {
		character = strings.TrimSpace(character)
		if character == "" {
			return nil, fmt.Errorf("%w: blank character key", ErrInvalidBundle)
		}
		if len(paths) == 0 {
			return nil, fmt.Errorf("%w: %q has no strokes", ErrInvalidBundle, character)
		}
		for i, p := range paths {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("%w: %q stroke %d is blank", ErrInvalidBundle, character, i)
			}
		}
		s.characters[character] = slices.Clone(paths)
		s.sorted = append(s.sorted, character)
	}
	slices.Sort(s.sorted)
	return s, nil
}

// GetStrokePaths implements store.ReferenceStore.GetStrokePaths.
func (s *Store) GetStrokePaths(ctx context.Context, character string) ([]string, error) {
	paths, ok := s.characters[character]
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrReferenceNotFound, character)
	}
	return slices.Clone(paths), nil
}

// ListCharacters implements store.ReferenceStore.ListCharacters.
func (s *Store) ListCharacters(ctx context.Context) ([]string, error) {
	return slices.Clone(s.sorted), nil
}

// ReplaceStrokePaths always fails: bundles are edited offline.
func (s *Store) ReplaceStrokePaths(ctx context.Context, character string, paths []string) error {
	return store.ErrReadOnly
}
