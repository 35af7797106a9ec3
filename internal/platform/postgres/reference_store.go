package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/redact"
	"github.com/phrazzld/kanji-ink/internal/store"
)

// PostgresReferenceStore implements store.ReferenceStore and
// store.ReferenceWriter on the kanji_strokes table.
type PostgresReferenceStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresReferenceStore creates a reference store on an open database.
// If logger is nil, a default logger will be used.
func NewPostgresReferenceStore(db *sql.DB, logger *slog.Logger) *PostgresReferenceStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReferenceStore{
		db:     db,
		logger: logger.With(slog.String("component", "reference_store")),
	}
}

var (
	_ store.ReferenceStore  = (*PostgresReferenceStore)(nil)
	_ store.ReferenceWriter = (*PostgresReferenceStore)(nil)
)

// GetStrokePaths implements store.ReferenceStore.GetStrokePaths.
// It returns store.ErrReferenceNotFound when the character has no rows.
func (s *PostgresReferenceStore) GetStrokePaths(ctx context.Context, character string) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	paths, err := queryStrings(ctx, s.db, `
		SELECT path
		FROM kanji_strokes
		WHERE character = $1
		ORDER BY stroke_index
	`, character)
	if err != nil {
		err = MapError("get", character, err)
		log.Error("failed to load stroke paths", redact.ErrorAttr(err))
		return nil, err
	}

	if len(paths) == 0 {
		log.Debug("no reference strokes", slog.String("character", character))
		return nil, fmt.Errorf("%w: %q", store.ErrReferenceNotFound, character)
	}

	log.Debug("loaded reference strokes",
		slog.String("character", character),
		slog.Int("stroke_count", len(paths)))
	return paths, nil
}

// ListCharacters implements store.ReferenceStore.ListCharacters.
func (s *PostgresReferenceStore) ListCharacters(ctx context.Context) ([]string, error) {
	characters, err := queryStrings(ctx, s.db, `
		SELECT DISTINCT character
		FROM kanji_strokes
		ORDER BY character
	`)
	if err != nil {
		err = MapError("list", "", err)
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list characters", redact.ErrorAttr(err))
		return nil, err
	}
	return characters, nil
}

// ReplaceStrokePaths implements store.ReferenceWriter.ReplaceStrokePaths.
// Existing rows for the character are deleted and the new paths inserted in
// order within one transaction. Blank input is rejected with
// store.ErrInvalidEntity before touching the database.
func (s *PostgresReferenceStore) ReplaceStrokePaths(ctx context.Context, character string, paths []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if strings.TrimSpace(character) == "" {
		return fmt.Errorf("%w: character is required", store.ErrInvalidEntity)
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one stroke path is required", store.ErrInvalidEntity)
	}
	for i, p := range paths {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: stroke %d has an empty path", store.ErrInvalidEntity, i)
		}
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, q store.DBTX) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM kanji_strokes WHERE character = $1`, character); err != nil {
			return MapError("replace", character, err)
		}
		return insertPaths(ctx, q, character, paths)
	})
	if err != nil {
		log.Error("failed to replace stroke paths",
			redact.ErrorAttr(err),
			slog.String("character", character))
		return err
	}

	log.Info("reference strokes replaced",
		slog.String("character", character),
		slog.Int("stroke_count", len(paths)))
	return nil
}

// insertPaths writes paths as strokes 0..n-1 of character.
func insertPaths(ctx context.Context, q store.DBTX, character string, paths []string) error {
	for i, p := range paths {
		_, err := q.ExecContext(ctx, `
			INSERT INTO kanji_strokes (character, stroke_index, path)
			VALUES ($1, $2, $3)
		`, character, i, p)
		if err != nil {
			return MapError("replace", character, err)
		}
	}
	return nil
}

// queryStrings runs a query selecting one text column.
func queryStrings(ctx context.Context, q store.DBTX, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
