package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phrazzld/kanji-ink/internal/store"
)

// Postgres error codes the reference store tells apart.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeCheckViolation   = "23514"
	codeStringTooLong    = "22001"
	codeInvalidEncoding  = "22021"
)

// checkConstraints names the kanji_strokes CHECK constraints.
var checkConstraints = map[string]string{
	"kanji_strokes_character_not_blank":       "character is blank",
	"kanji_strokes_stroke_index_non_negative": "stroke index is negative",
	"kanji_strokes_path_not_blank":            "stroke path is blank",
}

// MapError turns an error from operation on character into a
// *store.StoreError. Known Postgres failures also wrap the matching store
// sentinel; anything else is wrapped as it is.
func MapError(operation, character string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.NewStoreError(operation, character, "no rows",
			fmt.Errorf("%w: %w", store.ErrReferenceNotFound, err))
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return store.NewStoreError(operation, character, "query failed", err)
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		return store.NewStoreError(operation, character, "duplicate stroke index",
			fmt.Errorf("%w: %w", store.ErrDuplicate, err))
	case codeCheckViolation:
		msg, ok := checkConstraints[pgErr.ConstraintName]
		if !ok {
			msg = fmt.Sprintf("constraint %s violated", pgErr.ConstraintName)
		}
		return store.NewStoreError(operation, character, msg,
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	case codeNotNullViolation:
		return store.NewStoreError(operation, character, pgErr.ColumnName+" is required",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	case codeStringTooLong, codeInvalidEncoding:
		return store.NewStoreError(operation, character, "value rejected",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	return store.NewStoreError(operation, character, "query failed", err)
}
