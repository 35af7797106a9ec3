// Package postgres implements the reference content store on PostgreSQL.
// Stroke paths live in the kanji_strokes table, one row per stroke; the
// schema ships as embedded goose migrations.
package postgres
