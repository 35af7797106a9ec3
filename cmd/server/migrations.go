package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/platform/postgres"
	"github.com/phrazzld/kanji-ink/internal/redact"
)

// MigrationTableName is the goose version table.
const MigrationTableName = "schema_migrations"

// migrationCommands are the goose commands accepted by -migrate.
var migrationCommands = []string{"up", "down", "reset", "status", "version"}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

// Printf forwards goose progress messages at info level.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level. Unlike the goose default it does not exit;
// the failing command returns its error to main.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// runMigrations opens the configured database and runs one goose command
// against the embedded migrations.
func runMigrations(cfg *config.Config, logger *slog.Logger, command string, verbose bool) error {
	if !slices.Contains(migrationCommands, command) {
		return fmt.Errorf("unknown migration command %q (expected one of %v)", command, migrationCommands)
	}

	log := logger.With(
		slog.String("component", "migrations"),
		slog.String("correlation_id", uuid.NewString()),
		slog.String("command", command))

	db, err := openDatabase(cfg.Database.URL, 5, 2)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database connection", redact.ErrorAttr(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return executeMigration(ctx, db, log, command, verbose)
}

// executeMigration runs command with goose reading the embedded SQL files.
func executeMigration(ctx context.Context, db *sql.DB, log *slog.Logger, command string, verbose bool) error {
	start := time.Now()

	goose.SetBaseFS(postgres.MigrationsFS)
	goose.SetLogger(&slogGooseLogger{logger: log})
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, db, postgres.MigrationsDir)
	case "down":
		err = goose.DownContext(ctx, db, postgres.MigrationsDir)
	case "reset":
		err = goose.ResetContext(ctx, db, postgres.MigrationsDir)
	case "status":
		err = goose.StatusContext(ctx, db, postgres.MigrationsDir)
	case "version":
		err = goose.VersionContext(ctx, db, postgres.MigrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q (expected one of %v)", command, migrationCommands)
	}
	if err != nil {
		log.Error("migration command failed",
			redact.ErrorAttr(err),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		return fmt.Errorf("migration command %q failed: %w", command, err)
	}

	attrs := []any{slog.Int64("duration_ms", time.Since(start).Milliseconds())}
	if verbose {
		version, verr := goose.GetDBVersionContext(ctx, db)
		if verr != nil {
			log.Warn("failed to read schema version", redact.ErrorAttr(verr))
		} else {
			attrs = append(attrs, slog.Int64("schema_version", version))
		}
	}
	log.Info("migration command completed", attrs...)
	return nil
}
