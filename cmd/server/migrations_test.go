package main

import (
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/platform/logger"
	"github.com/phrazzld/kanji-ink/internal/platform/postgres"
)

func TestRunMigrationsRejectsBadInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		command string
		url     string
		wantErr string
	}{
		{
			name:    "unknown command",
			command: "sideways",
			url:     "postgres://localhost:5432/kanji",
			wantErr: "unknown migration command",
		},
		{
			name:    "empty url",
			command: "status",
			wantErr: "database URL is empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{Database: config.DatabaseConfig{URL: tc.url}}
			err := runMigrations(cfg, discardLogger(), tc.command, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

// Not parallel: goose keeps its base filesystem in package state.
func TestEmbeddedMigrations(t *testing.T) {
	goose.SetBaseFS(postgres.MigrationsFS)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	migrations, err := goose.CollectMigrations(postgres.MigrationsDir, 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.True(t, strings.HasSuffix(migrations[0].Source, "_create_kanji_strokes.sql"))
	assert.Less(t, migrations[0].Version, migrations[1].Version)
}

func TestSlogGooseLogger(t *testing.T) {
	t.Parallel()

	log, logBuf := logger.GetTestLogger(t)
	gl := &slogGooseLogger{logger: log}

	gl.Printf("OK   %s (%d ms)", "20251001120000_create_kanji_strokes.sql", 12)
	gl.Fatalf("failed to apply %s", "bad.sql")

	logger.AssertLogField(t, logBuf, "msg", "OK   20251001120000_create_kanji_strokes.sql (12 ms)")
	logger.AssertLogField(t, logBuf, "level", "ERROR")
	logger.AssertLogField(t, logBuf, "msg", "failed to apply bad.sql")
}
