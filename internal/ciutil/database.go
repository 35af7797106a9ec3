package ciutil

import "log/slog"

// GetTestDatabaseURL returns the database URL integration tests run against.
// It checks KANJI_TEST_DB_URL, then DATABASE_URL, then KANJI_DATABASE_URL,
// and returns an empty string when none is set so callers can skip.
func GetTestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks(
		[]string{EnvKanjiTestDBURL, EnvDatabaseURL, EnvKanjiDatabaseURL},
		"",
		logger,
	)
}
