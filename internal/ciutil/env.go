package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/kanji-ink/internal/redact"
)

// Common environment variable names used across the codebase.
// These constants ensure consistent access and prevent typos.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// CI run identification
	EnvGitHubRunID    = "GITHUB_RUN_ID"
	EnvGitHubSHA      = "GITHUB_SHA"
	EnvGitHubWorkflow = "GITHUB_WORKFLOW"
	EnvGitLabJobID    = "CI_JOB_ID"
	EnvGitLabSHA      = "CI_COMMIT_SHA"

	// Database connection environment variables
	EnvKanjiTestDBURL   = "KANJI_TEST_DB_URL" // Preferred name
	EnvDatabaseURL      = "DATABASE_URL"
	EnvKanjiDatabaseURL = "KANJI_DATABASE_URL"
)

// IsCI returns true if the current environment is a CI environment.
// It checks for common CI environment variables across different CI providers.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// Metadata returns identifying details of the current CI run, keyed by log
// attribute name. Outside CI it returns an empty map.
func Metadata() map[string]string {
	md := map[string]string{}
	if !IsCI() {
		return md
	}

	switch {
	case os.Getenv(EnvGitHubActions) != "":
		md["ci_provider"] = "github_actions"
		setIfPresent(md, "ci_run_id", EnvGitHubRunID)
		setIfPresent(md, "ci_commit", EnvGitHubSHA)
		setIfPresent(md, "ci_workflow", EnvGitHubWorkflow)
	case os.Getenv(EnvGitLabCI) != "":
		md["ci_provider"] = "gitlab_ci"
		setIfPresent(md, "ci_run_id", EnvGitLabJobID)
		setIfPresent(md, "ci_commit", EnvGitLabSHA)
	default:
		md["ci_provider"] = "generic"
	}
	return md
}

func setIfPresent(md map[string]string, key, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		md[key] = v
	}
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
// Using any but the first variable logs a warning naming the preferred one.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("using fallback environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}
