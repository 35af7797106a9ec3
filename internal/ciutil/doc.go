// Package ciutil provides utilities for CI and environment-specific functionality.
//
// It centralizes detection of the execution environment (CI or local
// development), the metadata attached to logs when running under CI, and
// lookup of the database URL used by integration tests.
package ciutil
