// Package config handles configuration loading, parsing, and validation
// from various sources (environment variables, files). It provides type-safe
// access to application settings needed by different components while keeping
// configuration details separate from business logic.
//
// Every key can be set through an environment variable named after it with
// the KANJI_ prefix, for example KANJI_CAPTURE_IDLE_TIMEOUT=10m.
package config
