// Package store defines the persistence interfaces for reference content.
// The capture and scoring pipeline only reads reference stroke paths; the
// import endpoint writes them. Backends live under internal/platform.
package store
