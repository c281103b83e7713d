// Package testdb provides helpers for tests that need a real PostgreSQL
// database. Tests using it live behind the "integration" build tag and are
// skipped when no database URL is configured.
package testdb
