// Package database owns the *sql.DB lifecycle: opening a pool for the
// configured driver, health checks, reconnecting after an outage and
// running embedded goose migrations.
package database
