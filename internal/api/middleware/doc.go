// Package middleware provides the HTTP middleware shared by all routes:
// request tracing with a trace-scoped logger, and CORS for the browser client.
package middleware
