// Package api handles incoming HTTP requests, request validation, and
// response formatting. It adapts the profile service to JSON over HTTP and
// maps service errors to status codes without leaking internal details.
package api
