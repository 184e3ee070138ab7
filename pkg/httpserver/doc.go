// Package httpserver wraps net/http.Server with env-driven configuration,
// graceful shutdown on SIGINT/SIGTERM or context cancellation, and probe
// handlers for health checking.
package httpserver
