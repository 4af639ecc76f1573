// Package httpserver wraps net/http with graceful shutdown, env-driven
// timeouts and a health probe handler.
package httpserver
