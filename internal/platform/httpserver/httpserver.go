// Package httpserver constructs the http.Server the composition root runs.
// Timeouts are conservative: report endpoints can hold a connection while
// breakdowns compute, so only the header read is tightly bounded.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server for the given address and router. Shutdown is the
// caller's responsibility (cmd/server wires it to SIGTERM).
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
