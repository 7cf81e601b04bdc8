package httpserver

import (
	"net/http"
	"time"
)

// New builds the server carrying the public API. The write timeout leaves
// headroom over the 30s per-request timeout the router's middleware applies,
// so the middleware deadline fires first and the client gets a JSON error
// instead of a dropped connection.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
