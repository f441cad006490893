// Package httpserver constructs the coordinator's HTTP server.
package httpserver

import (
	"net/http"
	"time"
)

// Timeouts sized for this API's traffic: registry reads return quickly, but
// a sharing fan-out or an affiliation sync kickoff can hold a response for a
// while, so the write timeout stays generous.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute
	idleTimeout       = 90 * time.Second
)

// New wraps the router in a server tuned for the consortium API.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
