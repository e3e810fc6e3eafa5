// Package server wires the gateway together and owns the http.Server
// lifecycle: construction from configuration, background worker startup,
// graceful shutdown.
package server
