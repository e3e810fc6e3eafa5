// Package proxy contains the request routing core of the gateway: the
// Router, which decides per request between local static serving and the
// upstream, and the Forwarder, which carries the upstream leg over plain
// HTTP with a port-stripped Host header.
package proxy
