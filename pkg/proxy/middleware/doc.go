// Package middleware provides the HTTP middleware chain for the gateway.
//
// The chain, outermost first, is Recovery, Logging, RequestID, CORS. CORS is
// reflective: the request's Origin is echoed back with credentials allowed,
// and OPTIONS requests are answered directly without reaching the router.
// Because the CORS headers are set on the ResponseWriter before the inner
// handlers run, they apply uniformly to static, proxied, and error responses.
package middleware
