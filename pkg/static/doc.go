// Package static implements the static asset gateway: manifest-driven
// resolution of request paths to files under a configured root, conditional
// request handling, cache-control policy, and chunked file streaming.
//
// The package splits the work into four pieces:
//
//   - Manifest: the logical-to-physical filename mapping, reloaded in the
//     background and read under a snapshot discipline.
//   - Resolver: pure path computation from request path to filesystem
//     candidate, including index substitution and traversal rejection.
//   - Handler: the responder. TryServe either writes a complete response
//     (200, 304, or 404) or reports that the request should fall through
//     to the upstream.
//   - Watcher: the background reload loop, polling on an interval and
//     optionally reacting to filesystem notifications.
//
// A request is only ever served from disk when its path resolves inside the
// static root; absent files are not an error but a routing decision.
package static
