package static

import (
	"path/filepath"
	"strings"
)

// ResolvedAsset is the outcome of resolving a request path against the
// static file tree.
type ResolvedAsset struct {
	// FullPath is the absolute filesystem path to stat and serve. When the
	// manifest rewrote the filename, this points at the physical file.
	FullPath string

	// LogicalPath is the normalized request-relative path before any
	// manifest substitution, used for content-type detection, cache policy,
	// and logging. It never has a leading slash.
	LogicalPath string

	// FromManifest reports whether the physical filename came from a
	// manifest substitution rather than the literal request path.
	FromManifest bool
}

// Resolver maps request paths to filesystem candidates under a single root
// directory. Resolution is purely computational; it performs no I/O. The
// manifest may be nil, in which case logical paths map to themselves.
type Resolver struct {
	root      string
	mountPath string
	indexFile string
	manifest  *Manifest
}

// NewResolver builds a Resolver for the given root directory. mountPath is
// normalized to a leading slash and no trailing slash (the root mount stays
// "/"); requests outside the mount are not resolvable.
func NewResolver(root, mountPath, indexFile string, manifest *Manifest) *Resolver {
	return &Resolver{
		root:      root,
		mountPath: normalizeMountPath(mountPath),
		indexFile: indexFile,
		manifest:  manifest,
	}
}

// normalizeMountPath ensures a leading slash and strips trailing slashes,
// except for the bare root mount.
func normalizeMountPath(prefix string) string {
	if prefix == "" || prefix == "/" {
		return "/"
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return strings.TrimRight(prefix, "/")
}

// Resolve maps a raw request path to a filesystem candidate. It returns
// false when the request is outside the mount prefix or names an illegal
// path component; such requests fall through to the upstream.
//
// The steps are:
//
//  1. Require the mount prefix, then strip it along with at most one
//     leading slash on the remainder.
//  2. Substitute the index file for the empty remainder and for paths
//     ending in "/".
//  3. Reject paths containing parent-directory or root-anchored
//     components.
//  4. Consult the manifest for non-".html" paths; a manifest hit supplies
//     the physical filename, validated by the same component rules, while
//     the logical path keeps its pre-manifest identity.
func (r *Resolver) Resolve(requestPath string) (ResolvedAsset, bool) {
	if !strings.HasPrefix(requestPath, r.mountPath) {
		return ResolvedAsset{}, false
	}

	relative := requestPath[len(r.mountPath):]
	relative = strings.TrimPrefix(relative, "/")

	logical := relative
	if logical == "" || strings.HasSuffix(logical, "/") {
		logical += r.indexFile
	}

	if containsIllegalComponent(logical) {
		return ResolvedAsset{}, false
	}

	physical := logical
	fromManifest := false
	if r.manifest != nil && !strings.HasSuffix(logical, ".html") {
		if mapped, ok := r.manifest.Lookup(logical); ok {
			physical = mapped
			fromManifest = true
		}
	}
	if containsIllegalComponent(physical) {
		return ResolvedAsset{}, false
	}

	return ResolvedAsset{
		FullPath:     filepath.Join(r.root, filepath.FromSlash(physical)),
		LogicalPath:  logical,
		FromManifest: fromManifest,
	}, true
}

// containsIllegalComponent reports whether the slash-separated path contains
// a parent-directory component or is anchored at the filesystem root. Such
// paths could escape the static root and are never served.
func containsIllegalComponent(path string) bool {
	if strings.HasPrefix(path, "/") {
		return true
	}
	for _, component := range strings.Split(path, "/") {
		if component == ".." {
			return true
		}
	}
	return false
}
