// Package config provides configuration loading, validation, and defaults
// for Rosegate.
//
// Configuration is read from a single YAML file and can be overridden with
// ROSEGATE_* environment variables. The loading sequence is:
//
//  1. Parse YAML from file
//  2. Apply default values (ApplyDefaults)
//  3. Apply environment variable overrides
//  4. Validate the final configuration (Validate)
//
// Example configuration:
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//	upstream:
//	  address: "backend:9000"
//	static:
//	  root: /srv/www
//	  mount_path: /
//	  manifest_path: /srv/www/manifest.json
//	  immutable_cache_seconds: 31536000
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
//	access_log:
//	  enabled: true
//	  sqlite:
//	    path: data/access.db
//
// Validation errors are collected into a ValidationError listing every
// offending field rather than failing on the first problem.
package config
