// Package env holds build-time version metadata, populated via -ldflags at
// release build time. The zero values are used for local/dev builds.
package env

var (
	Version    = "dev"
	CommitHash = "none"
	BuildTime  = "unknown"
)
