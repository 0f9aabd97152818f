// Package env holds build information, set at link time with
// -ldflags "-X github.com/ostafen/fatscope/internal/env.Version=...".
package env

const AppName = "fatscope"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
