// Package buildinfo holds build metadata injected via ldflags.
package buildinfo

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
