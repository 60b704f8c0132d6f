package version

import (
	"runtime"
)

// These variables are intended to be set at build time via -ldflags.
var (
	// Version is the semantic version of the build, e.g. v0.1.0. Defaults to "dev".
	Version = "dev"
	// Commit is the short git commit hash.
	Commit = ""
	// Go is the Go toolchain version used for the build.
	Go = runtime.Version()
)

// UserAgent is the default User-Agent sent by the transport client.
func UserAgent() string {
	ua := "restkit/" + Version
	if Commit != "" {
		ua += "+" + Commit
	}
	return ua + " (" + Go + ")"
}

// Info returns version metadata suitable for logging.
func Info() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"go":      Go,
	}
}
