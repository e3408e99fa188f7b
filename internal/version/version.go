// Package version holds the build version, overridden at link time via
// -ldflags "-X github.com/parleychat/parley/internal/version.Version=...".
package version

var Version = "0.0.0-dev"
