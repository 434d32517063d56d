// Package version carries the build version.  Release builds override it
// with -ldflags "-X github.com/yanizio/promgen/internal/version.Version=…".
package version

// Version is reported to Sentry as the default release and exported on
// /metrics through promgen_build_info.
var Version = "0.0.0-dev"
