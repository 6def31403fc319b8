// Package version carries build identification stamped at link time via
// -ldflags. The dev values mean a local, unstamped build.
package version

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
