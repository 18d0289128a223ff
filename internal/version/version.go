// Package version exposes the build version stamped in at link time.
package version

// version is overridden via -ldflags at build time.
var version = "dev"

// Version returns the current build version.
func Version() string {
	return version
}
