// Package version provides the lbsim build version.
package version

// version is set at build time via -ldflags "-X lbsim/internal/version.version=...".
var version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the current version.
func String() string {
	return version
}
