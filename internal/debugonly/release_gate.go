//go:build !debug

// Package debugonly reports whether the binary was built with the debug tag.
// Debug builds treat dispatcher contract violations as fatal.
package debugonly

// Enabled reports whether this is a debug build.
func Enabled() bool {
	return false
}
