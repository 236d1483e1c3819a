// Package buildinfo carries release metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/splitkit-dev/splitkit/internal/buildinfo.Version=v0.3.0"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String formats the metadata for `splitkit --version`.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}
