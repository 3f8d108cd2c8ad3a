// Package version holds build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/kailas-cloud/geolens/internal/version.Version=v1.2.0 ..." ./cmd/geolens
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata for logs and the User-Agent of outgoing requests.
func String() string {
	return fmt.Sprintf("geolens/%s (commit %s, built %s)", Version, Commit, Date)
}
