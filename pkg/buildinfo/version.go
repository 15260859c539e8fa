// Package buildinfo holds the version stamped into safetymap binaries.
//
// Release builds set the variables with the linker:
//
//	go build -ldflags "-X github.com/matzehuels/safetymap/pkg/buildinfo.Version=$(git describe --tags) \
//	    -X github.com/matzehuels/safetymap/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/safetymap/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/safetymap
package buildinfo

import "fmt"

// Linker-set build metadata. Unstamped builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template is the cobra version template: `safetymap --version`.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}

// UserAgent identifies safetymap when it fetches remote datasets.
func UserAgent() string {
	return "safetymap/" + Version
}

// Fields returns the build metadata for the server health endpoint.
func Fields() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
		"built":   Date,
	}
}
