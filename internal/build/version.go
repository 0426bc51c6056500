// Package build provides version and build information for relnotes.
// It has no dependencies on other internal packages.
package build

import "strings"

var (
	// Version information - set via ldflags during build
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/relnotes"

// IsDevBuild returns true if running a development build (not a release).
func IsDevBuild() bool {
	return Version == "dev"
}

// ShortCommit returns the first seven characters of Commit.
func ShortCommit() string {
	if len(Commit) > 7 && !strings.Contains(Commit, " ") {
		return Commit[:7]
	}
	return Commit
}

// UserAgent identifies relnotes to the APIs it calls.
func UserAgent() string {
	return "relnotes/" + Version
}
