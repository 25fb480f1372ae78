// Package version provides build information and the on-disk artifact format revision.
package version

// ArtifactFormat is bumped whenever the persisted pipeline layout changes incompatibly.
// Loaders reject artifacts written with a newer format
const ArtifactFormat = 1

// BuildInfo holds version information about the build.
type BuildInfo struct {
	Service        string `json:"service"`
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	Date           string `json:"date"`
	ArtifactFormat int    `json:"artifact_format"`
}

// Info returns the build information for the named binary. The version, commit, and date
// variables are intended to be set at build time using -ldflags.
func Info(service string) BuildInfo {
	// Set via -ldflags "-X 'predictkit/internal/core/version.version=v0.1.0'
	// -X 'predictkit/internal/core/version.commit=abcd' -X 'predictkit/internal/core/version.date=2026-10-01'"
	if service == "" {
		service = "predictkit"
	}
	return BuildInfo{
		Service:        service,
		Version:        version,
		Commit:         commit,
		Date:           date,
		ArtifactFormat: ArtifactFormat,
	}
}

// String renders a one-line banner for -version flags and startup logs
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
