package version

// Version is the current version of the strategy builder.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-strategy-builder/internal/version.Version=0.4.1"
// The value "main" indicates a development build.
var Version = "v0.4.0"

// GetVersion returns the current version of the builder.
func GetVersion() string {
	return Version
}
