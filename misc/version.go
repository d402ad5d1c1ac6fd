// Package misc holds program identity set at build time.
package misc

// set with -ldflags "-X folio/misc.version=... -X folio/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "folio"

// GetVersion returns the program version.
func GetVersion() string { return version }

// GetGitHash returns the commit the program was built from.
func GetGitHash() string { return gitHash }

// GetAppName returns the program name used for logs and temporary files.
func GetAppName() string { return appName }
