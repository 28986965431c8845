package version

import (
	_ "embed"
	"runtime"
	"strings"
)

//go:embed VERSION
var versionFile string

// planFormatVersion is bumped whenever the plan JSON layout changes incompatibly
const planFormatVersion = "1.0.0"

// Build-time variables set via ldflags
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App returns the version of mysqlschema
func App() string {
	return strings.TrimSpace(versionFile)
}

// PlanFormat returns the version of the plan JSON format
func PlanFormat() string {
	return planFormatVersion
}

// Platform returns the OS/architecture combination
func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}
