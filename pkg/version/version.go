// Package version holds build metadata of the amdshake binary. The values
// are set with -ldflags "-X" at release time and fall back to the module
// build info otherwise.
package version

import (
	"runtime/debug"
	"sync"
)

const unknown = "<unknown>"

// Build metadata, overridden by the linker.
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

var initOnce sync.Once

// Init fills Version, Commit and Date from the embedded build info when the
// linker left them at their defaults. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}

		apply(info)
	})
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String formats the metadata for the version command.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
