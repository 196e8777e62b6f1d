package version

import "runtime/debug"

// ProbeApply exposes apply for tests.
func ProbeApply(info *debug.BuildInfo) { apply(info) }
