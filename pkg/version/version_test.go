package version_test

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/amdshake/pkg/version"
)

func TestApply_FillsDefaults(t *testing.T) {
	restore := snapshot()
	t.Cleanup(restore)

	version.Version, version.Commit, version.Date = "dev", "<unknown>", "<unknown>"

	version.ProbeApply(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})

	assert.Equal(t, "v1.2.3 (commit: abc123, built: 2026-01-02T03:04:05Z)", version.String())
}

func TestApply_KeepsLinkerValues(t *testing.T) {
	restore := snapshot()
	t.Cleanup(restore)

	version.Version, version.Commit, version.Date = "v2.0.0", "deadbeef", "today"

	version.ProbeApply(&debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	})

	assert.Equal(t, "v2.0.0", version.Version)
	assert.Equal(t, "deadbeef", version.Commit)
	assert.Equal(t, "today", version.Date)
}

func TestInit_Idempotent(t *testing.T) {
	version.Init()
	first := version.String()

	version.Init()
	assert.Equal(t, first, version.String())
}

func snapshot() func() {
	v, c, d := version.Version, version.Commit, version.Date

	return func() {
		version.Version, version.Commit, version.Date = v, c, d
	}
}
