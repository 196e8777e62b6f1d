package config

// Shrink defaults.
const (
	DefaultShrinkStrategy   = "shorten"
	DefaultShrinkProvenance = false
)

// Treeshake defaults.
const (
	DefaultTreeshakeMergeDuplicates = true
	DefaultTreeshakeStripUseStrict  = false
	DefaultTreeshakeProvenance      = false
)

// Logging defaults.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false
)

// MCP defaults.
const (
	DefaultMCPMaxBundleBytes = "8MiB"
)
