package runtime

var (
	// Version is set at build time via ldflags
	Version = "dev"
	// GitCommit is set at build time via ldflags
	GitCommit = "unknown"
	// Timestamp is set at build time via ldflags
	Timestamp = "unknown"
)
