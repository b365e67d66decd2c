package config

// Build-time values injected via ldflags.
//
// Build with:
//
//	go build -ldflags "-X 'github.com/slipstream/slipstream/internal/config.Version=1.2.3'"
var (
	// Version is the application version, injected at build time.
	// Defaults to "dev" if not set.
	Version = "dev"
)
