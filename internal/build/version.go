package build

// Overwritten at build time with
// -ldflags "-X github.com/bornholm/crosspost/internal/build.ShortVersion=..."
var (
	ShortVersion = "unknown"
	LongVersion  = "unknown"
)
