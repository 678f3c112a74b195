package version

// Version is the application version, overridable at build time via
// -ldflags "-X greylog/internal/version.Version=..."
var Version = "dev"
