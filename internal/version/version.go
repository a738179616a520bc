package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/gadai/backend/internal/version.Version=v1.2.0
	Commit  = "unknown" // -X github.com/gadai/backend/internal/version.Commit=$(git rev-parse --short HEAD)
	Date    = "unknown" // -X github.com/gadai/backend/internal/version.Date=$(date -u +%FT%TZ)
)
