package version

// Set with -ldflags "-X github.com/keshon/mahiro/internal/version.Version=..."
var (
	AppName = "Mahiro"
	Version = "dev"
)
