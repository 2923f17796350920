package version

// Set at build time with -ldflags "-X github.com/thomcc/radix-sorter/version.Version=..."
var (
	Version = "dev"
	Date    = ""
)
