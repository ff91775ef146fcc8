package version

// Version is the callctl and server version. Release builds set it with:
//
//	go build -ldflags="-X 'github.com/woundlink/callcore/internal/version.Version=v1.0.0'"
var Version = "dev"
