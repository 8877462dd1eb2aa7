package version

// Version is the current version of meshroom.
// Override at build time with:
//
//	go build -ldflags="-X 'github.com/ayushi2910/video-streaming-platform/internal/version.Version=v1.0.0'"
var Version = "dev"
