package main

import (
	"log/slog"

	"github.com/ayushi2910/video-streaming-platform/cmd"
	"github.com/ayushi2910/video-streaming-platform/internal/logging"
)

func main() {
	logging.Init(slog.LevelError)
	cmd.Execute()
}
