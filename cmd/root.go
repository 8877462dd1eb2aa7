package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayushi2910/video-streaming-platform/internal/ui"
	"github.com/ayushi2910/video-streaming-platform/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meshroom",
	Short: "Room based WebRTC video calls over a tiny signaling relay",
	Long: `meshroom runs a signaling relay and a terminal client for many-to-many WebRTC calls.
Every member of a room holds a direct peer connection to every other member; the relay only
tracks room membership and forwards offers, answers and ICE candidates between members.`,
	Version: version.Version,
}

// Execute runs the root command until it finishes or the process is
// interrupted. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.PrintError(err.Error())
		stop()
		os.Exit(1)
	}
}
