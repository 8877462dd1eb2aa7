package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ayushi2910/video-streaming-platform/internal/config"
	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/logging"
	"github.com/ayushi2910/video-streaming-platform/internal/server"
)

var (
	flagServeAddr      string
	flagServeCert      string
	flagServeKey       string
	flagServeOrigins   []string
	flagServeNoMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling relay",
	Long: `Run the signaling relay.

The relay accepts websocket clients on /ws, keeps room membership and forwards
negotiation messages between members. It also serves /health, /rooms and /metrics.

Examples:
  meshroom serve
  meshroom serve --addr :8443 --cert cert.pem --key key.pem
  meshroom serve --origins https://call.example.com --no-metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(slog.LevelInfo)

		conf, err := config.LoadServer(config.ServerOptions{
			Addr:           flagServeAddr,
			CertFile:       flagServeCert,
			KeyFile:        flagServeKey,
			AllowedOrigins: flagServeOrigins,
			DisableMetrics: flagServeNoMetrics,
		})
		if err != nil {
			return errs.New("load config", err)
		}

		return server.New(conf).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default "+config.DefaultListenAddr+")")
	serveCmd.Flags().StringVar(&flagServeCert, "cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&flagServeKey, "key", "", "TLS key file")
	serveCmd.Flags().StringSliceVar(&flagServeOrigins, "origins", nil, "Allowed CORS origins")
	serveCmd.Flags().BoolVar(&flagServeNoMetrics, "no-metrics", false, "Disable the /metrics endpoint")
}
