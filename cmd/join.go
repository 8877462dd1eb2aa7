package cmd

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayushi2910/video-streaming-platform/internal/config"
	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/room"
	"github.com/ayushi2910/video-streaming-platform/internal/ui"
)

var (
	flagServer   string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
	flagRelay    bool
	flagBinary   bool
)

var joinCmd = &cobra.Command{
	Use:     "join <room-id|url>",
	Aliases: []string{"j"},
	Short:   "Join a call room",
	Long: `Join a call room and connect to every member already in it.

Examples:
  meshroom join luna-cozy-ramen-comet
  meshroom join http://localhost:3000/r/luna-cozy-ramen-comet
  meshroom join luna-cozy-ramen-comet --relay --turn turn.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, err := parseRoomInput(args[0])
		if err != nil {
			return err
		}
		cfg, err := LoadConfig(clientOptions())
		if err != nil {
			return err
		}
		return runCall(cmd.Context(), cfg, roomID)
	},
}

var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"c"},
	Short:   "Create a new call room and join it",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(clientOptions())
		if err != nil {
			return err
		}
		return runCall(cmd.Context(), cfg, "")
	},
}

func clientOptions() config.Options {
	return config.Options{
		Server:     flagServer,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		ForceRelay: flagRelay,
		Binary:     flagBinary,
	}
}

func parseRoomInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errs.New("parse room", room.ErrEmptyRoomID)
	}

	if strings.Contains(input, "://") || strings.Contains(input, "/") {
		roomID, err := extractRoomIDFromURL(input)
		if err != nil {
			return "", err
		}
		ui.PrintSuccessf("Extracted room ID: %s", roomID)
		return roomID, nil
	}

	return input, nil
}

func extractRoomIDFromURL(urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", errs.New("parse URL", err)
	}

	path := strings.TrimSuffix(parsedURL.Path, "/")
	parts := strings.Split(path, "/")

	for i, part := range parts {
		if part == "r" && i+1 < len(parts) && parts[i+1] != "" {
			return url.PathUnescape(parts[i+1])
		}
	}

	return "", fmt.Errorf("could not extract room ID from URL: %s", urlStr)
}

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagServer, "server", "", "Relay address (default "+config.DefaultServer+")")
	cmd.Flags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	cmd.Flags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	cmd.Flags().StringVar(&flagTURNUser, "turn-user", "", "TURN username")
	cmd.Flags().StringVar(&flagTURNPass, "turn-pass", "", "TURN password")
	cmd.Flags().BoolVarP(&flagRelay, "relay", "r", false, "Force relay mode")
	cmd.Flags().BoolVar(&flagBinary, "binary", false, "Use msgpack frames on the signaling socket")
}

func init() {
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(createCmd)

	addClientFlags(joinCmd)
	addClientFlags(createCmd)
}
