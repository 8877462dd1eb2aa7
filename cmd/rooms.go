package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/ui"
)

const roomsTimeout = 10 * time.Second

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List the active rooms on a relay",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(clientOptions())
		if err != nil {
			return err
		}
		stopSpinner := ui.RunWaitingSpinner("Fetching rooms...")
		rooms, err := fetchRooms(cmd.Context(), cfg.HTTPURL("/rooms"))
		stopSpinner()
		if err != nil {
			return err
		}
		ui.RenderRoomsTable(os.Stdout, rooms)
		return nil
	},
}

func fetchRooms(ctx context.Context, url string) ([]ui.RoomRow, error) {
	ctx, cancel := context.WithTimeout(ctx, roomsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New("list rooms", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errs.New("list rooms", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.New("list rooms", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var rooms []ui.RoomRow
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		return nil, errs.New("decode rooms", err)
	}
	return rooms, nil
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	addClientFlags(roomsCmd)
}
