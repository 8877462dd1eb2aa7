package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pion/webrtc/v4"

	"github.com/ayushi2910/video-streaming-platform/internal/config"
	"github.com/ayushi2910/video-streaming-platform/internal/errs"
	"github.com/ayushi2910/video-streaming-platform/internal/logging"
	"github.com/ayushi2910/video-streaming-platform/internal/media"
	"github.com/ayushi2910/video-streaming-platform/internal/room"
	"github.com/ayushi2910/video-streaming-platform/internal/rtc"
	"github.com/ayushi2910/video-streaming-platform/internal/session"
	"github.com/ayushi2910/video-streaming-platform/internal/signaling"
	"github.com/ayushi2910/video-streaming-platform/internal/ui"
)

// ConnectionContext is an open relay connection and its event stream.
type ConnectionContext struct {
	Client  *signaling.Client
	Handler *signaling.Handler
	Config  *config.Config
}

func NewConnectionContext(ctx context.Context, cfg *config.Config) (*ConnectionContext, error) {
	client := signaling.NewClient(cfg.WebSocketURL, cfg.Binary, slog.Default())
	if err := client.Connect(ctx); err != nil {
		return nil, errs.New("connect to server", err)
	}

	handler := signaling.NewHandler(client.Incoming(), slog.Default())
	go handler.Start()

	return &ConnectionContext{
		Client:  client,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (c *ConnectionContext) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

func LoadConfig(opts config.Options) (*config.Config, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, errs.New("load config", err)
	}
	return cfg, nil
}

// runCall joins roomID, or a new room when roomID is empty, and shows the
// call screen until the user leaves or the relay goes away.
func runCall(ctx context.Context, cfg *config.Config, roomID string) error {
	level := logging.Init(slog.LevelError)
	log := slog.Default()

	api, err := rtc.NewAPI(level)
	if err != nil {
		return errs.New("create webrtc api", err)
	}

	fmt.Println()
	sp := ui.NewConnectionSpinner("Connecting to relay...")
	sp.Start()
	conn, err := NewConnectionContext(ctx, cfg)
	if err != nil {
		sp.Stop()
		return err
	}
	defer conn.Close()
	sp.Success("Connected to " + cfg.Server)

	iceConf := rtc.Configuration(cfg)
	if iceConf.ICETransportPolicy == webrtc.ICETransportPolicyRelay && !cfg.ForceRelay {
		ui.PrintWarning("VPN or CGNAT detected, using TURN relay only")
	}

	screen := ui.NewCallUI()
	manager := session.NewManager(conn.Client, rtc.NewFactory(api, iceConf, log), screen, log)
	client := room.New(conn.Client, media.NewSynthetic(""), manager, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- client.Run(ctx, conn.Handler.Events())
		cancel()
	}()

	if roomID == "" {
		roomID, err = client.Create(ctx)
		if err != nil {
			return err
		}
		fmt.Println(ui.NewRoomInfo(roomID, cfg.GetRoomLink(roomID)).View())
	} else {
		if err := client.JoinRoom(ctx, roomID); err != nil {
			return err
		}
		ui.PrintInfof("Joined room %s", roomID)
	}

	uiErr := screen.Run(ctx, client)
	cancel()

	if err := <-runErr; errors.Is(err, room.ErrRelayClosed) {
		return errs.New("call", err)
	}
	if uiErr != nil {
		return errs.New("call screen", uiErr)
	}
	ui.PrintSuccessf("Left room %s", roomID)
	return nil
}
