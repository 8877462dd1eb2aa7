package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayushi2910/video-streaming-platform/internal/protocol"
	"github.com/ayushi2910/video-streaming-platform/internal/room"
	"github.com/ayushi2910/video-streaming-platform/internal/session"
)

const refreshInterval = 250 * time.Millisecond

// Controller is the room client as seen by the call screen.
type Controller interface {
	ToggleVideo() bool
	ToggleAudio() bool
	LeaveRoom()
	Status() room.Status
}

type TickMsg time.Time

type peerUpdated session.PeerInfo

type peerRemoved protocol.ConnID

// CallUI shows the peers of the current room. It is a session.Renderer, so
// sessions report changes to it directly.
type CallUI struct {
	updates chan tea.Msg
}

// NewCallUI creates the call screen. It renders nothing until Run.
func NewCallUI() *CallUI {
	return &CallUI{updates: make(chan tea.Msg, 256)}
}

// UpdatePeer implements session.Renderer. Updates are dropped when the
// screen falls behind; the periodic refresh catches up.
func (u *CallUI) UpdatePeer(info session.PeerInfo) {
	select {
	case u.updates <- peerUpdated(info):
	default:
	}
}

// RemovePeer implements session.Renderer.
func (u *CallUI) RemovePeer(remote protocol.ConnID) {
	select {
	case u.updates <- peerRemoved(remote):
	default:
	}
}

// Run shows the call screen until the user leaves or ctx is done.
func (u *CallUI) Run(ctx context.Context, ctrl Controller) error {
	p := tea.NewProgram(newCallModel(ctrl, u.updates), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

type callModel struct {
	ctrl     Controller
	updates  <-chan tea.Msg
	spinner  spinner.Model
	status   room.Status
	peers    map[protocol.ConnID]session.PeerInfo
	quitting bool
}

func newCallModel(ctrl Controller, updates <-chan tea.Msg) *callModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := &callModel{
		ctrl:    ctrl,
		updates: updates,
		spinner: s,
		peers:   make(map[protocol.ConnID]session.PeerInfo),
	}
	m.refresh()
	return m
}

func (m *callModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForUpdates(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m *callModel) listenForUpdates() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// refresh replaces the peer list with the authoritative session snapshot.
func (m *callModel) refresh() {
	m.status = m.ctrl.Status()
	m.peers = make(map[protocol.ConnID]session.PeerInfo, len(m.status.Peers))
	for _, p := range m.status.Peers {
		m.peers[p.Remote] = p
	}
}

func (m *callModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "v":
			m.status.Video = m.ctrl.ToggleVideo()
		case "a":
			m.status.Audio = m.ctrl.ToggleAudio()
		case "l", "q", "ctrl+c":
			m.ctrl.LeaveRoom()
			m.quitting = true
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.quitting {
			return m, nil
		}
		m.refresh()
		return m, tick()

	case peerUpdated:
		m.peers[msg.Remote] = session.PeerInfo(msg)
		return m, m.listenForUpdates()

	case peerRemoved:
		delete(m.peers, protocol.ConnID(msg))
		return m, m.listenForUpdates()
	}
	return m, nil
}

func (m *callModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s %s\n", IconCall, TitleStyle.Render("Room"), BoldStyle.Render(m.status.RoomID))
	if m.status.Self != "" {
		fmt.Fprintf(&b, "%s\n", MutedStyle.Render("you are "+string(m.status.Self)))
	}
	fmt.Fprintf(&b, "\n%s %s  %s %s\n\n", IconVideo, Badge("video", m.status.Video), IconAudio, Badge("audio", m.status.Audio))

	if len(m.peers) == 0 {
		fmt.Fprintf(&b, "%s Waiting for others to join...\n", m.spinner.View())
	}
	for _, p := range m.sortedPeers() {
		b.WriteString(peerLine(p))
		b.WriteString("\n")
	}

	if m.status.LastError != "" {
		fmt.Fprintf(&b, "\n%s %s\n", IconWarning, WarningStyle.Render(m.status.LastError))
	}
	b.WriteString("\n" + MutedStyle.Render("v video • a audio • l leave"))
	return b.String()
}

func (m *callModel) sortedPeers() []session.PeerInfo {
	peers := make([]session.PeerInfo, 0, len(m.peers))
	for _, p := range m.peers {
		peers = append(peers, p)
	}
	slices.SortFunc(peers, func(a, b session.PeerInfo) int {
		return strings.Compare(string(a.Remote), string(b.Remote))
	})
	return peers
}

func peerLine(p session.PeerInfo) string {
	connectivity := string(p.Connectivity)
	if connectivity == "" {
		connectivity = string(session.ConnectivityNew)
	}

	line := fmt.Sprintf("  %s %-24s %-9s %-16s %s",
		IconPeer,
		string(p.Remote),
		p.Role,
		p.State,
		stateStyle(connectivity).Render(connectivity),
	)
	for _, t := range p.Tracks {
		line += MutedStyle.Render(fmt.Sprintf("  %s %d pkts", t.Kind(), t.Packets()))
	}
	return line
}
