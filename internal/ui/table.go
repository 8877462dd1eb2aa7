package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RoomRow is one line of the room listing.
type RoomRow struct {
	RoomID  string   `json:"room_id"`
	Members []string `json:"members"`
}

// RenderRoomsTable writes the relay's room listing to w.
func RenderRoomsTable(w io.Writer, rooms []RoomRow) {
	if len(rooms) == 0 {
		fmt.Fprintln(w, MutedStyle.Render("No active rooms"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	t.AppendHeader(table.Row{"#", "Room", "Members", "Connections"})

	total := 0
	for i, r := range rooms {
		total += len(r.Members)
		t.AppendRow(table.Row{i + 1, r.RoomID, len(r.Members), strings.Join(r.Members, "\n")})
	}
	t.AppendFooter(table.Row{"", "Total", total, ""})
	t.Render()
}

// RoomInfo is the box shown after creating a room.
type RoomInfo struct {
	RoomID   string
	RoomLink string
}

func NewRoomInfo(roomID, roomLink string) *RoomInfo {
	return &RoomInfo{RoomID: roomID, RoomLink: roomLink}
}

func (r *RoomInfo) View() string {
	content := fmt.Sprintf("%s Room Created!\n\n%s Room ID:    %s\n%s Room Link:  %s",
		IconSuccess,
		IconCopy, BoldStyle.Foreground(Primary).Render(r.RoomID),
		IconWeb, MutedStyle.Render(r.RoomLink),
	)
	return SuccessBoxStyle.Render(content)
}

// Badge renders an on/off indicator.
func Badge(label string, on bool) string {
	if on {
		return BadgeOnStyle.Render(label + " on")
	}
	return BadgeOffStyle.Render(label + " off")
}

// stateStyle colors a peer's connectivity.
func stateStyle(state string) lipgloss.Style {
	switch state {
	case "connected":
		return SuccessStyle
	case "failed", "closed":
		return ErrorStyle
	case "disconnected":
		return WarningStyle
	default:
		return MutedStyle
	}
}
