// Package tui renders a live spectator view of one table. It subscribes to
// the host's watch stream and repaints on every snapshot; it never submits
// actions, so it sees exactly what the redacted spectator snapshot allows.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lox/holdemarena/internal/game"
)

// SnapshotMsg delivers a new table snapshot from the watch stream.
type SnapshotMsg game.Snapshot

// DisconnectMsg reports that the watch stream closed.
type DisconnectMsg struct{ Err error }

// Model is the Bubble Tea model for the spectator view.
type Model struct {
	spinner   spinner.Model
	snap      game.Snapshot
	connected bool
	err       error
	width     int
	quitting  bool
}

// NewModel creates the spectator model.
func NewModel() Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return Model{spinner: sp, width: 80}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case SnapshotMsg:
		m.snap = game.Snapshot(msg)
		m.connected = true
		return m, nil

	case DisconnectMsg:
		m.connected = false
		m.err = msg.Err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("disconnected: %v", m.err)) + "\n" +
			InfoStyle.Render("press q to quit") + "\n"
	}
	if !m.connected {
		return fmt.Sprintf("\n %s connecting to table...\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Hand #%d · %s · %s",
		m.snap.HandNumber, m.snap.Ruleset, m.snap.Phase)))
	b.WriteString("\n\n")

	b.WriteString(BoardStyle.Render("Board: "))
	if len(m.snap.Board) == 0 {
		b.WriteString(InfoStyle.Render("(none)"))
	} else {
		cards := make([]string, len(m.snap.Board))
		for i, c := range m.snap.Board {
			cards[i] = renderCard(c)
		}
		b.WriteString(strings.Join(cards, " "))
	}
	b.WriteString("\n")

	b.WriteString(PotStyle.Render(fmt.Sprintf("Pot: %d", m.snap.PotTotal)))
	if len(m.snap.Pots) > 1 {
		parts := make([]string, len(m.snap.Pots))
		for i, pot := range m.snap.Pots {
			parts[i] = fmt.Sprintf("%d", pot.Amount)
		}
		b.WriteString(InfoStyle.Render(fmt.Sprintf(" (%s)", strings.Join(parts, " + "))))
	}
	b.WriteString(fmt.Sprintf("   Blinds: %d/%d\n\n", m.snap.SmallBlind, m.snap.BigBlind))

	for _, pv := range m.snap.Players {
		b.WriteString(m.renderPlayer(pv))
		b.WriteString("\n")
	}

	if m.snap.CurrentPlayer != "" {
		b.WriteString("\n")
		b.WriteString(TurnStyle.Render(fmt.Sprintf("waiting on %s", m.snap.CurrentPlayer)))
		b.WriteString(fmt.Sprintf(" %s", m.spinner.View()))
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderPlayer(pv game.PlayerView) string {
	marker := "  "
	if pv.ID == m.snap.CurrentPlayer {
		marker = TurnStyle.Render("▶ ")
	}

	var tags []string
	if pv.IsDealer {
		tags = append(tags, "BTN")
	}
	if pv.IsSmallBlind {
		tags = append(tags, "SB")
	}
	if pv.IsBigBlind {
		tags = append(tags, "BB")
	}
	tag := ""
	if len(tags) > 0 {
		tag = " " + InfoStyle.Render("["+strings.Join(tags, ",")+"]")
	}

	cards := ""
	if len(pv.HoleCards) == 2 {
		cards = fmt.Sprintf("  %s %s", renderCard(pv.HoleCards[0]), renderCard(pv.HoleCards[1]))
	}

	line := fmt.Sprintf("%s%-12s %6d chips%s%s", marker, pv.Name, pv.Chips, tag, cards)
	if pv.StreetBet > 0 {
		line += InfoStyle.Render(fmt.Sprintf("  bet %d", pv.StreetBet))
	}

	switch pv.State {
	case game.StateFolded:
		return FoldedStyle.Render(line)
	case game.StateSittingOut:
		return InfoStyle.Render(line + "  (out)")
	case game.StateAllIn:
		return line + " " + TurnStyle.Render("ALL IN")
	default:
		return line
	}
}
