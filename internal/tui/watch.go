package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemarena/internal/game"
)

// Watch connects to a host's watch stream and forwards snapshots into the
// running program until the connection drops or the program exits.
func Watch(p *tea.Program, url string) error {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return err
	}

	go func() {
		defer conn.Close()
		for {
			var snap game.Snapshot
			if err := conn.ReadJSON(&snap); err != nil {
				p.Send(DisconnectMsg{Err: err})
				return
			}
			p.Send(SnapshotMsg(snap))
		}
	}()
	return nil
}
