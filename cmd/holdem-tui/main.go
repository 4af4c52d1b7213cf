package main

import (
	"fmt"
	"net/url"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/holdemarena/internal/tui"
)

var CLI struct {
	Addr string `short:"a" default:"localhost:8080" help:"Host address"`
	Game string `arg:"" help:"Game ID to watch"`
}

func main() {
	ctx := kong.Parse(&CLI)

	wsURL := url.URL{Scheme: "ws", Host: CLI.Addr, Path: "/games/" + CLI.Game + "/watch"}

	p := tea.NewProgram(tui.NewModel(), tea.WithAltScreen())
	if err := tui.Watch(p, wsURL.String()); err != nil {
		fmt.Printf("Error connecting to %s: %v\n", wsURL.String(), err)
		ctx.Exit(1)
	}
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		ctx.Exit(1)
	}
}
