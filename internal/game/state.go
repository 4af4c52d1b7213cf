package game

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/poker"
)

// gameState is the full serialized form of a Game. Everything needed to
// resume mid-hand is captured, the undealt remainder of the deck included;
// restoring and replaying the same inputs reproduces the same hand.
type gameState struct {
	ID         string                 `json:"id"`
	Config     configState            `json:"config"`
	Phase      Phase                  `json:"phase"`
	HandNumber int                    `json:"hand_number"`
	DealerIdx  int                    `json:"dealer_idx"`
	CurrentIdx int                    `json:"current_idx"`
	Board      []poker.Card           `json:"board"`
	Undealt    []poker.Card           `json:"undealt,omitempty"`
	CurrentBet int                    `json:"current_bet"`
	MinRaise   int                    `json:"min_raise"`
	Players    []playerState          `json:"players"`
	Seq        int                    `json:"seq"`
	Records    []ActionRecord         `json:"records,omitempty"`
	History    map[int][]ActionRecord `json:"history,omitempty"`
}

type configState struct {
	SmallBlind         int    `json:"small_blind"`
	BigBlind           int    `json:"big_blind"`
	MaxPlayers         int    `json:"max_players"`
	Ruleset            string `json:"ruleset"`
	AllowNegativeChips bool   `json:"allow_negative_chips,omitempty"`
	Seed               int64  `json:"seed,omitempty"`
}

type playerState struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Chips        int          `json:"chips"`
	State        PlayerState  `json:"state"`
	HoleCards    []poker.Card `json:"hole_cards,omitempty"`
	StreetBet    int          `json:"street_bet"`
	HandBet      int          `json:"hand_bet"`
	IsDealer     bool         `json:"is_dealer,omitempty"`
	IsSmallBlind bool         `json:"is_small_blind,omitempty"`
	IsBigBlind   bool         `json:"is_big_blind,omitempty"`
	Acted        bool         `json:"acted,omitempty"`
}

// MarshalState serializes the game for persistence. Safe to call at any
// phase boundary or mid-hand.
func (g *Game) MarshalState() ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := gameState{
		ID:         g.id,
		Phase:      g.phase,
		HandNumber: g.handNumber,
		DealerIdx:  g.dealerIdx,
		CurrentIdx: g.currentIdx,
		Board:      g.board,
		CurrentBet: g.betting.CurrentBet,
		MinRaise:   g.betting.MinRaise,
		Seq:        g.seq,
		Records:    g.records,
		History:    g.history,
		Config: configState{
			SmallBlind:         g.cfg.SmallBlind,
			BigBlind:           g.cfg.BigBlind,
			MaxPlayers:         g.cfg.MaxPlayers,
			Ruleset:            g.cfg.Ruleset.String(),
			AllowNegativeChips: g.cfg.AllowNegativeChips,
			Seed:               g.cfg.Seed,
		},
	}
	if g.deck != nil {
		state.Undealt = g.deck.Undealt()
	}
	for _, p := range g.players {
		state.Players = append(state.Players, playerState{
			ID:           p.ID,
			Name:         p.Name,
			Chips:        p.Chips,
			State:        p.State,
			HoleCards:    p.HoleCards,
			StreetBet:    p.StreetBet,
			HandBet:      p.HandBet,
			IsDealer:     p.IsDealer,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
			Acted:        p.acted,
		})
	}
	return json.Marshal(state)
}

// RestoreGame reconstructs a game from MarshalState output.
func RestoreGame(data []byte, logger *log.Logger) (*Game, error) {
	var state gameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding game state: %w", err)
	}
	ruleset, ok := poker.ParseRuleset(state.Config.Ruleset)
	if !ok {
		return nil, fmt.Errorf("decoding game state: unknown ruleset %q", state.Config.Ruleset)
	}

	g := NewGame(state.ID, Config{
		SmallBlind:         state.Config.SmallBlind,
		BigBlind:           state.Config.BigBlind,
		MaxPlayers:         state.Config.MaxPlayers,
		Ruleset:            ruleset,
		AllowNegativeChips: state.Config.AllowNegativeChips,
		Seed:               state.Config.Seed,
	}, logger)

	g.phase = state.Phase
	g.handNumber = state.HandNumber
	g.dealerIdx = state.DealerIdx
	g.currentIdx = state.CurrentIdx
	g.board = state.Board
	g.betting.CurrentBet = state.CurrentBet
	g.betting.MinRaise = state.MinRaise
	g.seq = state.Seq
	g.records = state.Records
	if state.History != nil {
		g.history = state.History
	}
	if state.Undealt != nil {
		g.deck = poker.RestoreDeck(state.Undealt)
	}

	for _, ps := range state.Players {
		g.players = append(g.players, &Player{
			ID:           ps.ID,
			Name:         ps.Name,
			Chips:        ps.Chips,
			State:        ps.State,
			HoleCards:    ps.HoleCards,
			StreetBet:    ps.StreetBet,
			HandBet:      ps.HandBet,
			IsDealer:     ps.IsDealer,
			IsSmallBlind: ps.IsSmallBlind,
			IsBigBlind:   ps.IsBigBlind,
			acted:        ps.Acted,
		})
	}
	g.pots.Recalculate(g.players)
	return g, nil
}
