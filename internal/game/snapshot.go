package game

import "github.com/lox/holdemarena/poker"

// PlayerView is one seat as seen by a particular viewer. HoleCards is nil
// unless the seat belongs to the viewer, or the hand has reached showdown
// and the seat is still contesting the pots.
type PlayerView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Chips        int          `json:"chips"`
	State        PlayerState  `json:"state"`
	StreetBet    int          `json:"street_bet"`
	HandBet      int          `json:"hand_bet"`
	HoleCards    []poker.Card `json:"hole_cards,omitempty"`
	IsDealer     bool         `json:"is_dealer,omitempty"`
	IsSmallBlind bool         `json:"is_small_blind,omitempty"`
	IsBigBlind   bool         `json:"is_big_blind,omitempty"`
}

// Snapshot is a point-in-time view of a game, redacted for one viewer. An
// empty viewer ID produces the spectator view (no hole cards before
// showdown).
type Snapshot struct {
	GameID        string       `json:"game_id"`
	HandNumber    int          `json:"hand_number"`
	Phase         string       `json:"phase"`
	Ruleset       string       `json:"ruleset"`
	Board         []poker.Card `json:"board"`
	Pots          []Pot        `json:"pots"`
	PotTotal      int          `json:"pot_total"`
	CurrentBet    int          `json:"current_bet"`
	MinRaise      int          `json:"min_raise"`
	SmallBlind    int          `json:"small_blind"`
	BigBlind      int          `json:"big_blind"`
	CurrentPlayer string       `json:"current_player,omitempty"`
	Players       []PlayerView `json:"players"`
}

// Snapshot builds the redacted view for viewerID.
func (g *Game) Snapshot(viewerID string) Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := Snapshot{
		GameID:     g.id,
		HandNumber: g.handNumber,
		Phase:      g.phase.String(),
		Ruleset:    g.cfg.Ruleset.String(),
		Board:      append([]poker.Card{}, g.board...),
		Pots:       append([]Pot{}, g.pots.Pots()...),
		PotTotal:   g.pots.Total(),
		CurrentBet: g.betting.CurrentBet,
		MinRaise:   g.betting.MinRaise,
		SmallBlind: g.cfg.SmallBlind,
		BigBlind:   g.cfg.BigBlind,
	}
	if g.currentIdx != -1 && g.phase.IsStreet() {
		snap.CurrentPlayer = g.players[g.currentIdx].ID
	}

	showdown := g.phase == Showdown || g.phase == HandComplete
	for _, p := range g.players {
		view := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Chips:        p.Chips,
			State:        p.State,
			StreetBet:    p.StreetBet,
			HandBet:      p.HandBet,
			IsDealer:     p.IsDealer,
			IsSmallBlind: p.IsSmallBlind,
			IsBigBlind:   p.IsBigBlind,
		}
		if p.ID == viewerID || (showdown && p.InHand()) {
			view.HoleCards = append([]poker.Card{}, p.HoleCards...)
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
