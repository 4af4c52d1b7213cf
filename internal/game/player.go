package game

import "github.com/lox/holdemarena/poker"

// PlayerState tracks a player's standing within the current hand.
type PlayerState string

const (
	// StateActive players can still act this hand.
	StateActive PlayerState = "active"
	// StateFolded players are out of the hand but their chips stay in the pots.
	StateFolded PlayerState = "folded"
	// StateAllIn players have committed their whole stack and act no further.
	StateAllIn PlayerState = "all_in"
	// StateSittingOut players are not dealt in. Permanent after elimination
	// in tournament play; unused when negative chips are allowed.
	StateSittingOut PlayerState = "sitting_out"
)

// Player is owned by its Game for the Game's lifetime. Chips persist across
// hands; hole cards and bet counters reset every hand.
type Player struct {
	ID        string
	Name      string
	Chips     int
	HoleCards []poker.Card
	State     PlayerState

	// StreetBet is the amount committed on the current street; HandBet the
	// cumulative commitment for the hand. HandBet feeds pot partitioning.
	StreetBet int
	HandBet   int

	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool

	acted bool // acted at least once this street (blind posts do not count)
}

// CanAct reports whether the player can still make betting decisions.
func (p *Player) CanAct() bool {
	return p.State == StateActive
}

// InHand reports whether the player still contests the pots.
func (p *Player) InHand() bool {
	return p.State == StateActive || p.State == StateAllIn
}

// resetForHand clears per-hand state. Chips and seating survive.
func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.StreetBet = 0
	p.HandBet = 0
	p.IsDealer = false
	p.IsSmallBlind = false
	p.IsBigBlind = false
	p.acted = false
	if p.State != StateSittingOut {
		p.State = StateActive
	}
}

// commit moves up to amount chips from the stack into the current street.
// In tournament play the amount clamps to the stack (an implicit all-in,
// never an error); with allowNegative the stack simply goes negative and the
// player stays active (continuous mode). Returns the amount committed.
func (p *Player) commit(amount int, allowNegative bool) int {
	if !allowNegative && amount > p.Chips {
		amount = p.Chips
	}
	p.Chips -= amount
	p.StreetBet += amount
	p.HandBet += amount
	if !allowNegative && p.Chips == 0 {
		p.State = StateAllIn
	}
	return amount
}
