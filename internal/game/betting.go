package game

// BettingRound holds the running state of one street's betting. The same
// sub-machine runs every street; blinds seed the preflop instance.
type BettingRound struct {
	// CurrentBet is the running total street bet that must be matched.
	CurrentBet int
	// MinRaise is the minimum raise increment: the greater of the big blind
	// and the last full raise size. A below-minimum all-in does not lower it.
	MinRaise int

	bigBlind int
}

// NewBettingRound creates the betting state for a fresh street.
func NewBettingRound(bigBlind int) *BettingRound {
	return &BettingRound{MinRaise: bigBlind, bigBlind: bigBlind}
}

// reset prepares the round for the next street. Street bets are cleared by
// the game; cumulative hand totals are preserved for pot computation.
func (br *BettingRound) reset() {
	br.CurrentBet = 0
	br.MinRaise = br.bigBlind
}

// LegalActions computes the exact action set for a player. Fold is only
// offered when facing a bet; with nothing to call, check replaces the
// no-cost option. A call that exceeds the stack is offered clamped (implicit
// all-in). Raise appears only when the player can meet the minimum-raise
// threshold with chips left behind; all-in is legal whenever chips remain.
func (br *BettingRound) LegalActions(p *Player) []LegalAction {
	if !p.CanAct() {
		return nil
	}

	toCall := br.CurrentBet - p.StreetBet
	actions := make([]LegalAction, 0, 4)

	if toCall > 0 {
		actions = append(actions, LegalAction{Action: Fold})
		actions = append(actions, LegalAction{Action: Call, Amount: min(toCall, p.Chips)})
	} else {
		actions = append(actions, LegalAction{Action: Check})
	}

	raiseMin := br.CurrentBet + br.MinRaise
	raiseMax := p.Chips + p.StreetBet
	if p.Chips > toCall && raiseMax >= raiseMin {
		actions = append(actions, LegalAction{Action: Raise, Min: raiseMin, Max: raiseMax})
	}

	if p.Chips > 0 {
		actions = append(actions, LegalAction{Action: AllIn, Amount: p.Chips})
	}

	return actions
}

// applyRaise registers a raise to the given total street bet, tracking
// whether it was a full raise for future minimum-raise computation.
func (br *BettingRound) applyRaise(total int) {
	if size := total - br.CurrentBet; size >= br.MinRaise {
		br.MinRaise = size
	}
	br.CurrentBet = total
}

// Complete reports round closure: every player still able to act has
// matched the running bet and has acted at least once since the last
// bet or raise. Blind posts do not count as acting, which is what gives
// the big blind its preflop option.
func (br *BettingRound) Complete(players []*Player) bool {
	for _, p := range players {
		if !p.CanAct() {
			continue
		}
		if !p.acted || p.StreetBet != br.CurrentBet {
			return false
		}
	}
	return true
}
