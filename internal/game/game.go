package game

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/poker"
)

// Config fixes a game's parameters at creation time.
type Config struct {
	SmallBlind int
	BigBlind   int
	MaxPlayers int
	Ruleset    poker.Ruleset

	// AllowNegativeChips keeps players active below zero chips (continuous
	// mode). Elimination becomes a no-op.
	AllowNegativeChips bool
	// OddChip selects the indivisible-remainder rule for split pots.
	OddChip OddChipPolicy
	// Seed makes deck shuffles reproducible when non-zero; each hand derives
	// its own sub-seed. Zero shuffles from a secure random source.
	Seed int64
}

// Game is one table: the full player list, the phase machine, the pots and
// the audit log. Games are independent of each other; all exported methods
// serialize on the game's own mutex (single-writer discipline).
type Game struct {
	mu sync.Mutex

	id      string
	cfg     Config
	logger  *log.Logger
	players []*Player

	phase      Phase
	handNumber int
	dealerIdx  int
	currentIdx int
	board      []poker.Card
	deck       *poker.Deck
	betting    *BettingRound
	pots       *PotManager

	seq     int
	records []ActionRecord
	history map[int][]ActionRecord
	result  *HandResult
	aborted error
}

// HandResult is the terminal outcome of one hand.
type HandResult struct {
	HandNumber         int
	Awards             []PotAward
	WonWithoutShowdown bool
	Board              []poker.Card
}

// NewGame creates an empty table.
func NewGame(id string, cfg Config, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	return &Game{
		id:         id,
		cfg:        cfg,
		logger:     logger.With("game", id),
		phase:      Waiting,
		dealerIdx:  -1,
		currentIdx: -1,
		betting:    NewBettingRound(cfg.BigBlind),
		pots:       NewPotManager(),
		history:    make(map[int][]ActionRecord),
	}
}

// ID returns the game's identifier.
func (g *Game) ID() string { return g.id }

// Config returns the game's immutable configuration.
func (g *Game) Config() Config { return g.cfg }

// AddPlayer seats a player. The roster only mutates between hands.
func (g *Game) AddPlayer(id, name string, chips int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Waiting && g.phase != HandComplete {
		return fmt.Errorf("cannot join mid-hand (phase %s)", g.phase)
	}
	if len(g.players) >= g.cfg.MaxPlayers {
		return fmt.Errorf("game is full (%d seats)", g.cfg.MaxPlayers)
	}
	for _, p := range g.players {
		if p.ID == id {
			return fmt.Errorf("player %s already seated", id)
		}
	}

	g.players = append(g.players, &Player{ID: id, Name: name, Chips: chips, State: StateActive})
	g.logger.Info("player seated", "player", id, "name", name, "chips", chips)
	return nil
}

// RemovePlayer unseats a player between hands.
func (g *Game) RemovePlayer(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Waiting && g.phase != HandComplete {
		return fmt.Errorf("cannot leave mid-hand (phase %s)", g.phase)
	}
	for i, p := range g.players {
		if p.ID == id {
			g.players = append(g.players[:i], g.players[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("player %s not seated", id)
}

// SetBlinds changes the blind amounts, effective from the next hand.
func (g *Game) SetBlinds(smallBlind, bigBlind int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg.SmallBlind = smallBlind
	g.cfg.BigBlind = bigBlind
	g.logger.Info("blinds updated", "small", smallBlind, "big", bigBlind)
}

// MarkEliminated sits out every player at or below zero chips and returns
// the newly eliminated IDs. A no-op when negative chips are allowed.
func (g *Game) MarkEliminated() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cfg.AllowNegativeChips {
		return nil
	}
	var out []string
	for _, p := range g.players {
		if p.State != StateSittingOut && p.Chips <= 0 {
			p.State = StateSittingOut
			out = append(out, p.ID)
			g.logger.Info("player eliminated", "player", p.ID, "hand", g.handNumber)
		}
	}
	return out
}

// RemainingPlayers returns the IDs of players not sitting out.
func (g *Game) RemainingPlayers() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var out []string
	for _, p := range g.players {
		if p.State != StateSittingOut {
			out = append(out, p.ID)
		}
	}
	return out
}

// StartHand begins the next hand: button advances one live seat, blinds are
// posted, hole cards dealt, and preflop betting opens.
func (g *Game) StartHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.phase != Waiting && g.phase != HandComplete {
		return fmt.Errorf("hand already in progress (phase %s)", g.phase)
	}

	live := 0
	for _, p := range g.players {
		if p.State != StateSittingOut {
			live++
		}
	}
	if live < 2 {
		return fmt.Errorf("need at least 2 players, have %d", live)
	}

	g.handNumber++
	g.seq = 0
	g.records = nil
	g.result = nil
	g.aborted = nil
	g.board = nil
	for _, p := range g.players {
		p.resetForHand()
	}

	seed := g.cfg.Seed
	if seed != 0 {
		seed += int64(g.handNumber)
	}
	g.deck = poker.NewDeck(g.cfg.Ruleset, seed)

	g.dealerIdx = g.nextLive(g.dealerIdx + 1)
	g.players[g.dealerIdx].IsDealer = true

	// Heads-up the button posts the small blind; otherwise the two seats
	// after it post.
	sbIdx := g.nextLive(g.dealerIdx + 1)
	if live == 2 {
		sbIdx = g.dealerIdx
	}
	bbIdx := g.nextLive(sbIdx + 1)

	g.betting = NewBettingRound(g.cfg.BigBlind)
	g.phase = Preflop

	sb := g.players[sbIdx]
	sb.IsSmallBlind = true
	g.record(sb.ID, RecordSmallBlind, sb.commit(g.cfg.SmallBlind, g.cfg.AllowNegativeChips))

	bb := g.players[bbIdx]
	bb.IsBigBlind = true
	g.record(bb.ID, RecordBigBlind, bb.commit(g.cfg.BigBlind, g.cfg.AllowNegativeChips))

	// The running bet is the full big blind even when the post was short.
	g.betting.CurrentBet = g.cfg.BigBlind

	for _, p := range g.players {
		if p.State == StateSittingOut {
			continue
		}
		cards, err := g.deck.DrawN(2)
		if err != nil {
			return g.abortHand(err)
		}
		p.HoleCards = cards
	}

	g.pots.Recalculate(g.players)
	g.currentIdx = g.nextActive(bbIdx + 1)

	g.logger.Debug("hand started",
		"hand", g.handNumber,
		"dealer", g.players[g.dealerIdx].ID,
		"sb", sb.ID, "bb", bb.ID)

	// Blinds can put everyone all-in; run the board out immediately.
	if g.currentIdx == -1 {
		return g.advancePhase()
	}
	return nil
}

// LegalActions returns the exact legal-action set for the given player, or
// nil when it is not their turn or no hand is in progress.
func (g *Game) LegalActions(playerID string) []LegalAction {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.phase.IsStreet() || g.currentIdx == -1 {
		return nil
	}
	p := g.players[g.currentIdx]
	if p.ID != playerID {
		return nil
	}
	return g.betting.LegalActions(p)
}

// Apply validates and applies one action for the player to move. Every call
// either mutates state and appends an ActionRecord, or returns a typed
// rejection leaving the state untouched.
func (g *Game) Apply(playerID string, action Action, amount int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.phase.IsStreet() {
		return illegal(playerID, action, "no betting in phase %s", g.phase)
	}
	if g.currentIdx == -1 || g.players[g.currentIdx].ID != playerID {
		return illegal(playerID, action, "not your turn")
	}

	p := g.players[g.currentIdx]
	opt, ok := findAction(g.betting.LegalActions(p), action)
	if !ok {
		return illegal(playerID, action, "not in legal action set")
	}

	switch action {
	case Fold:
		p.State = StateFolded
		p.acted = true
		g.record(p.ID, action.String(), 0)

	case Check:
		p.acted = true
		g.record(p.ID, action.String(), 0)

	case Call:
		paid := p.commit(g.betting.CurrentBet-p.StreetBet, g.cfg.AllowNegativeChips)
		p.acted = true
		g.record(p.ID, action.String(), paid)

	case Raise:
		if amount < opt.Min || amount > opt.Max {
			return illegal(playerID, action, "raise to %d outside [%d, %d]", amount, opt.Min, opt.Max)
		}
		p.commit(amount-p.StreetBet, g.cfg.AllowNegativeChips)
		g.betting.applyRaise(amount)
		p.acted = true
		g.record(p.ID, action.String(), amount)

	case AllIn:
		paid := p.commit(p.Chips, false)
		p.State = StateAllIn
		p.acted = true
		if p.StreetBet > g.betting.CurrentBet {
			g.betting.applyRaise(p.StreetBet)
		}
		g.record(p.ID, action.String(), paid)
	}

	g.pots.Recalculate(g.players)
	return g.resolveAfterAction()
}

// resolveAfterAction advances the turn pointer and closes the street or the
// hand when the action permits.
func (g *Game) resolveAfterAction() error {
	if g.contenders() == 1 {
		return g.awardFoldWin()
	}

	g.currentIdx = g.nextActive(g.currentIdx + 1)
	if g.currentIdx == -1 || g.betting.Complete(g.players) {
		return g.advancePhase()
	}
	return nil
}

// advancePhase closes the current street and deals the next one. When at
// most one player can still act, the remaining streets run out without
// further betting, straight through to showdown.
func (g *Game) advancePhase() error {
	for _, p := range g.players {
		p.StreetBet = 0
		p.acted = false
	}
	g.betting.reset()
	g.pots.Recalculate(g.players)

	for {
		switch g.phase {
		case Preflop:
			g.phase = Flop
			cards, err := g.deck.DrawN(3)
			if err != nil {
				return g.abortHand(err)
			}
			g.board = append(g.board, cards...)
		case Flop:
			g.phase = Turn
			card, err := g.deck.Draw()
			if err != nil {
				return g.abortHand(err)
			}
			g.board = append(g.board, card)
		case Turn:
			g.phase = River
			card, err := g.deck.Draw()
			if err != nil {
				return g.abortHand(err)
			}
			g.board = append(g.board, card)
		case River:
			return g.resolveShowdown()
		default:
			return nil
		}

		g.logger.Debug("street dealt", "phase", g.phase, "board", g.board)

		// Betting resumes only while two or more players can still act.
		if g.countActive() >= 2 {
			g.currentIdx = g.nextActive(g.dealerIdx + 1)
			return nil
		}
		g.currentIdx = -1
	}
}

// awardFoldWin gives every pot to the last player in the hand, without
// evaluation.
func (g *Game) awardFoldWin() error {
	var winner *Player
	for _, p := range g.players {
		if p.InHand() {
			winner = p
			break
		}
	}

	result := &HandResult{
		HandNumber:         g.handNumber,
		WonWithoutShowdown: true,
		Board:              g.board,
	}
	for i, pot := range g.pots.Pots() {
		winner.Chips += pot.Amount
		g.record(winner.ID, RecordWin, pot.Amount)
		result.Awards = append(result.Awards, PotAward{
			PotIndex: i,
			Winners:  []string{winner.ID},
			Shares:   map[string]int{winner.ID: pot.Amount},
		})
	}

	g.finishHand(result)
	return nil
}

// resolveShowdown evaluates every contender once and awards each pot
// independently to the best eligible hand(s), splitting ties with the
// odd-chip rule.
func (g *Game) resolveShowdown() error {
	g.phase = Showdown
	g.pots.Recalculate(g.players)

	values := make(map[string]poker.HandValue)
	for _, p := range g.players {
		if !p.InHand() {
			continue
		}
		hv, err := poker.Evaluate(g.cfg.Ruleset, append(append([]poker.Card{}, p.HoleCards...), g.board...))
		if err != nil {
			return g.abortHand(err)
		}
		values[p.ID] = hv
		g.logger.Debug("showdown hand", "player", p.ID, "hand", hv.Description())
	}

	result := &HandResult{HandNumber: g.handNumber, Board: g.board}
	for i, pot := range g.pots.Pots() {
		var winners []string
		var best poker.HandValue
		for _, id := range g.potOrder(pot.Eligible) {
			hv, ok := values[id]
			if !ok {
				continue
			}
			switch {
			case len(winners) == 0 || hv.Compare(best) > 0:
				winners = []string{id}
				best = hv
			case hv.Compare(best) == 0:
				winners = append(winners, id)
			}
		}
		if len(winners) == 0 {
			continue
		}

		shares := split(pot.Amount, winners)
		for _, id := range winners {
			g.playerByID(id).Chips += shares[id]
			g.record(id, RecordWin, shares[id])
		}
		result.Awards = append(result.Awards, PotAward{PotIndex: i, Winners: winners, Shares: shares})
	}

	g.finishHand(result)
	return nil
}

// potOrder returns the eligible IDs reordered from the earliest position
// after the dealer button; the first seat in this order takes the odd
// remainder on a split.
func (g *Game) potOrder(eligible []string) []string {
	member := make(map[string]bool, len(eligible))
	for _, id := range eligible {
		member[id] = true
	}
	out := make([]string, 0, len(eligible))
	n := len(g.players)
	for i := 1; i <= n; i++ {
		p := g.players[(g.dealerIdx+i)%n]
		if member[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

// abortHand handles a fatal invariant violation (an exhausted deck mid-hand):
// contributions are returned to their owners so no chips are created or
// destroyed, and the hand ends with no result.
func (g *Game) abortHand(err error) error {
	g.logger.Error("hand aborted", "hand", g.handNumber, "error", err)
	for _, p := range g.players {
		p.Chips += p.HandBet
		p.HandBet = 0
		p.StreetBet = 0
	}
	g.pots = NewPotManager()
	g.aborted = err
	g.finishHand(&HandResult{HandNumber: g.handNumber, Board: g.board})
	return fmt.Errorf("hand %d aborted: %w", g.handNumber, err)
}

func (g *Game) finishHand(result *HandResult) {
	g.phase = HandComplete
	g.currentIdx = -1
	g.result = result
	g.deck = nil
	g.pots = NewPotManager()
	for _, p := range g.players {
		p.HandBet = 0
		p.StreetBet = 0
	}
	g.history[g.handNumber] = g.records
	g.logger.Info("hand complete", "hand", g.handNumber, "pots", len(result.Awards))
}

// Result returns the outcome of the most recently completed hand.
func (g *Game) Result() (*HandResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.result == nil {
		return nil, false
	}
	return g.result, true
}

// Phase returns the current phase.
func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// HandNumber returns the number of the current (or last completed) hand.
func (g *Game) HandNumber() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handNumber
}

// CurrentPlayer returns the ID of the player to move, or "" when nobody is.
func (g *Game) CurrentPlayer() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentIdx == -1 || !g.phase.IsStreet() {
		return ""
	}
	return g.players[g.currentIdx].ID
}

// History returns the ordered ActionRecord log for the given hand number
// (the current hand included).
func (g *Game) History(hand int) ([]ActionRecord, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if hand == g.handNumber && g.phase != HandComplete {
		out := make([]ActionRecord, len(g.records))
		copy(out, g.records)
		return out, true
	}
	records, ok := g.history[hand]
	if !ok {
		return nil, false
	}
	out := make([]ActionRecord, len(records))
	copy(out, records)
	return out, true
}

func (g *Game) record(playerID, action string, amount int) {
	g.seq++
	g.records = append(g.records, ActionRecord{
		Seq:      g.seq,
		PlayerID: playerID,
		Action:   action,
		Amount:   amount,
		Phase:    g.phase.String(),
	})
}

// nextLive finds the next seat not sitting out, scanning circularly.
func (g *Game) nextLive(from int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := ((from + i) % n + n) % n
		if g.players[idx].State != StateSittingOut {
			return idx
		}
	}
	return -1
}

// nextActive finds the next seat that can act, or -1 when none can.
func (g *Game) nextActive(from int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := ((from + i) % n + n) % n
		if g.players[idx].CanAct() {
			return idx
		}
	}
	return -1
}

func (g *Game) countActive() int {
	count := 0
	for _, p := range g.players {
		if p.CanAct() {
			count++
		}
	}
	return count
}

// contenders counts players still in the hand (active or all-in).
func (g *Game) contenders() int {
	count := 0
	for _, p := range g.players {
		if p.InHand() {
			count++
		}
	}
	return count
}

func (g *Game) playerByID(id string) *Player {
	for _, p := range g.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func findAction(actions []LegalAction, action Action) (LegalAction, bool) {
	for _, a := range actions {
		if a.Action == action {
			return a, true
		}
	}
	return LegalAction{}, false
}
