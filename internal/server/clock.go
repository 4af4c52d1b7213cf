package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdemarena/internal/game"
)

// ActionClock bounds how long the player to move may think. The engine
// itself never advances on time; when the deadline passes the clock injects
// a forced action through the ordinary apply path (check when free, fold
// when facing a bet). A quartz clock keeps the deadline mockable in tests.
type ActionClock struct {
	clock   quartz.Clock
	timeout time.Duration
	logger  *log.Logger

	mu     sync.Mutex
	timers map[string]*quartz.Timer
}

// NewActionClock creates a clock enforcing the given per-action timeout.
// A zero timeout disables enforcement.
func NewActionClock(clock quartz.Clock, timeout time.Duration, logger *log.Logger) *ActionClock {
	if logger == nil {
		logger = log.Default()
	}
	return &ActionClock{
		clock:   clock,
		timeout: timeout,
		logger:  logger,
		timers:  make(map[string]*quartz.Timer),
	}
}

// Arm starts the countdown for the player currently to move in g. Any
// previous countdown for the same game is cancelled. onForced runs after a
// forced action has been applied so the host can continue the turn cycle.
func (ac *ActionClock) Arm(g *game.Game, onForced func()) {
	if ac.timeout <= 0 {
		return
	}
	playerID := g.CurrentPlayer()
	if playerID == "" {
		ac.Disarm(g.ID())
		return
	}

	ac.mu.Lock()
	defer ac.mu.Unlock()

	if timer, ok := ac.timers[g.ID()]; ok {
		timer.Stop()
	}
	ac.timers[g.ID()] = ac.clock.AfterFunc(ac.timeout, func() {
		ac.force(g, playerID)
		if onForced != nil {
			onForced()
		}
	})
}

// Disarm cancels the countdown for a game.
func (ac *ActionClock) Disarm(gameID string) {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if timer, ok := ac.timers[gameID]; ok {
		timer.Stop()
		delete(ac.timers, gameID)
	}
}

// Stop cancels every countdown.
func (ac *ActionClock) Stop() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	for id, timer := range ac.timers {
		timer.Stop()
		delete(ac.timers, id)
	}
}

// force applies the timeout action for playerID. The turn may have moved on
// between firing and locking the game; the stale case validates as an
// illegal action and is dropped here.
func (ac *ActionClock) force(g *game.Game, playerID string) {
	if g.CurrentPlayer() != playerID {
		return
	}

	action := game.Fold
	for _, legal := range g.LegalActions(playerID) {
		if legal.Action == game.Check {
			action = game.Check
			break
		}
	}

	ac.logger.Warn("action timeout, forcing action",
		"game", g.ID(), "player", playerID, "action", action)
	if err := g.Apply(playerID, action, 0); err != nil {
		ac.logger.Debug("forced action rejected", "game", g.ID(), "error", err)
	}
}
