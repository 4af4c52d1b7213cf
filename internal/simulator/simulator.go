// Package simulator plays unattended tournaments with scripted players.
// It exists to exercise the engine end to end: many seeded tournaments in
// parallel give quick statistical evidence that chips are conserved and
// every hand terminates.
package simulator

import (
	"context"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/tournament"
	"github.com/lox/holdemarena/poker"
)

// Config holds configuration for one simulated tournament
type Config struct {
	Players       int
	StartingChips int
	Structure     tournament.BlindStructure
	Ruleset       poker.Ruleset
	Seed          int64
	MaxHands      int
	Logger        *log.Logger
}

// Simulator runs one tournament to completion
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a simulator with the given configuration
func New(config Config) *Simulator {
	if config.Players == 0 {
		config.Players = 4
	}
	if config.StartingChips == 0 {
		config.StartingChips = 1000
	}
	if config.MaxHands == 0 {
		config.MaxHands = 10_000
	}
	if config.Structure == nil {
		config.Structure = tournament.BlindStructure{
			{SmallBlind: 10, BigBlind: 20, HandsDuration: 24},
			{SmallBlind: 25, BigBlind: 50, HandsDuration: 24},
			{SmallBlind: 50, BigBlind: 100, HandsDuration: 24},
			{SmallBlind: 100, BigBlind: 200},
		}
	}
	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Simulator{config: config, logger: logger}
}

// Run plays the tournament and returns the standings.
func (s *Simulator) Run(ctx context.Context) (tournament.Result, error) {
	gameID := fmt.Sprintf("sim-%d", s.config.Seed)
	g := game.NewGame(gameID, game.Config{
		SmallBlind: s.config.Structure[0].SmallBlind,
		BigBlind:   s.config.Structure[0].BigBlind,
		MaxPlayers: s.config.Players,
		Ruleset:    s.config.Ruleset,
		Seed:       s.config.Seed,
	}, s.logger)

	for i := 0; i < s.config.Players; i++ {
		id := fmt.Sprintf("sim-player-%d", i+1)
		if err := g.AddPlayer(id, id, s.config.StartingChips); err != nil {
			return tournament.Result{}, err
		}
	}

	controller, err := tournament.New(g, s.config.Structure, s.logger)
	if err != nil {
		return tournament.Result{}, err
	}

	policy := newPolicy(s.config.Seed)
	initial := s.config.Players * s.config.StartingChips

	for hand := 0; hand < s.config.MaxHands && !controller.Done(); hand++ {
		if err := ctx.Err(); err != nil {
			return tournament.Result{}, err
		}
		if err := controller.BeginHand(); err != nil {
			return tournament.Result{}, err
		}
		if err := s.playHand(g, policy); err != nil {
			return tournament.Result{}, err
		}
		if total := chipTotal(g); total != initial {
			return tournament.Result{}, fmt.Errorf("hand %d broke chip conservation: %d != %d",
				g.HandNumber(), total, initial)
		}
		controller.FinishHand()
	}

	if !controller.Done() {
		return tournament.Result{}, fmt.Errorf("tournament did not finish within %d hands", s.config.MaxHands)
	}
	return controller.Result(), nil
}

// playHand drives a single hand with the policy until it resolves.
func (s *Simulator) playHand(g *game.Game, policy *policy) error {
	for turn := 0; turn < 1000; turn++ {
		mover := g.CurrentPlayer()
		if mover == "" {
			return nil
		}
		action, amount := policy.choose(g.LegalActions(mover))
		if err := g.Apply(mover, action, amount); err != nil {
			return fmt.Errorf("policy chose an illegal action: %w", err)
		}
	}
	return fmt.Errorf("hand %d did not resolve", g.HandNumber())
}

func chipTotal(g *game.Game) int {
	total := 0
	for _, pv := range g.Snapshot("").Players {
		total += pv.Chips + pv.HandBet
	}
	return total
}

// policy is a weighted random player: mostly passive, occasionally
// aggressive, folding only when facing a bet. It picks strictly from the
// legal-action set, so every choice must be accepted by the engine.
type policy struct {
	rng *rand.Rand
}

func newPolicy(seed int64) *policy {
	u := uint64(seed)
	return &policy{rng: rand.New(rand.NewPCG(u, u^0x9e3779b97f4a7c15))}
}

func (p *policy) choose(legal []game.LegalAction) (game.Action, int) {
	var check, call, raise *game.LegalAction
	for i := range legal {
		switch legal[i].Action {
		case game.Check:
			check = &legal[i]
		case game.Call:
			call = &legal[i]
		case game.Raise:
			raise = &legal[i]
		}
	}

	roll := p.rng.IntN(100)
	switch {
	case roll < 10 && raise != nil:
		// Somewhere in the legal range, biased toward the minimum.
		span := raise.Max - raise.Min
		amount := raise.Min
		if span > 0 {
			amount += p.rng.IntN(span/2 + 1)
		}
		return game.Raise, amount
	case roll < 12:
		return game.AllIn, 0
	case check != nil:
		return game.Check, 0
	case roll < 40:
		return game.Fold, 0
	case call != nil:
		return game.Call, 0
	default:
		return game.Fold, 0
	}
}
