// Package tournament layers blind escalation and elimination on top of a
// single game. The controller owns the multi-hand loop bookkeeping; the
// host still drives each hand action by action.
package tournament

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lox/holdemarena/internal/game"
)

// BlindLevel is one rung of the escalation schedule. HandsDuration is how
// many hands the level lasts; the final level runs until the tournament ends.
type BlindLevel struct {
	SmallBlind    int
	BigBlind      int
	HandsDuration int
}

// BlindStructure is the ordered escalation schedule.
type BlindStructure []BlindLevel

// LevelForHand returns the level in force for the given 1-based hand number
// and its index. Levels advance on cumulative hand count: with a first level
// lasting 24 hands, hand 24 plays the first level and hand 25 the second.
func (s BlindStructure) LevelForHand(hand int) (BlindLevel, int) {
	threshold := 0
	for i, level := range s {
		threshold += level.HandsDuration
		if hand <= threshold || i == len(s)-1 {
			return level, i
		}
	}
	return BlindLevel{}, -1
}

// Validate rejects structures the controller cannot run.
func (s BlindStructure) Validate() error {
	if len(s) == 0 {
		return errors.New("blind structure has no levels")
	}
	for i, level := range s {
		if level.SmallBlind <= 0 || level.BigBlind < level.SmallBlind {
			return fmt.Errorf("level %d has invalid blinds %d/%d", i, level.SmallBlind, level.BigBlind)
		}
		if level.HandsDuration <= 0 && i < len(s)-1 {
			return fmt.Errorf("level %d has no duration", i)
		}
	}
	return nil
}

// Finish records where a player placed. Place 1 is the winner; eliminated
// players take places from the bottom up in elimination order.
type Finish struct {
	PlayerID   string `json:"player_id"`
	Place      int    `json:"place"`
	HandNumber int    `json:"hand_number"`
}

// Result is the terminal outcome. WinnerID is empty in the degenerate case
// where the last players bust simultaneously and nobody remains.
type Result struct {
	WinnerID   string   `json:"winner_id,omitempty"`
	HandsDealt int      `json:"hands_dealt"`
	Finishes   []Finish `json:"finishes"`
}

// Controller runs one tournament over one game: it applies the blind level
// due before each hand and removes busted players after each hand. It holds
// no lock of its own; calls follow the same single-writer discipline as the
// game they drive.
type Controller struct {
	game      *game.Game
	structure BlindStructure
	logger    *log.Logger

	entrants  int
	nextPlace int
	finishes  []Finish
	done      bool
	winnerID  string
}

// New creates a controller for a game whose roster is already seated.
func New(g *game.Game, structure BlindStructure, logger *log.Logger) (*Controller, error) {
	if err := structure.Validate(); err != nil {
		return nil, err
	}
	entrants := len(g.RemainingPlayers())
	if entrants < 2 {
		return nil, fmt.Errorf("tournament needs at least 2 players, have %d", entrants)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{
		game:      g,
		structure: structure,
		logger:    logger.With("game", g.ID()),
		entrants:  entrants,
		nextPlace: entrants,
	}, nil
}

// CurrentLevel returns the blind level in force for the next hand.
func (c *Controller) CurrentLevel() (BlindLevel, int) {
	return c.structure.LevelForHand(c.game.HandNumber() + 1)
}

// BeginHand applies the scheduled blind level and starts the next hand.
func (c *Controller) BeginHand() error {
	if c.done {
		return errors.New("tournament is over")
	}
	level, idx := c.CurrentLevel()
	c.game.SetBlinds(level.SmallBlind, level.BigBlind)
	if err := c.game.StartHand(); err != nil {
		return err
	}
	c.logger.Debug("hand begun", "hand", c.game.HandNumber(), "level", idx,
		"blinds", fmt.Sprintf("%d/%d", level.SmallBlind, level.BigBlind))
	return nil
}

// FinishHand runs elimination bookkeeping after a hand completes and
// returns the players eliminated by it. The tournament ends when at most
// one player remains.
func (c *Controller) FinishHand() []string {
	if c.done {
		return nil
	}

	eliminated := c.game.MarkEliminated()
	for _, id := range eliminated {
		c.finishes = append(c.finishes, Finish{
			PlayerID:   id,
			Place:      c.nextPlace,
			HandNumber: c.game.HandNumber(),
		})
		c.nextPlace--
	}

	remaining := c.game.RemainingPlayers()
	if len(remaining) > 1 {
		return eliminated
	}

	c.done = true
	if len(remaining) == 1 {
		c.winnerID = remaining[0]
		c.finishes = append(c.finishes, Finish{
			PlayerID:   c.winnerID,
			Place:      1,
			HandNumber: c.game.HandNumber(),
		})
		c.logger.Info("tournament won", "winner", c.winnerID, "hands", c.game.HandNumber())
	} else {
		// Everyone busted on the same hand; there is no winner to declare.
		c.logger.Info("tournament ended with no winner", "hands", c.game.HandNumber())
	}
	return eliminated
}

// Done reports whether the tournament has ended.
func (c *Controller) Done() bool { return c.done }

// Result returns the standings. Valid once Done reports true; before that it
// reflects eliminations so far with no winner.
func (c *Controller) Result() Result {
	finishes := make([]Finish, len(c.finishes))
	copy(finishes, c.finishes)
	return Result{
		WinnerID:   c.winnerID,
		HandsDealt: c.game.HandNumber(),
		Finishes:   finishes,
	}
}
