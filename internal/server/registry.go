package server

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/tournament"
)

// Table is one hosted game plus its optional tournament controller and the
// spectator connections watching it. The game serializes its own state; the
// table's lock covers the controller and the hand lifecycle transitions
// around it, preserving the single-writer-per-game discipline.
type Table struct {
	ID   string
	Name string
	Game *game.Game

	// DefaultChips is the buy-in used when a join request names no amount.
	DefaultChips int

	mu         sync.Mutex
	controller *tournament.Controller
	structure  tournament.BlindStructure
	watchers   *watcherHub
}

// Registry owns every active table, keyed by game ID. It is constructed at
// process start and torn down explicitly; there is no ambient global state.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	clock  *ActionClock
	logger *log.Logger
}

// NewRegistry creates an empty registry. Tables removed from it have their
// pending action-clock timers disarmed.
func NewRegistry(clock *ActionClock, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		tables: make(map[string]*Table),
		clock:  clock,
		logger: logger,
	}
}

// Create makes a new table. A non-nil blind structure makes it a tournament
// table; the controller is instantiated when play starts, once the roster
// is known.
func (r *Registry) Create(name string, cfg game.Config, startingChips int, structure tournament.BlindStructure) (*Table, error) {
	if structure != nil {
		if err := structure.Validate(); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	table := &Table{
		ID:           id,
		Name:         name,
		Game:         game.NewGame(id, cfg, r.logger),
		DefaultChips: startingChips,
		structure:    structure,
		watchers:     newWatcherHub(r.logger.With("game", id)),
	}

	r.mu.Lock()
	r.tables[id] = table
	r.mu.Unlock()

	r.logger.Info("table created", "game", id, "name", name,
		"blinds", fmt.Sprintf("%d/%d", cfg.SmallBlind, cfg.BigBlind),
		"ruleset", cfg.Ruleset, "tournament", structure != nil)
	return table, nil
}

// Get looks up a table by game ID.
func (r *Registry) Get(id string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[id]
	return table, ok
}

// Remove drops a table, disconnects its watchers and cancels any pending
// action-clock countdown so nothing forces an action on the dead game.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	table, ok := r.tables[id]
	delete(r.tables, id)
	r.mu.Unlock()

	if ok {
		if r.clock != nil {
			r.clock.Disarm(id)
		}
		table.watchers.closeAll()
	}
}

// List returns every active table.
func (r *Registry) List() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Table, 0, len(r.tables))
	for _, table := range r.tables {
		out = append(out, table)
	}
	return out
}

// Close tears the registry down.
func (r *Registry) Close() {
	r.mu.Lock()
	tables := r.tables
	r.tables = make(map[string]*Table)
	r.mu.Unlock()

	for id, table := range tables {
		if r.clock != nil {
			r.clock.Disarm(id)
		}
		table.watchers.closeAll()
	}
}

// StartPlay begins the first hand. Tournament tables get their controller
// here, once the full roster is seated.
func (t *Table) StartPlay() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.structure != nil && t.controller == nil {
		controller, err := tournament.New(t.Game, t.structure, log.Default())
		if err != nil {
			return err
		}
		t.controller = controller
	}
	return t.beginHand()
}

// NextHand starts the following hand, running tournament bookkeeping first.
func (t *Table) NextHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Game.Phase() != game.HandComplete {
		return fmt.Errorf("hand still in progress")
	}
	if t.controller != nil {
		t.controller.FinishHand()
		if t.controller.Done() {
			return fmt.Errorf("tournament is over")
		}
	}
	return t.beginHand()
}

func (t *Table) beginHand() error {
	if t.controller != nil {
		return t.controller.BeginHand()
	}
	return t.Game.StartHand()
}

// TournamentResult returns the standings for tournament tables.
func (t *Table) TournamentResult() (tournament.Result, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.controller == nil {
		return tournament.Result{}, false
	}
	return t.controller.Result(), true
}

// TournamentDone reports whether the table's tournament has ended.
func (t *Table) TournamentDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.controller != nil && t.controller.Done()
}
