package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/holdemarena/internal/game"
	"github.com/lox/holdemarena/internal/tournament"
	"github.com/lox/holdemarena/poker"
)

// Service exposes the engine over HTTP. Players poll state and legal
// actions and submit one action at a time; spectators subscribe over
// websocket. Each mutation rearms the action clock for whoever is next.
type Service struct {
	registry *Registry
	clock    *ActionClock
	logger   *log.Logger
}

// NewService wires the REST surface around a registry and action clock.
func NewService(registry *Registry, clock *ActionClock, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{registry: registry, clock: clock, logger: logger}
}

// Handler builds the route table.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("POST /games", s.handleCreateGame)
	mux.HandleFunc("POST /games/{id}/players", s.handleAddPlayer)
	mux.HandleFunc("DELETE /games/{id}/players/{player}", s.handleRemovePlayer)
	mux.HandleFunc("POST /games/{id}/start", s.handleStart)
	mux.HandleFunc("POST /games/{id}/next_hand", s.handleNextHand)
	mux.HandleFunc("GET /games/{id}/state", s.handleState)
	mux.HandleFunc("GET /games/{id}/actions", s.handleActions)
	mux.HandleFunc("POST /games/{id}/action", s.handleAction)
	mux.HandleFunc("GET /games/{id}/history", s.handleHistory)
	mux.HandleFunc("GET /games/{id}/result", s.handleResult)
	mux.HandleFunc("POST /games/{id}/blinds", s.handleBlinds)
	mux.HandleFunc("GET /games/{id}/watch", s.handleWatch)
	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createGameRequest struct {
	Name          string `json:"name"`
	SmallBlind    int    `json:"small_blind"`
	BigBlind      int    `json:"big_blind"`
	MaxPlayers    int    `json:"max_players"`
	Ruleset       string `json:"ruleset"`
	Continuous    bool   `json:"continuous"`
	StartingChips int    `json:"starting_chips"`
	Seed          int64  `json:"seed"`

	BlindLevels []BlindLevelConfig `json:"blind_levels,omitempty"`
}

func (s *Service) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SmallBlind <= 0 || req.BigBlind < req.SmallBlind {
		writeError(w, http.StatusBadRequest, "invalid blinds")
		return
	}
	ruleset, ok := poker.ParseRuleset(req.Ruleset)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown ruleset")
		return
	}
	if req.Continuous && len(req.BlindLevels) > 0 {
		writeError(w, http.StatusBadRequest, "tournament games cannot be continuous")
		return
	}
	if req.MaxPlayers == 0 {
		req.MaxPlayers = 6
	}
	if req.StartingChips == 0 {
		req.StartingChips = req.BigBlind * 50
	}

	var structure tournament.BlindStructure
	if len(req.BlindLevels) > 0 {
		structure = (&TournamentConfig{Levels: req.BlindLevels}).Structure()
	}

	table, err := s.registry.Create(req.Name, game.Config{
		SmallBlind:         req.SmallBlind,
		BigBlind:           req.BigBlind,
		MaxPlayers:         req.MaxPlayers,
		Ruleset:            ruleset,
		AllowNegativeChips: req.Continuous,
		Seed:               req.Seed,
	}, req.StartingChips, structure)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"game_id": table.ID})
}

func (s *Service) handleListGames(w http.ResponseWriter, _ *http.Request) {
	type gameInfo struct {
		GameID  string `json:"game_id"`
		Name    string `json:"name"`
		Phase   string `json:"phase"`
		Players int    `json:"players"`
	}
	games := make([]gameInfo, 0)
	for _, table := range s.registry.List() {
		snap := table.Game.Snapshot("")
		games = append(games, gameInfo{
			GameID:  table.ID,
			Name:    table.Name,
			Phase:   snap.Phase,
			Players: len(snap.Players),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Service) handleAddPlayer(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req struct {
		PlayerID string `json:"player_id"`
		Name     string `json:"name"`
		Chips    int    `json:"chips"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}
	if req.Name == "" {
		req.Name = req.PlayerID
	}
	if req.Chips == 0 {
		req.Chips = table.DefaultChips
	}
	if req.Chips <= 0 {
		writeError(w, http.StatusBadRequest, "chips must be positive")
		return
	}

	if err := table.Game.AddPlayer(req.PlayerID, req.Name, req.Chips); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.broadcast(table)
	writeJSON(w, http.StatusCreated, map[string]string{"player_id": req.PlayerID})
}

func (s *Service) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err := table.Game.RemovePlayer(r.PathValue("player")); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.broadcast(table)
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err := table.StartPlay(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.afterMutation(table)
	writeJSON(w, http.StatusOK, table.Game.Snapshot(""))
}

func (s *Service) handleNextHand(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	if err := table.NextHand(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.afterMutation(table)
	writeJSON(w, http.StatusOK, table.Game.Snapshot(""))
}

func (s *Service) handleState(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, table.Game.Snapshot(r.URL.Query().Get("player_id")))
}

func (s *Service) handleActions(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}
	playerID := r.URL.Query().Get("player_id")
	actions := table.Game.LegalActions(playerID)
	if actions == nil {
		actions = []game.LegalAction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player_id": playerID,
		"actions":   actions,
	})
}

func (s *Service) handleAction(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req struct {
		PlayerID string `json:"player_id"`
		Action   string `json:"action"`
		Amount   int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	action, ok := game.ParseAction(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown action")
		return
	}

	if err := table.Game.Apply(req.PlayerID, action, req.Amount); err != nil {
		var illegal *game.IllegalActionError
		if errors.As(err, &illegal) {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":     "illegal_action",
				"player_id": illegal.PlayerID,
				"action":    illegal.Action.String(),
				"reason":    illegal.Reason,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.afterMutation(table)
	writeJSON(w, http.StatusOK, table.Game.Snapshot(req.PlayerID))
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	hand := table.Game.HandNumber()
	if v := r.URL.Query().Get("hand"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid hand number")
			return
		}
		hand = n
	}

	records, ok := table.Game.History(hand)
	if !ok {
		writeError(w, http.StatusNotFound, "no history for hand")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"hand":    hand,
		"records": records,
	})
}

func (s *Service) handleResult(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	out := map[string]any{}
	if result, ok := table.Game.Result(); ok {
		out["hand"] = result
	}
	if standings, ok := table.TournamentResult(); ok {
		out["tournament"] = standings
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleBlinds(w http.ResponseWriter, r *http.Request) {
	table, ok := s.registry.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return
	}

	var req struct {
		SmallBlind int `json:"small_blind"`
		BigBlind   int `json:"big_blind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SmallBlind <= 0 || req.BigBlind < req.SmallBlind {
		writeError(w, http.StatusBadRequest, "invalid blinds")
		return
	}
	if table.Game.Phase().IsStreet() {
		writeError(w, http.StatusConflict, "cannot change blinds mid-hand")
		return
	}

	table.Game.SetBlinds(req.SmallBlind, req.BigBlind)
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// afterMutation pushes the new spectator state and rearms the action clock
// for whoever moves next. The forced-action callback reenters here so a
// chain of timeouts keeps the hand moving.
func (s *Service) afterMutation(table *Table) {
	s.broadcast(table)
	if table.Game.CurrentPlayer() != "" {
		s.clock.Arm(table.Game, func() { s.afterMutation(table) })
	} else {
		s.clock.Disarm(table.Game.ID())
	}
}

func (s *Service) broadcast(table *Table) {
	table.watchers.broadcast(table.Game.Snapshot(""))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
