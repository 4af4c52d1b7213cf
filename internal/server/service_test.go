package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdemarena/internal/game"
)

func newTestService(t *testing.T, clock quartz.Clock, timeout time.Duration) (*Service, *Registry) {
	t.Helper()
	logger := log.New(io.Discard)
	actionClock := NewActionClock(clock, timeout, logger)
	t.Cleanup(actionClock.Stop)
	registry := NewRegistry(actionClock, logger)
	t.Cleanup(registry.Close)
	return NewService(registry, actionClock, logger), registry
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func createGame(t *testing.T, handler http.Handler, seats int) string {
	t.Helper()

	rec, body := doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"name":        "test",
		"small_blind": 10,
		"big_blind":   20,
		"seed":        7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	gameID := body["game_id"].(string)

	for i := 0; i < seats; i++ {
		id := string(rune('a' + i))
		rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/players", map[string]any{
			"player_id": id,
			"name":      id,
			"chips":     1000,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	return gameID
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	rec, body := doJSON(t, svc.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestCreateGameValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()

	rec, _ := doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"small_blind": 0, "big_blind": 20,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"small_blind": 10, "big_blind": 20, "ruleset": "omaha",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Continuous games never eliminate, so they cannot run a blind schedule.
	rec, _ = doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"small_blind": 10, "big_blind": 20, "continuous": true,
		"blind_levels": []map[string]any{
			{"small_blind": 10, "big_blind": 20},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, handler, http.MethodGet, "/games/nope/state", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJoinDefaultsToTableBuyIn(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()

	rec, body := doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"name": "buyin", "small_blind": 10, "big_blind": 20, "starting_chips": 500,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	gameID := body["game_id"].(string)

	// No chips in the request: the table's starting stack applies.
	rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/players", map[string]any{
		"player_id": "a",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	players := body["players"].([]any)
	require.Len(t, players, 1)
	assert.Equal(t, float64(500), players[0].(map[string]any)["chips"])

	// An explicit amount still wins over the default.
	rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/players", map[string]any{
		"player_id": "b", "chips": 750,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestPlayHandOverHTTP(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()
	gameID := createGame(t, handler, 3)

	rec, body := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "preflop", body["phase"])
	assert.Equal(t, "a", body["current_player"])

	// State is redacted per viewer: a sees its own cards, never b's.
	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/state?player_id=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, raw := range body["players"].([]any) {
		pv := raw.(map[string]any)
		if pv["id"] == "a" {
			assert.Len(t, pv["hole_cards"], 2)
		} else {
			assert.Nil(t, pv["hole_cards"])
		}
	}

	// The legal-action set for the mover includes fold and call.
	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/actions?player_id=a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	names := []string{}
	for _, raw := range body["actions"].([]any) {
		names = append(names, raw.(map[string]any)["action"].(string))
	}
	assert.Contains(t, strings.Join(names, ","), "call")

	// Everyone folds to the big blind.
	for _, playerID := range []string{"a", "b"} {
		rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
			"player_id": playerID, "action": "fold",
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hand_complete", body["phase"])

	// History carries the blind posts, folds and the award.
	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/history?hand=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := body["records"].([]any)
	require.Len(t, records, 5)
	last := records[len(records)-1].(map[string]any)
	assert.Equal(t, "win", last["action"])
	assert.Equal(t, "c", last["player_id"])

	// Next hand rotates the button.
	rec, body = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/next_hand", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), body["hand_number"])
}

func TestIllegalActionReturnsConflict(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()
	gameID := createGame(t, handler, 3)

	rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// b acts out of turn.
	rec, body := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "b", "action": "fold",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "illegal_action", body["error"])
	assert.Equal(t, "b", body["player_id"])

	rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
		"player_id": "a", "action": "levitate",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlindsEndpoint(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()
	gameID := createGame(t, handler, 2)

	rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/blinds", map[string]any{
		"small_blind": 25, "big_blind": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(50), body["big_blind"])

	// Mid-hand changes are rejected.
	rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/blinds", map[string]any{
		"small_blind": 100, "big_blind": 200,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTournamentOverHTTP(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()

	rec, body := doJSON(t, handler, http.MethodPost, "/games", map[string]any{
		"name":        "tourney",
		"small_blind": 10,
		"big_blind":   20,
		"seed":        3,
		"blind_levels": []map[string]any{
			{"small_blind": 10, "big_blind": 20, "hands": 2},
			{"small_blind": 100, "big_blind": 200},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	gameID := body["game_id"].(string)

	for _, id := range []string{"a", "b"} {
		rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/players", map[string]any{
			"player_id": id, "chips": 300,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Shove every hand until the tournament decides.
	for hand := 0; hand < 50; hand++ {
		for turn := 0; turn < 20; turn++ {
			rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/state", nil)
			mover, _ := body["current_player"].(string)
			if mover == "" {
				break
			}
			rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/action", map[string]any{
				"player_id": mover, "action": "all_in",
			})
			require.Equal(t, http.StatusOK, rec.Code)
		}
		rec, _ = doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/next_hand", nil)
		if rec.Code == http.StatusConflict {
			break
		}
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, body = doJSON(t, handler, http.MethodGet, "/games/"+gameID+"/result", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	standings, ok := body["tournament"].(map[string]any)
	require.True(t, ok, "tournament result missing: %v", body)
	assert.NotEmpty(t, standings["winner_id"])
}

func TestActionTimeoutForcesFold(t *testing.T) {
	t.Parallel()

	mockClock := quartz.NewMock(t)
	svc, registry := newTestService(t, mockClock, 3*time.Second)
	handler := svc.Handler()
	gameID := createGame(t, handler, 3)

	rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	table, ok := registry.Get(gameID)
	require.True(t, ok)
	require.Equal(t, "a", table.Game.CurrentPlayer())

	// a faces the blind, so the forced action is a fold; b times out the
	// same way, and the hand ends with the pot going to the big blind.
	ctx := context.Background()
	mockClock.Advance(3 * time.Second).MustWait(ctx)
	assert.Equal(t, "b", table.Game.CurrentPlayer())

	mockClock.Advance(3 * time.Second).MustWait(ctx)
	assert.Equal(t, game.HandComplete, table.Game.Phase())

	result, ok := table.Game.Result()
	require.True(t, ok)
	assert.True(t, result.WonWithoutShowdown)
}

func TestRemoveTableDisarmsActionClock(t *testing.T) {
	t.Parallel()

	mockClock := quartz.NewMock(t)
	svc, registry := newTestService(t, mockClock, 3*time.Second)
	handler := svc.Handler()
	gameID := createGame(t, handler, 2)

	rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	svc.clock.mu.Lock()
	_, armed := svc.clock.timers[gameID]
	svc.clock.mu.Unlock()
	require.True(t, armed, "starting a hand arms the action clock")

	// Dropping the table cancels the countdown, so nothing can force an
	// action on the unregistered game later.
	registry.Remove(gameID)

	svc.clock.mu.Lock()
	_, armed = svc.clock.timers[gameID]
	svc.clock.mu.Unlock()
	assert.False(t, armed, "removing the table leaves no pending countdown")
}

func TestWatchStreamsSnapshots(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, quartz.NewReal(), 0)
	handler := svc.Handler()
	gameID := createGame(t, handler, 2)

	ts := httptest.NewServer(handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/games/" + gameID + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The initial snapshot arrives on connect.
	var snap game.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, gameID, snap.GameID)
	assert.Equal(t, "waiting", snap.Phase)

	// Starting a hand pushes a fresh snapshot with no hole cards visible.
	rec, _ := doJSON(t, handler, http.MethodPost, "/games/"+gameID+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "preflop", snap.Phase)
	for _, pv := range snap.Players {
		assert.Nil(t, pv.HoleCards, "spectator stream must redact hole cards")
	}
}
