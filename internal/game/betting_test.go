package game

import "testing"

func actionSet(actions []LegalAction) map[Action]LegalAction {
	out := make(map[Action]LegalAction, len(actions))
	for _, a := range actions {
		out[a.Action] = a
	}
	return out
}

func TestLegalActionsNoBetToMatch(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	p := &Player{ID: "a", Chips: 1000, State: StateActive}

	set := actionSet(br.LegalActions(p))
	if _, ok := set[Fold]; ok {
		t.Error("fold should not be offered with nothing to call")
	}
	if _, ok := set[Check]; !ok {
		t.Error("check should be offered with nothing to call")
	}
	raise, ok := set[Raise]
	if !ok {
		t.Fatal("raise should be offered")
	}
	if raise.Min != 20 || raise.Max != 1000 {
		t.Errorf("raise range [%d, %d], want [20, 1000]", raise.Min, raise.Max)
	}
	if allIn, ok := set[AllIn]; !ok || allIn.Amount != 1000 {
		t.Errorf("all-in should be offered for the full stack, got %+v", set[AllIn])
	}
}

func TestLegalActionsFacingBet(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	br.CurrentBet = 20 // big blind
	br.applyRaise(60)
	p := &Player{ID: "a", Chips: 1000, StreetBet: 20, State: StateActive}

	set := actionSet(br.LegalActions(p))
	if _, ok := set[Check]; ok {
		t.Error("check should not be offered facing a bet")
	}
	if _, ok := set[Fold]; !ok {
		t.Error("fold should be offered facing a bet")
	}
	call, ok := set[Call]
	if !ok || call.Amount != 40 {
		t.Errorf("call should cost 40, got %+v", call)
	}
	// The raise to 60 over the 20 blind was a full raise of 40.
	raise := set[Raise]
	if raise.Min != 100 {
		t.Errorf("raise min = %d, want 100", raise.Min)
	}
}

func TestLegalActionsShortStackCall(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	br.applyRaise(500)
	p := &Player{ID: "a", Chips: 120, State: StateActive}

	set := actionSet(br.LegalActions(p))
	if call := set[Call]; call.Amount != 120 {
		t.Errorf("call should clamp to the 120 stack, got %d", call.Amount)
	}
	if _, ok := set[Raise]; ok {
		t.Error("raise should not be offered when the stack cannot cover the call")
	}
	if allIn := set[AllIn]; allIn.Amount != 120 {
		t.Errorf("all-in amount = %d, want 120", allIn.Amount)
	}
}

func TestLegalActionsRaiseNeedsMinimum(t *testing.T) {
	t.Parallel()

	// Stack covers the call with change, but not the minimum raise.
	br := NewBettingRound(20)
	br.applyRaise(100)
	p := &Player{ID: "a", Chips: 150, State: StateActive}

	set := actionSet(br.LegalActions(p))
	if _, ok := set[Raise]; ok {
		t.Error("raise should not be offered below the minimum-raise threshold")
	}
	if _, ok := set[AllIn]; !ok {
		t.Error("all-in remains legal for the short stack")
	}
}

func TestMinRaiseTracksFullRaisesOnly(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	br.CurrentBet = 20 // big blind
	br.applyRaise(60) // full raise of 40
	if br.MinRaise != 40 {
		t.Fatalf("MinRaise = %d, want 40", br.MinRaise)
	}
	br.applyRaise(80) // short all-in raise of 20
	if br.MinRaise != 40 {
		t.Errorf("short raise changed MinRaise to %d, want 40", br.MinRaise)
	}
	if br.CurrentBet != 80 {
		t.Errorf("CurrentBet = %d, want 80", br.CurrentBet)
	}
	br.applyRaise(160) // full raise of 80
	if br.MinRaise != 80 {
		t.Errorf("MinRaise = %d, want 80", br.MinRaise)
	}
}

func TestCompleteRequiresActionAndMatch(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	br.CurrentBet = 20

	// Blind posts leave acted false: the big blind still holds its option
	// even with every bet matched.
	a := &Player{ID: "a", Chips: 980, StreetBet: 20, State: StateActive, acted: true}
	bb := &Player{ID: "bb", Chips: 980, StreetBet: 20, State: StateActive}
	players := []*Player{a, bb}

	if br.Complete(players) {
		t.Error("round should stay open until the big blind acts")
	}

	bb.acted = true
	if !br.Complete(players) {
		t.Error("round should close once everyone acted and matched")
	}

	// A raise reopens the round through the bet mismatch.
	br.applyRaise(60)
	bb.StreetBet = 60
	if br.Complete(players) {
		t.Error("round should reopen after a raise")
	}
}

func TestCompleteIgnoresAllInAndFolded(t *testing.T) {
	t.Parallel()

	br := NewBettingRound(20)
	br.CurrentBet = 100

	players := []*Player{
		{ID: "a", State: StateAllIn, StreetBet: 40},
		{ID: "b", State: StateFolded},
		{ID: "c", State: StateActive, StreetBet: 100, acted: true},
	}
	if !br.Complete(players) {
		t.Error("all-in and folded players should not hold the round open")
	}
}
