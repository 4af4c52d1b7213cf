package game

// Phase represents the lifecycle stage of a hand
type Phase int

const (
	Waiting Phase = iota
	Preflop
	Flop
	Turn
	River
	Showdown
	HandComplete
)

// String returns the string representation of a phase
func (p Phase) String() string {
	return [...]string{"waiting", "preflop", "flop", "turn", "river", "showdown", "hand_complete"}[p]
}

// IsStreet reports whether the phase is a betting street.
func (p Phase) IsStreet() bool {
	return p >= Preflop && p <= River
}

// Action represents a player action. The set is closed: every reachable
// transition is an exhaustive switch over these five values.
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

// String returns the string representation of an action
func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "all_in"}[a]
}

// ParseAction parses an action name as it appears on the wire.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "raise":
		return Raise, true
	case "all_in", "allin":
		return AllIn, true
	}
	return Fold, false
}

// Record kinds beyond the five player actions. Blind posts and pot awards
// share the audit trail so a hand can be replayed from its log alone.
const (
	RecordSmallBlind = "small_blind"
	RecordBigBlind   = "big_blind"
	RecordWin        = "win"
)

// ActionRecord is an immutable, append-only audit log entry.
type ActionRecord struct {
	Seq      int    `json:"seq"`
	PlayerID string `json:"player_id"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	Phase    string `json:"phase"`
}

// LegalAction describes one entry of the legal-action set for the player to
// move. Call and all-in carry the exact amount; raise carries the inclusive
// range of total street bets the player may raise to.
type LegalAction struct {
	Action Action `json:"action"`
	Amount int    `json:"amount,omitempty"`
	Min    int    `json:"min,omitempty"`
	Max    int    `json:"max,omitempty"`
}
