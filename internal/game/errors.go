package game

import "fmt"

// IllegalActionError rejects an action that is outside the legal set for the
// current state: wrong turn, unknown player, malformed raise amount, or a
// phase that accepts no actions. The game state is left unchanged; the caller
// decides the fallback policy.
type IllegalActionError struct {
	PlayerID string
	Action   Action
	Reason   string
}

func (e *IllegalActionError) Error() string {
	return fmt.Sprintf("illegal action %s by %s: %s", e.Action, e.PlayerID, e.Reason)
}

func illegal(playerID string, action Action, format string, args ...any) error {
	return &IllegalActionError{
		PlayerID: playerID,
		Action:   action,
		Reason:   fmt.Sprintf(format, args...),
	}
}
