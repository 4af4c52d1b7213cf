package poker

// Ruleset selects the deck composition and hand-category ordering.
type Ruleset int

const (
	// Standard is the 52-card game with the usual category ordering.
	Standard Ruleset = iota
	// ShortDeck is the six-plus variant: ranks 2-5 removed, flush ranks
	// above full house, and A-6-7-8-9 is a legal straight.
	ShortDeck
)

// String returns the string representation of a ruleset
func (r Ruleset) String() string {
	switch r {
	case Standard:
		return "standard"
	case ShortDeck:
		return "short-deck"
	default:
		return "unknown"
	}
}

// ParseRuleset parses a ruleset selector as it appears in configs and the API.
func ParseRuleset(s string) (Ruleset, bool) {
	switch s {
	case "", "standard":
		return Standard, true
	case "short-deck", "shortdeck", "short_deck":
		return ShortDeck, true
	}
	return Standard, false
}

// LowestRank returns the lowest rank present in the deck for this ruleset.
func (r Ruleset) LowestRank() Rank {
	if r == ShortDeck {
		return Six
	}
	return Two
}

// DeckSize returns the number of cards in a full deck for this ruleset.
func (r Ruleset) DeckSize() int {
	return int(Ace-r.LowestRank()+1) * 4
}

// wheelHigh returns the high card of the ace-low straight for this ruleset:
// the five in standard play (A-2-3-4-5), the nine in short-deck (A-6-7-8-9).
func (r Ruleset) wheelHigh() Rank {
	if r == ShortDeck {
		return Nine
	}
	return Five
}

// strength returns the ordering weight of a category under this ruleset.
// Larger is stronger. Short-deck moves the flush above the full house; all
// other ordering is shared.
func (r Ruleset) strength(c Category) int {
	if r == ShortDeck {
		switch c {
		case FullHouse:
			return int(Flush)
		case Flush:
			return int(FullHouse)
		}
	}
	return int(c)
}
