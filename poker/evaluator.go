package poker

import (
	"fmt"
	"sort"
)

// Category enumerates hand categories from weakest to strongest under the
// standard ordering. The ruleset decides the final ordering: short-deck
// swaps Flush and FullHouse.
type Category int

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String returns a human-readable category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

// HandValue is the total-order key for a best five-card hand: the category
// plus tiebreak ranks in descending significance. Values are only comparable
// when produced under the same ruleset.
type HandValue struct {
	Category  Category
	TieBreaks [5]Rank

	score uint32
}

// Compare returns 1 if hv is stronger than other, -1 if weaker, 0 on an
// exact tie. Exact ties are a legitimate outcome (split pots), not an error.
func (hv HandValue) Compare(other HandValue) int {
	switch {
	case hv.score > other.score:
		return 1
	case hv.score < other.score:
		return -1
	default:
		return 0
	}
}

// Description names the hand, distinguishing the royal flush as the top
// straight flush instance.
func (hv HandValue) Description() string {
	if hv.Category == StraightFlush && hv.TieBreaks[0] == Ace {
		return "Royal Flush"
	}
	return hv.Category.String()
}

// Evaluate finds the best five-card hand from between five and seven cards
// (two hole cards plus three to five community cards). Fewer than five cards
// is a caller bug.
func Evaluate(rs Ruleset, cards []Card) (HandValue, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return HandValue{}, fmt.Errorf("poker: evaluate needs 5-7 cards, got %d", len(cards))
	}

	if len(cards) == 5 {
		return evaluate5(rs, [5]Card(cards)), nil
	}

	// Scan every 5-card combination (21 for seven cards) and keep the best.
	var best HandValue
	first := true
	var combo [5]Card
	n := len(cards)
	for a := 0; a < n-4; a++ {
		for b := a + 1; b < n-3; b++ {
			for c := b + 1; c < n-2; c++ {
				for d := c + 1; d < n-1; d++ {
					for e := d + 1; e < n; e++ {
						combo[0], combo[1], combo[2], combo[3], combo[4] =
							cards[a], cards[b], cards[c], cards[d], cards[e]
						hv := evaluate5(rs, combo)
						if first || hv.Compare(best) > 0 {
							best = hv
							first = false
						}
					}
				}
			}
		}
	}
	return best, nil
}

func evaluate5(rs Ruleset, cards [5]Card) HandValue {
	counts := make(map[Rank]int, 5)
	flush := true
	for i, c := range cards {
		counts[c.Rank]++
		if i > 0 && c.Suit != cards[0].Suit {
			flush = false
		}
	}

	straightHigh, wheel := straightHighCard(rs, counts)
	straight := straightHigh != 0

	// Tiebreak ranks: the five card ranks ordered by multiplicity then rank.
	// In a wheel the ace plays low, so it sorts to the bottom.
	tie := make([]Rank, 0, 5)
	for _, c := range cards {
		r := c.Rank
		if wheel && r == Ace {
			r = aceLow
		}
		tie = append(tie, r)
	}
	sort.Slice(tie, func(i, j int) bool {
		ci, cj := counts[restoreAce(tie[i])], counts[restoreAce(tie[j])]
		if ci != cj {
			return ci > cj
		}
		return tie[i] > tie[j]
	})

	pairs, trips, quads := 0, 0, 0
	for _, n := range counts {
		switch n {
		case 2:
			pairs++
		case 3:
			trips++
		case 4:
			quads++
		}
	}

	var category Category
	switch {
	case straight && flush:
		category = StraightFlush
	case quads == 1:
		category = FourOfAKind
	case trips == 1 && pairs == 1:
		category = FullHouse
	case flush:
		category = Flush
	case straight:
		category = Straight
	case trips == 1:
		category = ThreeOfAKind
	case pairs == 2:
		category = TwoPair
	case pairs == 1:
		category = Pair
	default:
		category = HighCard
	}

	hv := HandValue{Category: category, TieBreaks: [5]Rank(tie)}
	hv.score = uint32(rs.strength(category)) << 20
	for i, r := range hv.TieBreaks {
		hv.score |= uint32(r) << (16 - 4*i)
	}
	return hv
}

// straightHighCard returns the high card of the straight formed by the rank
// set, or 0 if there is none. The second result reports the ace-low wheel,
// whose high card is the five in standard play and the nine in short-deck.
func straightHighCard(rs Ruleset, counts map[Rank]int) (Rank, bool) {
	if len(counts) != 5 {
		return 0, false
	}

	low, high := Ace, Two
	for r := range counts {
		if r < low {
			low = r
		}
		if r > high {
			high = r
		}
	}

	if high-low == 4 {
		return high, false
	}

	// Ace-low wheel: ace plus the four lowest ranks of the deck.
	if counts[Ace] == 1 {
		bottom := rs.LowestRank()
		for r := bottom; r < bottom+4; r++ {
			if counts[r] == 0 {
				return 0, false
			}
		}
		return rs.wheelHigh(), true
	}

	return 0, false
}

func restoreAce(r Rank) Rank {
	if r == aceLow {
		return Ace
	}
	return r
}
