package poker

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	rand "math/rand/v2"
)

// ErrEmptyDeck is returned when a draw is attempted on an exhausted deck.
// Under correct orchestration it is unreachable; callers treat it as a fatal
// invariant violation, not a recoverable condition.
var ErrEmptyDeck = errors.New("poker: deck exhausted")

// Deck is an ordered sequence of the ruleset's cards, shuffled once at
// creation and consumed from the top. One deck lives for exactly one hand.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a shuffled deck for the ruleset. A non-zero seed produces
// a deterministic permutation for reproducible hands; seed zero draws the
// shuffle from a secure random source.
func NewDeck(rs Ruleset, seed int64) *Deck {
	cards := make([]Card, 0, rs.DeckSize())
	for rank := rs.LowestRank(); rank <= Ace; rank++ {
		for suit := Suit(0); suit < 4; suit++ {
			cards = append(cards, NewCard(rank, suit))
		}
	}

	d := &Deck{cards: cards}
	d.shuffle(newRNG(seed))
	return d
}

// RestoreDeck rebuilds a deck from its undealt remainder, preserving order.
// Used when resuming a serialized hand.
func RestoreDeck(undealt []Card) *Deck {
	cards := make([]Card, len(undealt))
	copy(cards, undealt)
	return &Deck{cards: cards}
}

func (d *Deck) shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrEmptyDeck
	}
	card := d.cards[d.next]
	d.next++
	return card, nil
}

// DrawN removes and returns the top n cards.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if d.next+n > len(d.cards) {
		return nil, ErrEmptyDeck
	}
	cards := make([]Card, n)
	copy(cards, d.cards[d.next:d.next+n])
	d.next += n
	return cards, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Undealt returns a copy of the undealt remainder, top card first. Together
// with RestoreDeck it allows a hand to be suspended and resumed exactly.
func (d *Deck) Undealt() []Card {
	out := make([]Card, len(d.cards)-d.next)
	copy(out, d.cards[d.next:])
	return out
}

const goldenRatio64 = 0x9e3779b97f4a7c15

// newRNG derives a rand/v2 PCG source from a single int64 so all seeded
// call sites share one reproducible scheme. Seed zero reads entropy from
// crypto/rand instead.
func newRNG(seed int64) *rand.Rand {
	u := uint64(seed)
	if seed == 0 {
		var buf [8]byte
		if _, err := crand.Read(buf[:]); err != nil {
			panic("poker: reading random seed: " + err.Error())
		}
		u = binary.LittleEndian.Uint64(buf[:])
	}
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
