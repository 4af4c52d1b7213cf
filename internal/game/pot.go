package game

import "sort"

// Pot is a main or side pot: an amount plus the set of players who can win
// it. Folded players contribute to pots but are never eligible.
type Pot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible"`
}

// OddChipPolicy decides where indivisible remainder chips go when a pot
// splits. The default matches the standard odd-chip rule; the enum exists so
// hosts with different house rules can extend it.
type OddChipPolicy int

const (
	// OddChipLeftOfButton assigns the whole remainder to the earliest
	// position after the dealer button.
	OddChipLeftOfButton OddChipPolicy = iota
)

// PotManager partitions cumulative hand contributions into a main pot and
// side pots. Contributions live on the players (HandBet); the manager is
// recomputed whenever a betting round closes, so the derived pots always
// equal the sum of contributions (chip conservation).
type PotManager struct {
	pots []Pot
}

// NewPotManager creates an empty pot manager.
func NewPotManager() *PotManager {
	return &PotManager{}
}

// Pots returns the current partition.
func (pm *PotManager) Pots() []Pot {
	return pm.pots
}

// Total returns the amount across all pots.
func (pm *PotManager) Total() int {
	total := 0
	for _, pot := range pm.pots {
		total += pot.Amount
	}
	return total
}

// Recalculate rebuilds the pot partition from the players' cumulative hand
// contributions. One capped pot is formed per distinct all-in contribution
// level, ascending; a final uncapped pot collects everything above the
// highest level. Every contributor funds every level it reached, but only
// non-folded players who reached a level are eligible for its pot.
func (pm *PotManager) Recalculate(players []*Player) {
	levels := make([]int, 0, len(players))
	seen := make(map[int]bool)
	for _, p := range players {
		if p.State == StateAllIn && p.HandBet > 0 && !seen[p.HandBet] {
			seen[p.HandBet] = true
			levels = append(levels, p.HandBet)
		}
	}
	sort.Ints(levels)

	pm.pots = pm.pots[:0]
	prev := 0
	for _, level := range levels {
		pot := Pot{}
		for _, p := range players {
			slice := min(p.HandBet, level) - prev
			if slice > 0 {
				pot.Amount += slice
			}
			if !p.InHand() {
				continue
			}
			if p.HandBet >= level {
				pot.Eligible = append(pot.Eligible, p.ID)
			}
		}
		if pot.Amount > 0 {
			pm.pots = append(pm.pots, pot)
		}
		prev = level
	}

	// Remainder above the highest all-in level.
	rest := Pot{}
	for _, p := range players {
		if p.HandBet > prev {
			rest.Amount += p.HandBet - prev
			if p.InHand() {
				rest.Eligible = append(rest.Eligible, p.ID)
			}
		}
	}
	if rest.Amount > 0 {
		pm.pots = append(pm.pots, rest)
	}
}

// PotAward records one pot's outcome.
type PotAward struct {
	PotIndex int
	Winners  []string
	Shares   map[string]int
}

// split divides amount among winners, giving the whole indivisible
// remainder to the first winner listed (callers pass winners ordered from
// the earliest position after the button).
func split(amount int, winners []string) map[string]int {
	shares := make(map[string]int, len(winners))
	base := amount / len(winners)
	for _, id := range winners {
		shares[id] = base
	}
	shares[winners[0]] += amount % len(winners)
	return shares
}
