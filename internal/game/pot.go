package game

import "sort"

// Pot is one layer of the final split: a chip amount plus the seats
// eligible to win it.
type Pot struct {
	Amount   int
	Eligible []int
}

// Ledger accumulates chip contributions for the current hand. During play
// it only tracks the running total; the main/side split is computed once,
// at showdown, from each seat's totalCommitted.
type Ledger struct {
	total int
}

// Add appends a contribution to the running pot total.
func (l *Ledger) Add(amount int) {
	l.total += amount
}

// Total returns the accumulated pot for this hand.
func (l *Ledger) Total() int {
	return l.total
}

// Reset clears the ledger for the next hand.
func (l *Ledger) Reset() {
	l.total = 0
}

// Split computes the main and side pots from the surviving seats'
// totalCommitted amounts.
//
// The sorted distinct commitment levels of the non-folded seats partition
// the pot into layers. Each layer collects every contributor's chips within
// that band, folded seats included, so dead money is paid out; eligibility
// for a layer is restricted to non-folded seats committed at least to that
// level. The deepest layer absorbs any remainder (contributions from seats
// that folded or left above every surviving level), so the layer amounts
// always sum to the full pot.
//
// Degenerate case: when no positive commitment levels exist among survivors
// (a walk-over), the whole pot goes to the single remaining seat.
func (l *Ledger) Split(reg *Registry) []Pot {
	alive := reg.InHandAlive()

	levelSet := make(map[int]bool)
	for _, idx := range alive {
		if c := reg.Seat(idx).TotalCommitted; c > 0 {
			levelSet[c] = true
		}
	}

	if len(levelSet) == 0 {
		if len(alive) == 0 || l.total == 0 {
			return nil
		}
		return []Pot{{Amount: l.total, Eligible: alive}}
	}

	levels := make([]int, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	var pots []Pot
	assigned := 0
	prev := 0
	for i, level := range levels {
		amount := 0
		for _, idx := range reg.Occupied() {
			c := reg.Seat(idx).TotalCommitted
			if c > level {
				c = level
			}
			if c > prev {
				amount += c - prev
			}
		}
		if i == len(levels)-1 {
			// Deepest layer: absorb dead money above every surviving level.
			amount = l.total - assigned
		}

		var eligible []int
		for _, idx := range alive {
			if reg.Seat(idx).TotalCommitted >= level {
				eligible = append(eligible, idx)
			}
		}

		if amount > 0 && len(eligible) > 0 {
			pots = append(pots, Pot{Amount: amount, Eligible: eligible})
			assigned += amount
		}
		prev = level
	}
	return pots
}
