package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPotFixture seats players, marks them in hand and commits the given
// totals into the ledger.
func newPotFixture(t *testing.T, committed ...int) (*Registry, *Ledger) {
	t.Helper()
	r := NewRegistry(len(committed))
	l := &Ledger{}
	for i, total := range committed {
		_, err := r.SeatPlayer(string(rune('a'+i)), string(rune('a'+i)), 10000)
		require.NoError(t, err)
		s := r.Seat(i)
		s.InHand = true
		l.Add(s.commit(total))
	}
	return r, l
}

func potAmounts(pots []Pot) []int {
	out := make([]int, len(pots))
	for i, p := range pots {
		out[i] = p.Amount
	}
	return out
}

func TestSplitSinglePotEqualCommitments(t *testing.T) {
	t.Parallel()

	r, l := newPotFixture(t, 100, 100, 100)
	pots := l.Split(r)

	require.Len(t, pots, 1)
	assert.Equal(t, 300, pots[0].Amount)
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
}

func TestSplitUnequalAllIns(t *testing.T) {
	t.Parallel()

	// Three players all-in for 200, 500 and 1000: layers of 600 (200×3),
	// 600 (300×2) and 500 (500×1) with shrinking eligible sets.
	r, l := newPotFixture(t, 200, 500, 1000)
	pots := l.Split(r)

	require.Len(t, pots, 3)
	assert.Equal(t, []int{600, 600, 500}, potAmounts(pots))
	assert.Equal(t, []int{0, 1, 2}, pots[0].Eligible)
	assert.Equal(t, []int{1, 2}, pots[1].Eligible)
	assert.Equal(t, []int{2}, pots[2].Eligible)
}

func TestSplitConservesChips(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		committed []int
		folded    []int
	}{
		{name: "equal stacks", committed: []int{300, 300, 300}},
		{name: "two level all-in", committed: []int{150, 400, 400}},
		{name: "folded contributor between levels", committed: []int{120, 300, 500}, folded: []int{0}},
		{name: "folded contributor above all levels", committed: []int{900, 300, 500}, folded: []int{0}},
		{name: "heads up", committed: []int{300, 300}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, l := newPotFixture(t, tc.committed...)
			for _, idx := range tc.folded {
				r.Seat(idx).Folded = true
			}

			total := 0
			for _, c := range tc.committed {
				total += c
			}

			sum := 0
			for _, pot := range l.Split(r) {
				sum += pot.Amount
			}
			assert.Equal(t, total, sum, "pot layers must sum to all committed chips")
		})
	}
}

func TestSplitFoldedContributorIsNeverEligible(t *testing.T) {
	t.Parallel()

	r, l := newPotFixture(t, 300, 300, 300)
	r.Seat(1).Folded = true

	pots := l.Split(r)
	require.Len(t, pots, 1)
	assert.Equal(t, 900, pots[0].Amount, "dead money stays in the pot")
	assert.Equal(t, []int{0, 2}, pots[0].Eligible)
}

func TestSplitUncalledExcessFormsSoloLayer(t *testing.T) {
	t.Parallel()

	// Heads-up: seat 0 all-in for 300, seat 1 covered with 1000 committed.
	// The 700 excess is only contestable by seat 1.
	r, l := newPotFixture(t, 300, 1000)
	pots := l.Split(r)

	require.Len(t, pots, 2)
	assert.Equal(t, []int{600, 700}, potAmounts(pots))
	assert.Equal(t, []int{0, 1}, pots[0].Eligible)
	assert.Equal(t, []int{1}, pots[1].Eligible)
}

func TestSplitWalkoverFallback(t *testing.T) {
	t.Parallel()

	// No positive commitment level among survivors: the whole accumulated
	// pot goes to the single remaining seat.
	r := NewRegistry(2)
	l := &Ledger{}
	for i, tok := range []string{"a", "b"} {
		_, err := r.SeatPlayer(tok, tok, 1000)
		require.NoError(t, err)
		r.Seat(i).InHand = true
	}
	l.Add(r.Seat(0).commit(150))
	r.Seat(0).Folded = true
	r.Seat(1).TotalCommitted = 0

	pots := l.Split(r)
	require.Len(t, pots, 1)
	assert.Equal(t, 150, pots[0].Amount)
	assert.Equal(t, []int{1}, pots[0].Eligible)
}

func TestSplitEmptyLedger(t *testing.T) {
	t.Parallel()

	r := NewRegistry(2)
	l := &Ledger{}
	assert.Nil(t, l.Split(r))
}

func TestLedgerReset(t *testing.T) {
	t.Parallel()

	l := &Ledger{}
	l.Add(250)
	l.Add(50)
	assert.Equal(t, 300, l.Total())
	l.Reset()
	assert.Equal(t, 0, l.Total())
}
