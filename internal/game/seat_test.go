package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatPlayer(t *testing.T) {
	t.Parallel()

	r := NewRegistry(3)

	a, err := r.SeatPlayer("tok-a", "alice", 1000)
	require.NoError(t, err)
	assert.Equal(t, 0, a)

	b, err := r.SeatPlayer("tok-b", "bob", 500)
	require.NoError(t, err)
	assert.Equal(t, 1, b)

	_, err = r.SeatPlayer("tok-a", "alice again", 100)
	assert.ErrorIs(t, err, ErrDuplicateIdentity)

	_, err = r.SeatPlayer("tok-c", "carol", 100)
	require.NoError(t, err)

	_, err = r.SeatPlayer("tok-d", "dave", 100)
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestRemoveFreesSeatAndIdentity(t *testing.T) {
	t.Parallel()

	r := NewRegistry(2)
	idx, err := r.SeatPlayer("tok", "alice", 100)
	require.NoError(t, err)

	r.Remove(idx)
	assert.Equal(t, -1, r.IndexOf("tok"))

	// Seat and identity are both reusable.
	again, err := r.SeatPlayer("tok", "alice", 200)
	require.NoError(t, err)
	assert.Equal(t, idx, again)
}

func TestRingWalks(t *testing.T) {
	t.Parallel()

	r := NewRegistry(6)
	for _, tok := range []string{"x0", "a", "x2", "b", "x4", "c"} {
		_, err := r.SeatPlayer(tok, tok, 100)
		require.NoError(t, err)
	}
	// Leave seats 1, 3 and 5 occupied.
	r.Remove(0)
	r.Remove(2)
	r.Remove(4)

	assert.Equal(t, 3, r.NextOccupied(1))
	assert.Equal(t, 5, r.NextOccupied(3))
	assert.Equal(t, 1, r.NextOccupied(5)) // wraps
	assert.Equal(t, 1, r.NextOccupied(0))
}

func TestRingWalksBoundedWithSingleCandidate(t *testing.T) {
	t.Parallel()

	r := NewRegistry(4)
	idx, err := r.SeatPlayer("only", "only", 100)
	require.NoError(t, err)

	// A ring with exactly one candidate returns that candidate, starting
	// from the candidate itself.
	assert.Equal(t, idx, r.NextOccupied(idx))

	r.Remove(idx)
	assert.Equal(t, -1, r.NextOccupied(0))
	assert.Equal(t, -1, r.NextActive(0))
}

func TestNextActiveSkipsFoldedAndAllIn(t *testing.T) {
	t.Parallel()

	r := NewRegistry(4)
	for _, tok := range []string{"a", "b", "c", "d"} {
		_, err := r.SeatPlayer(tok, tok, 100)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		r.Seat(i).InHand = true
	}
	r.Seat(1).Folded = true
	r.Seat(2).AllIn = true

	assert.Equal(t, 3, r.NextActive(0))
	assert.Equal(t, 0, r.NextActive(3))
	assert.Equal(t, []int{0, 3}, r.InHandActive())
	assert.Equal(t, []int{0, 2, 3}, r.InHandAlive())
}

func TestCommitClampsToStack(t *testing.T) {
	t.Parallel()

	r := NewRegistry(1)
	_, err := r.SeatPlayer("a", "a", 75)
	require.NoError(t, err)

	s := r.Seat(0)
	s.InHand = true
	paid := s.commit(100)

	assert.Equal(t, 75, paid)
	assert.Equal(t, 0, s.Chips)
	assert.True(t, s.AllIn)
	assert.Equal(t, 75, s.TotalCommitted)
	assert.Equal(t, 75, s.CommittedThisStreet)
}
