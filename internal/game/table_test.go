package game

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardroom/cardroom/internal/deck"
	"github.com/cardroom/cardroom/internal/randutil"
)

// eventRecorder captures published events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(et EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.EventType() == et {
			out = append(out, e)
		}
	}
	return out
}

func (r *eventRecorder) lastTurn() (TurnEvent, bool) {
	turns := r.ofType(EventTypeTurn)
	if len(turns) == 0 {
		return TurnEvent{}, false
	}
	return turns[len(turns)-1].(TurnEvent), true
}

func (r *eventRecorder) actions() []PlayerActionEvent {
	var out []PlayerActionEvent
	for _, e := range r.ofType(EventTypePlayerAction) {
		out = append(out, e.(PlayerActionEvent))
	}
	return out
}

// stubEvaluator ranks seats by a fixed score; ties are preserved.
type stubEvaluator struct {
	scores map[int]int
}

func favoring(seats ...int) *stubEvaluator {
	scores := make(map[int]int)
	for _, s := range seats {
		scores[s] = 1
	}
	return &stubEvaluator{scores: scores}
}

func (e *stubEvaluator) Winners(_ []deck.Card, hands []ShowdownHand) []int {
	best := -1 << 31
	var winners []int
	for _, h := range hands {
		score := e.scores[h.Seat]
		if score > best {
			best = score
			winners = []int{h.Seat}
		} else if score == best {
			winners = append(winners, h.Seat)
		}
	}
	return winners
}

const (
	testStartDelay  = 3 * time.Second
	testTurnTimeout = 30 * time.Second
)

func newTestTable(t *testing.T, eval Evaluator) (*Table, *quartz.Mock, *eventRecorder) {
	t.Helper()
	return newTestTableWithConfig(t, eval, Config{
		MaxSeats:    6,
		SmallBlind:  50,
		BigBlind:    100,
		TurnTimeout: testTurnTimeout,
		StartDelay:  testStartDelay,
	})
}

func newTestTableWithConfig(t *testing.T, eval Evaluator, cfg Config) (*Table, *quartz.Mock, *eventRecorder) {
	t.Helper()
	mock := quartz.NewMock(t)
	rec := &eventRecorder{}
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	tbl := NewTable(cfg, logger, mock, randutil.New(1), eval, rec)
	return tbl, mock, rec
}

func startHand(t *testing.T, tbl *Table, mock *quartz.Mock) {
	t.Helper()
	require.NoError(t, tbl.RequestStart())
	mock.Advance(testStartDelay).MustWait(context.Background())
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	t.Parallel()

	tbl, _, _ := newTestTable(t, favoring(0))
	assert.ErrorIs(t, tbl.RequestStart(), ErrInsufficientPlayers)

	_, err := tbl.Join("a", "alice", 1000)
	require.NoError(t, err)
	assert.ErrorIs(t, tbl.RequestStart(), ErrInsufficientPlayers)
}

func TestStartRejectedWhileActive(t *testing.T) {
	t.Parallel()

	tbl, mock, _ := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}

	require.NoError(t, tbl.RequestStart())
	assert.ErrorIs(t, tbl.RequestStart(), ErrHandInProgress)

	mock.Advance(testStartDelay).MustWait(context.Background())
	assert.ErrorIs(t, tbl.RequestStart(), ErrHandInProgress)
}

func TestThreeWayLimpedHand(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(1))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	starts := rec.ofType(EventTypeHandStart)
	require.Len(t, starts, 1)
	hs := starts[0].(HandStartEvent)
	assert.Equal(t, 0, hs.DealerSeat)
	assert.Equal(t, 1, hs.SmallBlind)
	assert.Equal(t, 2, hs.BigBlind)
	assert.Equal(t, 50, hs.SBAmount)
	assert.Equal(t, 100, hs.BBAmount)

	// Pre-flop: first to act is left of the big blind.
	turn, ok := rec.lastTurn()
	require.True(t, ok)
	assert.Equal(t, 0, turn.Seat)
	assert.Equal(t, 100, turn.ToCall)

	require.NoError(t, tbl.Act("a", Call, 0))
	require.NoError(t, tbl.Act("b", Call, 0))
	require.NoError(t, tbl.Act("c", Check, 0))

	// Post-flop streets: first to act is left of the dealer.
	for _, street := range []Street{Flop, Turn, River} {
		turn, ok = rec.lastTurn()
		require.True(t, ok)
		assert.Equal(t, 1, turn.Seat, "street %s", street)
		require.NoError(t, tbl.Act("b", Check, 0))
		require.NoError(t, tbl.Act("c", Check, 0))
		require.NoError(t, tbl.Act("a", Check, 0))
	}

	ends := rec.ofType(EventTypeHandEnd)
	require.Len(t, ends, 1)
	end := ends[0].(HandEndEvent)
	require.Len(t, end.Results, 1)
	assert.Equal(t, 300, end.Results[0].Amount)
	assert.Equal(t, []int{1}, end.Results[0].Winners)

	snap := tbl.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, 900, snap.Seats[0].Chips)
	assert.Equal(t, 1200, snap.Seats[1].Chips)
	assert.Equal(t, 900, snap.Seats[2].Chips)
}

func TestHeadsUpAllInRunsOutBoard(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	_, err := tbl.Join("a", "alice", 300)
	require.NoError(t, err)
	_, err = tbl.Join("b", "bob", 1000)
	require.NoError(t, err)
	startHand(t, tbl, mock)

	// Dealer 0: blinds are the next two seats clockwise, so seat 1 posts
	// the small blind and seat 0 the big blind.
	turn, ok := rec.lastTurn()
	require.True(t, ok)
	require.Equal(t, 1, turn.Seat)

	require.NoError(t, tbl.Act("b", Raise, 300))
	require.NoError(t, tbl.Act("a", Call, 0)) // all-in for the remaining 200

	// The board ran out with no further prompts.
	community := rec.ofType(EventTypeCommunity)
	require.Len(t, community, 3)
	board := community[2].(CommunityEvent).Board
	assert.Len(t, board, 5)

	ends := rec.ofType(EventTypeHandEnd)
	require.Len(t, ends, 1)
	end := ends[0].(HandEndEvent)
	require.Len(t, end.Results, 1)
	assert.Equal(t, 600, end.Results[0].Amount)
	assert.Equal(t, []int{0}, end.Results[0].Winners)

	snap := tbl.Snapshot()
	assert.Equal(t, 600, snap.Seats[0].Chips)
	assert.Equal(t, 700, snap.Seats[1].Chips)
}

func TestTimeoutFoldsActingSeat(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	turn, ok := rec.lastTurn()
	require.True(t, ok)
	require.Equal(t, 0, turn.Seat)

	mock.Advance(testTurnTimeout).MustWait(context.Background())

	actions := rec.actions()
	require.NotEmpty(t, actions)
	timedOut := actions[len(actions)-1]
	assert.Equal(t, 0, timedOut.Seat)
	assert.Equal(t, Fold, timedOut.Action)
	assert.True(t, timedOut.TimedOut)

	// The next active seat is prompted.
	turn, ok = rec.lastTurn()
	require.True(t, ok)
	assert.Equal(t, 1, turn.Seat)

	// A late action from the timed-out seat is rejected.
	assert.ErrorIs(t, tbl.Act("a", Call, 0), ErrNotYourTurn)

	// Seat 1 folds too: seat 2 wins the blinds uncontested.
	require.NoError(t, tbl.Act("b", Fold, 0))
	snap := tbl.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, 1050, snap.Seats[2].Chips)
	assert.Equal(t, 900, snap.Seats[0].Chips)
	assert.Equal(t, 950, snap.Seats[1].Chips)
}

func TestStaleTurnTimerDoesNotFold(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	ctx := context.Background()
	mock.Advance(10 * time.Second).MustWait(ctx)

	tbl.mu.Lock()
	staleGen := tbl.turnGen
	tbl.mu.Unlock()

	require.NoError(t, tbl.Act("a", Call, 0))

	// The original deadline passes; the superseded timer must not fold
	// anyone.
	mock.Advance(20 * time.Second).MustWait(ctx)

	// A callback that already lost the race to an accepted action is a
	// no-op even if it runs.
	tbl.onTurnTimeout(staleGen)

	for _, a := range rec.actions() {
		assert.NotEqual(t, Fold, a.Action)
	}

	turn, ok := rec.lastTurn()
	require.True(t, ok)
	assert.Equal(t, 1, turn.Seat)

	snap := tbl.Snapshot()
	assert.False(t, snap.Seats[0].Folded)
	require.NoError(t, tbl.Act("b", Call, 0))
}

func TestLeaveMidHandFoldsSeat(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	require.NoError(t, tbl.Act("a", Call, 0))

	// Seat 1 (small blind, now the actor) disconnects: immediate fold, the
	// 50 already posted stays in the pot.
	require.NoError(t, tbl.Leave("b"))

	require.NoError(t, tbl.Act("c", Check, 0))
	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.Act("c", Check, 0))
		require.NoError(t, tbl.Act("a", Check, 0))
	}

	ends := rec.ofType(EventTypeHandEnd)
	require.Len(t, ends, 1)
	end := ends[0].(HandEndEvent)
	require.Len(t, end.Results, 1)
	assert.Equal(t, 250, end.Results[0].Amount, "pot keeps the leaver's blind")
	assert.Equal(t, []int{0}, end.Results[0].Winners)

	snap := tbl.Snapshot()
	assert.Equal(t, 1150, snap.Seats[0].Chips)
	assert.False(t, snap.Seats[1].Occupied)
}

func TestJoinDuringHandSitsOut(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(2))
	for _, tok := range []string{"a", "b"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	idx, err := tbl.Join("c", "carol", 500)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	snap := tbl.Snapshot()
	assert.False(t, snap.Seats[2].InHand, "late joiner sits out the running hand")

	// Carol received no cards.
	for _, e := range rec.ofType(EventTypeHoleCards) {
		assert.NotEqual(t, 2, e.(HoleCardsEvent).Seat)
	}
}

func TestIllegalActionKeepsTurnAndDeadline(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	before, ok := rec.lastTurn()
	require.True(t, ok)
	require.Equal(t, 0, before.Seat)

	// Checking while facing the big blind is illegal; betting into a
	// standing bet is too. The actor keeps its turn and deadline.
	assert.ErrorIs(t, tbl.Act("a", Check, 0), ErrIllegalAction)
	assert.ErrorIs(t, tbl.Act("a", Bet, 500), ErrIllegalAction)

	after, ok := rec.lastTurn()
	require.True(t, ok)
	assert.Equal(t, before, after, "no new turn was prompted")

	require.NoError(t, tbl.Act("a", Call, 0))
}

func TestCardsDealtAreDistinct(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	require.NoError(t, tbl.Act("a", Call, 0))
	require.NoError(t, tbl.Act("b", Call, 0))
	require.NoError(t, tbl.Act("c", Check, 0))
	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.Act("b", Check, 0))
		require.NoError(t, tbl.Act("c", Check, 0))
		require.NoError(t, tbl.Act("a", Check, 0))
	}

	seen := make(map[deck.Card]bool)
	for _, e := range rec.ofType(EventTypeHoleCards) {
		for _, c := range e.(HoleCardsEvent).Cards {
			assert.False(t, seen[c], "duplicate card %s", c)
			seen[c] = true
		}
	}
	community := rec.ofType(EventTypeCommunity)
	require.NotEmpty(t, community)
	for _, c := range community[len(community)-1].(CommunityEvent).Board {
		assert.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 2*3+5)
}

func TestShowdownSplitsTiesEvenly(t *testing.T) {
	t.Parallel()

	// Small blind 75 so the dead blind leaves an odd pot: 100 + 75 + 100.
	tbl, mock, rec := newTestTableWithConfig(t, favoring(0, 2), Config{
		MaxSeats:    6,
		SmallBlind:  75,
		BigBlind:    100,
		TurnTimeout: testTurnTimeout,
		StartDelay:  testStartDelay,
	})
	for _, tok := range []string{"a", "b", "c"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	require.NoError(t, tbl.Act("a", Call, 0))
	require.NoError(t, tbl.Act("b", Fold, 0))
	require.NoError(t, tbl.Act("c", Check, 0))
	for i := 0; i < 3; i++ {
		require.NoError(t, tbl.Act("c", Check, 0))
		require.NoError(t, tbl.Act("a", Check, 0))
	}

	ends := rec.ofType(EventTypeHandEnd)
	require.Len(t, ends, 1)
	end := ends[0].(HandEndEvent)
	require.Len(t, end.Results, 1)
	assert.Equal(t, 275, end.Results[0].Amount)
	assert.ElementsMatch(t, []int{0, 2}, end.Results[0].Winners)
	assert.Equal(t, 137, end.Results[0].Share, "remainder chip is not awarded")

	snap := tbl.Snapshot()
	assert.Equal(t, 1037, snap.Seats[0].Chips)
	assert.Equal(t, 925, snap.Seats[1].Chips)
	assert.Equal(t, 1037, snap.Seats[2].Chips)
}

func TestUnequalAllInsProduceSidePots(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	_, err := tbl.Join("a", "a", 200)
	require.NoError(t, err)
	_, err = tbl.Join("b", "b", 500)
	require.NoError(t, err)
	_, err = tbl.Join("c", "c", 1000)
	require.NoError(t, err)
	startHand(t, tbl, mock)

	// Seat 0 open-shoves 200, seat 1 shoves 500, seat 2 calls 500... but
	// preflop the blinds already stand: seat 1 posted 50, seat 2 posted 100.
	require.NoError(t, tbl.Act("a", Raise, 200)) // all-in
	require.NoError(t, tbl.Act("b", Raise, 500)) // all-in
	require.NoError(t, tbl.Act("c", Call, 0))

	ends := rec.ofType(EventTypeHandEnd)
	require.Len(t, ends, 1)
	end := ends[0].(HandEndEvent)
	require.Len(t, end.Results, 2)

	// 200×3 = 600 contested by everyone; 300×2 = 600 by seats 1 and 2.
	assert.Equal(t, 600, end.Results[0].Amount)
	assert.Equal(t, []int{0}, end.Results[0].Winners)
	assert.Equal(t, 600, end.Results[1].Amount)

	snap := tbl.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)

	// Chips are conserved across the whole hand.
	total := 0
	for _, s := range snap.Seats {
		total += s.Chips
	}
	assert.Equal(t, 200+500+1000, total)
}

func TestLeaveDuringCountdownCancelsStart(t *testing.T) {
	t.Parallel()

	tbl, mock, rec := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	require.NoError(t, tbl.RequestStart())
	require.NoError(t, tbl.Leave("b"))

	mock.Advance(testStartDelay).MustWait(context.Background())

	assert.Empty(t, rec.ofType(EventTypeHandStart))
	assert.Equal(t, PhaseIdle, tbl.Snapshot().Phase)
}

func TestTableEmptiesToPristineState(t *testing.T) {
	t.Parallel()

	tbl, mock, _ := newTestTable(t, favoring(0))
	for _, tok := range []string{"a", "b"} {
		_, err := tbl.Join(tok, tok, 1000)
		require.NoError(t, err)
	}
	startHand(t, tbl, mock)

	require.NoError(t, tbl.Leave("a"))
	require.NoError(t, tbl.Leave("b"))

	snap := tbl.Snapshot()
	assert.Equal(t, PhaseIdle, snap.Phase)
	assert.Equal(t, NoStreet, snap.Street)
	assert.Zero(t, snap.Pot)
	for _, s := range snap.Seats {
		assert.False(t, s.Occupied)
	}

	// The table is reusable from scratch.
	_, err := tbl.Join("c", "carol", 500)
	require.NoError(t, err)
}
