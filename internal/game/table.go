package game

import (
	"sync"
	"time"

	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroom/cardroom/internal/deck"
)

// Config holds the table parameters.
type Config struct {
	MaxSeats    int
	SmallBlind  int
	BigBlind    int
	TurnTimeout time.Duration
	StartDelay  time.Duration
}

// Table is the single shared hold'em table: the top-level state machine
// that owns the seat registry, pot ledger and betting engine, and drives
// blinds, streets, showdown and cleanup.
//
// Every logical event (action, timer fire, join/leave, start request) is
// serialized through one mutex and fully cascades before the next event is
// admitted. Outbound notifications go through the Sink after state has
// mutated; the table never blocks on I/O while holding its lock.
type Table struct {
	mu sync.Mutex

	cfg   Config
	log   *log.Logger
	clock quartz.Clock
	rng   *rand.Rand
	eval  Evaluator
	sink  Sink

	seats   *Registry
	betting *BettingRound
	ledger  *Ledger
	deck    *deck.Deck
	board   []deck.Card

	phase   Phase
	street  Street
	handNum int

	dealerIdx int
	sbIdx     int
	bbIdx     int

	actingIdx int
	deadline  time.Time
	turnGen   int // invalidates stale turn timers and late actions
	turnTimer *quartz.Timer
	countdown *quartz.Timer
}

// NewTable creates an idle table. The clock is injected so tests can drive
// timers deterministically; the RNG seeds every hand's shuffle.
func NewTable(cfg Config, logger *log.Logger, clock quartz.Clock, rng *rand.Rand, eval Evaluator, sink Sink) *Table {
	return &Table{
		cfg:       cfg,
		log:       logger.WithPrefix("table"),
		clock:     clock,
		rng:       rng,
		eval:      eval,
		sink:      sink,
		seats:     NewRegistry(cfg.MaxSeats),
		ledger:    &Ledger{},
		phase:     PhaseIdle,
		street:    NoStreet,
		dealerIdx: -1,
		actingIdx: -1,
	}
}

// SetSink wires the outbound event sink. Must be called before the table
// receives any traffic.
func (t *Table) SetSink(sink Sink) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sink = sink
}

// Snapshot is a public view of the table for new observers.
type Snapshot struct {
	Phase      Phase
	Street     Street
	Board      []deck.Card
	Pot        int
	Seats      []SeatInfo
	ActingSeat int
	Deadline   time.Time
}

// Snapshot returns the current public table state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		Phase:      t.phase,
		Street:     t.street,
		Board:      append([]deck.Card(nil), t.board...),
		Pot:        t.ledger.Total(),
		Seats:      t.seatInfos(),
		ActingSeat: t.actingIdx,
		Deadline:   t.deadline,
	}
}

// Join seats a new identity with the given stack. Joining never enters the
// hand in progress; the new seat sits out until the next deal.
func (t *Table) Join(token, name string, chips int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, err := t.seats.SeatPlayer(token, name, chips)
	if err != nil {
		return -1, err
	}
	t.log.Info("player seated", "seat", idx, "name", name, "chips", chips)
	t.sink.Publish(SeatsEvent{Seats: t.seatInfos()})
	return idx, nil
}

// Leave clears the identity's seat. Leaving mid-hand counts as an immediate
// fold; chips already committed stay in the pot.
func (t *Table) Leave(token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.seats.IndexOf(token)
	if idx == -1 {
		return ErrNotSeated
	}

	if t.phase == PhaseHand && t.seats.Seat(idx).Alive() {
		t.forceFold(idx, false)
	}
	t.seats.Remove(idx)
	t.log.Info("seat cleared", "seat", idx)

	occupied := len(t.seats.Occupied())
	if occupied == 0 {
		t.pristineReset()
	} else if t.phase == PhaseCountdown && occupied < 2 {
		t.cancelCountdown()
		t.phase = PhaseIdle
		t.sink.Publish(MessageEvent{Text: "start cancelled: not enough players"})
	}
	t.sink.Publish(SeatsEvent{Seats: t.seatInfos()})
	return nil
}

// RequestStart begins the pre-hand countdown. Rejected while a hand or
// countdown is active, or with fewer than two occupied seats.
func (t *Table) RequestStart() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseIdle {
		return ErrHandInProgress
	}
	if len(t.seats.Occupied()) < 2 {
		return ErrInsufficientPlayers
	}

	t.phase = PhaseCountdown
	t.sink.Publish(CountdownEvent{Delay: t.cfg.StartDelay})
	t.countdown = t.clock.AfterFunc(t.cfg.StartDelay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.phase != PhaseCountdown {
			return
		}
		t.beginHand()
	})
	return nil
}

// Act applies an action for the identity's seat. Actions from a seat that
// is not the current actor (including late actions racing a timeout) are
// rejected without touching table state; illegal actions leave the actor's
// turn and deadline intact so the transport can re-prompt.
func (t *Table) Act(token string, action Action, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.seats.IndexOf(token)
	if idx == -1 {
		return ErrNotSeated
	}
	if t.phase != PhaseHand || idx != t.actingIdx {
		return ErrNotYourTurn
	}
	return t.applyAction(idx, action, amount, false)
}

// applyAction runs an accepted actor's move through the betting engine and
// advances the hand. Caller holds the lock.
func (t *Table) applyAction(idx int, action Action, amount int, timedOut bool) error {
	paid, err := t.betting.Apply(idx, action, amount)
	if err != nil {
		return err
	}
	t.turnGen++
	t.stopTurnTimer()
	if paid > 0 {
		t.ledger.Add(paid)
	}
	t.log.Debug("action applied", "seat", idx, "action", action, "paid", paid, "pot", t.ledger.Total())
	t.sink.Publish(PlayerActionEvent{Seat: idx, Action: action, Amount: paid, Pot: t.ledger.Total(), TimedOut: timedOut})
	t.advance()
	return nil
}

// forceFold is the single primitive behind timeout folds and mid-hand
// leaves, so both share one code path. Caller holds the lock.
func (t *Table) forceFold(idx int, timedOut bool) {
	s := t.seats.Seat(idx)
	if !s.Alive() {
		return
	}

	if idx == t.actingIdx {
		// Same path as a submitted fold.
		_ = t.applyAction(idx, Fold, 0, timedOut)
		return
	}

	s.Folded = true
	s.ActedThisStreet = true
	t.sink.Publish(PlayerActionEvent{Seat: idx, Action: Fold, Pot: t.ledger.Total(), TimedOut: timedOut})

	// A fold out of turn can settle the hand or the street.
	if len(t.seats.InHandAlive()) <= 1 || t.betting.Complete() {
		t.turnGen++
		t.stopTurnTimer()
		t.advance()
	}
}

// onTurnTimeout fires when the acting seat's countdown elapses. Stale
// generations are ignored: the timer lost a race with an accepted action.
func (t *Table) onTurnTimeout(gen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PhaseHand || gen != t.turnGen || t.actingIdx == -1 {
		return
	}
	t.log.Info("turn timed out", "seat", t.actingIdx)
	t.forceFold(t.actingIdx, true)
}

// beginHand performs hand setup: rotate the dealer, assign blinds, shuffle,
// deal, post blinds and open pre-flop betting. Caller holds the lock.
func (t *Table) beginHand() {
	t.seats.ResetHandState()

	// Only seats with chips participate; broke seats sit out.
	participants := 0
	for _, idx := range t.seats.Occupied() {
		if t.seats.Seat(idx).Chips > 0 {
			t.seats.Seat(idx).InHand = true
			participants++
		}
	}
	if participants < 2 {
		t.seats.ResetHandState()
		t.phase = PhaseIdle
		t.sink.Publish(MessageEvent{Text: "hand aborted: not enough players with chips"})
		return
	}

	t.phase = PhaseHand
	t.handNum++

	t.dealerIdx = t.nextInHand(t.dealerIdx)
	t.sbIdx = t.nextInHand(t.dealerIdx)
	t.bbIdx = t.nextInHand(t.sbIdx)

	t.deck = deck.New(t.rng)
	t.board = nil
	t.ledger.Reset()
	t.betting = NewBettingRound(t.seats, t.cfg.BigBlind)

	// Deal two cards each, starting left of the dealer.
	for idx := t.nextInHand(t.dealerIdx); ; idx = t.nextInHand(idx) {
		s := t.seats.Seat(idx)
		s.HoleCards = t.deck.DrawN(2)
		t.sink.Publish(HoleCardsEvent{Seat: idx, Cards: append([]deck.Card(nil), s.HoleCards...)})
		if idx == t.dealerIdx {
			break
		}
	}

	// Blind posts clamp to the payer's stack and may put the seat all-in.
	sbPaid := t.seats.Seat(t.sbIdx).commit(t.cfg.SmallBlind)
	bbPaid := t.seats.Seat(t.bbIdx).commit(t.cfg.BigBlind)
	t.ledger.Add(sbPaid + bbPaid)

	t.log.Info("hand started", "hand", t.handNum, "dealer", t.dealerIdx, "sb", t.sbIdx, "bb", t.bbIdx)
	t.sink.Publish(HandStartEvent{
		HandNum:    t.handNum,
		DealerSeat: t.dealerIdx,
		SmallBlind: t.sbIdx,
		BigBlind:   t.bbIdx,
		SBAmount:   sbPaid,
		BBAmount:   bbPaid,
		Seats:      t.seatInfos(),
	})
	t.sink.Publish(PotEvent{Total: t.ledger.Total()})

	t.street = Preflop
	first := t.betting.Begin(Preflop, t.dealerIdx, t.bbIdx)
	if first == -1 || t.betting.Complete() {
		t.nextStreet()
		return
	}
	t.promptTurn(first)
}

// nextInHand walks to the next seat dealt into this hand.
func (t *Table) nextInHand(from int) int {
	n := t.seats.Len()
	for i := 1; i <= n; i++ {
		idx := ((from + i) % n + n) % n
		s := t.seats.Seat(idx)
		if s.Occupied && s.InHand {
			return idx
		}
	}
	return -1
}

// promptTurn makes idx the current actor and arms its timeout. Starting a
// new turn always cancels the previously pending timer first.
func (t *Table) promptTurn(idx int) {
	t.stopTurnTimer()
	t.actingIdx = idx
	t.turnGen++
	gen := t.turnGen
	t.deadline = t.clock.Now().Add(t.cfg.TurnTimeout)
	t.turnTimer = t.clock.AfterFunc(t.cfg.TurnTimeout, func() {
		t.onTurnTimeout(gen)
	})

	s := t.seats.Seat(idx)
	toCall := t.betting.CurrentBet - s.CommittedThisStreet
	if toCall > s.Chips {
		toCall = s.Chips
	}
	minRaiseTo := t.betting.CurrentBet + t.betting.LastRaiseSize
	if t.betting.LastRaiseSize < t.cfg.BigBlind {
		minRaiseTo = t.betting.CurrentBet + t.cfg.BigBlind
	}
	t.sink.Publish(TurnEvent{
		Seat:       idx,
		Deadline:   t.deadline,
		CurrentBet: t.betting.CurrentBet,
		ToCall:     toCall,
		MinRaiseTo: minRaiseTo,
	})
}

// advance decides what happens after a state change: settle a walk-over,
// close the street, or prompt the next actor. Caller holds the lock.
func (t *Table) advance() {
	if len(t.seats.InHandAlive()) <= 1 {
		t.settleWalkover()
		return
	}
	if t.betting.Complete() {
		t.nextStreet()
		return
	}
	next := t.seats.NextActive(t.actingIdx)
	if next == -1 {
		t.nextStreet()
		return
	}
	t.promptTurn(next)
}

// nextStreet deals the next community cards and opens betting. When no seat
// can act (all live players all-in) the remaining streets run out
// automatically to showdown.
func (t *Table) nextStreet() {
	t.actingIdx = -1
	for {
		switch t.street {
		case Preflop:
			t.street = Flop
			t.deck.Draw() // burn
			t.board = append(t.board, t.deck.DrawN(3)...)
		case Flop:
			t.street = Turn
			t.deck.Draw() // burn
			t.board = append(t.board, t.deck.Draw())
		case Turn:
			t.street = River
			t.deck.Draw() // burn
			t.board = append(t.board, t.deck.Draw())
		case River:
			t.street = Showdown
			t.showdown()
			return
		default:
			return
		}

		t.sink.Publish(CommunityEvent{Street: t.street, Board: append([]deck.Card(nil), t.board...)})
		t.sink.Publish(PotEvent{Total: t.ledger.Total()})

		first := t.betting.Begin(t.street, t.dealerIdx, t.bbIdx)
		if first == -1 || t.betting.Complete() {
			continue
		}
		t.promptTurn(first)
		return
	}
}

// settleWalkover awards the whole pot to the single remaining seat without
// a showdown.
func (t *Table) settleWalkover() {
	alive := t.seats.InHandAlive()
	if len(alive) == 0 {
		// Everyone left mid-hand; nothing to award.
		t.sink.Publish(MessageEvent{Text: "hand abandoned"})
		t.cleanup()
		return
	}

	winner := alive[0]
	amount := t.ledger.Total()
	t.seats.Seat(winner).Chips += amount
	t.log.Info("hand won uncontested", "hand", t.handNum, "seat", winner, "amount", amount)
	t.sink.Publish(HandEndEvent{
		HandNum: t.handNum,
		Results: []PotResult{{Amount: amount, Winners: []int{winner}, Share: amount}},
		Seats:   t.seatInfos(),
	})
	t.cleanup()
}

// showdown reveals surviving hole cards, splits the pot into layers and
// resolves each layer independently through the evaluator.
func (t *Table) showdown() {
	alive := t.seats.InHandAlive()

	reveals := make([]ShowdownReveal, 0, len(alive))
	for _, idx := range alive {
		reveals = append(reveals, ShowdownReveal{
			Seat:  idx,
			Cards: append([]deck.Card(nil), t.seats.Seat(idx).HoleCards...),
		})
	}
	t.sink.Publish(ShowdownEvent{Board: append([]deck.Card(nil), t.board...), Reveals: reveals})

	var results []PotResult
	for _, pot := range t.ledger.Split(t.seats) {
		winners := pot.Eligible
		if len(winners) > 1 {
			hands := make([]ShowdownHand, 0, len(pot.Eligible))
			for _, idx := range pot.Eligible {
				hands = append(hands, ShowdownHand{Seat: idx, Cards: t.seats.Seat(idx).HoleCards})
			}
			winners = t.eval.Winners(t.board, hands)
		}
		if len(winners) == 0 {
			continue
		}
		// Remainder chips from the integer split are not awarded.
		share := pot.Amount / len(winners)
		for _, idx := range winners {
			t.seats.Seat(idx).Chips += share
		}
		results = append(results, PotResult{Amount: pot.Amount, Winners: winners, Share: share})
	}

	t.log.Info("showdown resolved", "hand", t.handNum, "pots", len(results))
	t.sink.Publish(HandEndEvent{HandNum: t.handNum, Results: results, Seats: t.seatInfos()})
	t.cleanup()
}

// cleanup resets per-hand state and returns the table to idle.
func (t *Table) cleanup() {
	t.stopTurnTimer()
	t.turnGen++
	t.seats.ResetHandState()
	t.board = nil
	t.deck = nil
	t.ledger.Reset()
	t.street = NoStreet
	t.phase = PhaseIdle
	t.actingIdx = -1
	if len(t.seats.Occupied()) == 0 {
		t.pristineReset()
	}
}

// pristineReset returns an emptied table to its initial state.
func (t *Table) pristineReset() {
	t.cancelCountdown()
	t.stopTurnTimer()
	t.turnGen++
	t.seats = NewRegistry(t.cfg.MaxSeats)
	t.betting = nil
	t.ledger.Reset()
	t.board = nil
	t.deck = nil
	t.street = NoStreet
	t.phase = PhaseIdle
	t.dealerIdx = -1
	t.actingIdx = -1
}

func (t *Table) stopTurnTimer() {
	if t.turnTimer != nil {
		t.turnTimer.Stop()
		t.turnTimer = nil
	}
}

func (t *Table) cancelCountdown() {
	if t.countdown != nil {
		t.countdown.Stop()
		t.countdown = nil
	}
}

func (t *Table) seatInfos() []SeatInfo {
	infos := make([]SeatInfo, t.seats.Len())
	for i := range infos {
		s := t.seats.Seat(i)
		infos[i] = SeatInfo{
			Index:    i,
			Occupied: s.Occupied,
			Name:     s.Name,
			Chips:    s.Chips,
			InHand:   s.InHand,
			Folded:   s.Folded,
			AllIn:    s.AllIn,
			Bet:      s.CommittedThisStreet,
		}
	}
	return infos
}
