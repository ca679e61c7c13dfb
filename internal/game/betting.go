package game

// BettingRound drives action order and legality within one street. It
// mutates seat state owned by the registry; the orchestrator decides whose
// turn it is and when the street ends.
type BettingRound struct {
	reg      *Registry
	bigBlind int

	Street        Street
	CurrentBet    int // max committedThisStreet among live seats
	LastRaiseSize int // size of the most recent bet/raise, for min-raise enforcement
}

// NewBettingRound creates the betting engine over the given registry.
func NewBettingRound(reg *Registry, bigBlind int) *BettingRound {
	return &BettingRound{reg: reg, bigBlind: bigBlind}
}

// Begin opens a street and returns the first seat to act, or -1 when no
// eligible seat exists (the street is then immediately complete).
//
// On the preflop street the blinds are already standing as
// committedThisStreet, posted before the street formally begins; they are
// kept, and the blind seats have not acted yet so the big blind retains its
// option. Later streets start from a clean slate.
func (br *BettingRound) Begin(street Street, dealer, bigBlindSeat int) int {
	br.Street = street

	if street != Preflop {
		for _, idx := range br.reg.InHandAlive() {
			s := br.reg.Seat(idx)
			s.CommittedThisStreet = 0
			s.ActedThisStreet = false
		}
	}

	br.CurrentBet = 0
	for _, idx := range br.reg.InHandAlive() {
		if c := br.reg.Seat(idx).CommittedThisStreet; c > br.CurrentBet {
			br.CurrentBet = c
		}
	}

	if street == Preflop {
		br.LastRaiseSize = br.bigBlind
		return br.reg.NextActive(bigBlindSeat)
	}
	br.LastRaiseSize = 0
	return br.reg.NextActive(dealer)
}

// Apply validates and applies an action for the given seat, returning the
// chips actually paid into the pot. The caller is responsible for turn
// order; Apply enforces legality only. Illegal actions leave all state
// untouched.
func (br *BettingRound) Apply(idx int, action Action, amount int) (int, error) {
	s := br.reg.Seat(idx)
	if !s.CanAct() {
		return 0, ErrIllegalAction
	}

	switch action {
	case Fold:
		s.Folded = true
		s.ActedThisStreet = true
		return 0, nil

	case Check:
		if s.CommittedThisStreet != br.CurrentBet {
			return 0, ErrIllegalAction
		}
		s.ActedThisStreet = true
		return 0, nil

	case Call:
		paid := s.commit(br.CurrentBet - s.CommittedThisStreet)
		s.ActedThisStreet = true
		return paid, nil

	case Bet:
		if br.CurrentBet != 0 {
			return 0, ErrIllegalAction
		}
		if amount < br.bigBlind {
			amount = br.bigBlind
		}
		paid := s.commit(amount)
		br.CurrentBet = s.CommittedThisStreet
		br.LastRaiseSize = paid
		br.reopenAction(idx)
		s.ActedThisStreet = true
		return paid, nil

	case Raise:
		if br.CurrentBet == 0 {
			return 0, ErrIllegalAction
		}
		maxTotal := s.CommittedThisStreet + s.Chips
		if maxTotal <= br.CurrentBet {
			// Cannot raise above the standing bet; a call is the only
			// chip-moving option left.
			return 0, ErrIllegalAction
		}
		fullIncrement := br.LastRaiseSize
		if fullIncrement < br.bigBlind {
			fullIncrement = br.bigBlind
		}
		target := br.CurrentBet + fullIncrement
		if amount > target {
			target = amount
		}
		if target > maxTotal {
			target = maxTotal // all-in for less than a full raise is permitted
		}
		fullRaise := target-br.CurrentBet >= fullIncrement
		paid := s.commit(target - s.CommittedThisStreet)
		br.LastRaiseSize = target - br.CurrentBet
		br.CurrentBet = target
		if fullRaise {
			// New aggression reopens action. A short all-in does not: seats
			// already facing the full previous bet keep their acted flag.
			br.reopenAction(idx)
		}
		s.ActedThisStreet = true
		return paid, nil

	default:
		return 0, ErrIllegalAction
	}
}

// reopenAction clears every other in-hand seat's acted flag.
func (br *BettingRound) reopenAction(aggressor int) {
	for _, idx := range br.reg.InHandAlive() {
		if idx != aggressor {
			br.reg.Seat(idx).ActedThisStreet = false
		}
	}
}

// Complete reports whether the street is over: at most one non-folded seat
// remains, or every seat still able to act has acted and matched the
// current bet.
func (br *BettingRound) Complete() bool {
	if len(br.reg.InHandAlive()) <= 1 {
		return true
	}
	active := br.reg.InHandActive()
	if len(active) == 1 {
		// A lone remaining actor only acts while facing an outstanding bet;
		// nobody is left to respond to new aggression, so boards run out.
		return br.reg.Seat(active[0]).CommittedThisStreet >= br.CurrentBet
	}
	for _, idx := range active {
		s := br.reg.Seat(idx)
		if !s.ActedThisStreet || s.CommittedThisStreet != br.CurrentBet {
			return false
		}
	}
	return true
}
